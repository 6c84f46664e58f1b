// Package storage defines the vault file-system abstraction: the
// directory-reader collaborator that supplies already-read content to
// the graph builder. It enforces the path preconditions the core
// trusts: no traversal, no absolute paths, no NUL bytes, markdown
// suffixes only.
package storage

// FileMeta is a lightweight description of one vault file.
type FileMeta struct {
	Path     string `json:"path"`
	Checksum string `json:"checksum"`
}

// Provider is the read-only interface over a vault directory.
type Provider interface {
	// List returns metadata for every markdown file under dir
	// (relative to the vault root; empty string for the whole vault).
	List(dir string) ([]FileMeta, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// ReadAll returns the content of every markdown file keyed by
	// vault-relative path, the shape the graph builder consumes.
	ReadAll() (map[string]string, error)
}
