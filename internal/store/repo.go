package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/starford/othala/internal/graph"
)

// UpsertPage inserts or replaces the cached copy of a page together
// with the checksum of the source content it was parsed from.
func (db *DB) UpsertPage(p *graph.Page, checksum string) error {
	doc, err := graph.MarshalPage(p)
	if err != nil {
		return fmt.Errorf("store: encode page: %w", err)
	}
	tagsJSON, _ := json.Marshal(p.Tags)
	linksJSON, _ := json.Marshal(p.Links)

	_, err = db.conn.Exec(`
		INSERT INTO pages (path, title, checksum, tags, links, doc, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title      = excluded.title,
			checksum   = excluded.checksum,
			tags       = excluded.tags,
			links      = excluded.links,
			doc        = excluded.doc,
			updated_at = excluded.updated_at
	`, p.Path, p.Title, checksum, string(tagsJSON), string(linksJSON), string(doc), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store: upsert page: %w", err)
	}
	return nil
}

// DeletePage removes the cached page at path.
func (db *DB) DeletePage(path string) error {
	if _, err := db.conn.Exec(`DELETE FROM pages WHERE path = ?`, path); err != nil {
		return fmt.Errorf("store: delete page: %w", err)
	}
	return nil
}

// GetChecksum returns the stored checksum for a path, or empty string
// when the path is not cached.
func (db *DB) GetChecksum(path string) (string, error) {
	var cs string
	err := db.conn.QueryRow(`SELECT checksum FROM pages WHERE path = ?`, path).Scan(&cs)
	if err != nil {
		return "", nil // not found is fine
	}
	return cs, nil
}

// AllChecksums returns every cached path with its checksum.
func (db *DB) AllChecksums() (map[string]string, error) {
	rows, err := db.conn.Query(`SELECT path, checksum FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("store: all checksums: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var path, cs string
		if err := rows.Scan(&path, &cs); err != nil {
			return nil, err
		}
		out[path] = cs
	}
	return out, rows.Err()
}

// LoadPages decodes every cached page keyed by path.
func (db *DB) LoadPages() (map[string]*graph.Page, error) {
	rows, err := db.conn.Query(`SELECT path, doc FROM pages`)
	if err != nil {
		return nil, fmt.Errorf("store: load pages: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*graph.Page)
	for rows.Next() {
		var path, doc string
		if err := rows.Scan(&path, &doc); err != nil {
			return nil, err
		}
		p, err := graph.UnmarshalPage([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("store: decode page %s: %w", path, err)
		}
		out[path] = p
	}
	return out, rows.Err()
}

// LoadGraph rebuilds a graph from every cached page, in sorted-path
// order for deterministic backlink lists.
func (db *DB) LoadGraph() (*graph.Graph, error) {
	pages, err := db.LoadPages()
	if err != nil {
		return nil, err
	}
	g := graph.New()
	paths := make([]string, 0, len(pages))
	for p := range pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		g.AddPage(pages[p])
	}
	return g, nil
}
