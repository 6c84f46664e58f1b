// Package graph holds the in-memory knowledge graph built from parsed
// outline pages: page storage, the derived backlink index, and the
// structural queries the publishing pipeline runs over it.
package graph

// Page is one parsed source file, identified by its vault-relative path.
// Pages are created by the parser and replaced wholesale on re-parse;
// they are never mutated in place.
type Page struct {
	Path       string            `json:"path"`
	Title      string            `json:"title"`
	Properties map[string]string `json:"properties,omitempty"`
	Blocks     []*Block          `json:"blocks,omitempty"`
	Tags       []string          `json:"tags,omitempty"`
	Links      []string          `json:"links,omitempty"`
}

// Block is one outline node (bullet) within a page. Children form a
// tree; a child's Level is always strictly greater than its parent's.
type Block struct {
	ID         string            `json:"id"`
	Content    string            `json:"content"`
	Children   []*Block          `json:"children,omitempty"`
	Properties map[string]string `json:"properties,omitempty"`
	Level      int               `json:"level"`
}

// BlockCount returns the number of blocks in the page, children included.
// The walk is iterative so pathologically deep trees cannot exhaust the
// call stack.
func (p *Page) BlockCount() int {
	count := 0
	stack := make([]*Block, len(p.Blocks))
	copy(stack, p.Blocks)
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		count++
		stack = append(stack, b.Children...)
	}
	return count
}

// HasTag reports whether the page carries the given tag.
func (p *Page) HasTag(tag string) bool {
	for _, t := range p.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// IsPublic reports whether the page is marked for publishing via the
// "public" page property.
func (p *Page) IsPublic() bool {
	return p.Properties["public"] == "true"
}
