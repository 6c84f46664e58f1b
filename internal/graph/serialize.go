package graph

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
)

// ErrSerialization is wrapped by every error returned when interchange
// text cannot be decoded back into a graph or page.
var ErrSerialization = errors.New("malformed graph serialization")

// graphDoc is the JSON interchange form: pages in sorted-path order.
// The backlink index is derived, so it is rebuilt through AddPage on
// load rather than stored.
type graphDoc struct {
	Pages []*Page `json:"pages"`
}

// MarshalGraph encodes the graph to its JSON interchange form.
func MarshalGraph(g *Graph) ([]byte, error) {
	doc := graphDoc{Pages: make([]*Page, 0, len(g.pages))}
	for p := range g.Pages() {
		doc.Pages = append(doc.Pages, p)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal graph: %w", err)
	}
	return data, nil
}

// UnmarshalGraph decodes interchange text produced by MarshalGraph.
// Malformed input yields an error wrapping ErrSerialization.
func UnmarshalGraph(data []byte) (*Graph, error) {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	g := New()
	for _, p := range doc.Pages {
		if p == nil || p.Path == "" {
			return nil, fmt.Errorf("%w: page without path", ErrSerialization)
		}
		g.AddPage(p)
	}
	return g, nil
}

// WriteGraph writes the interchange form to w.
func WriteGraph(g *Graph, w io.Writer) error {
	data, err := MarshalGraph(g)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write graph: %w", err)
	}
	return nil
}

// ReadGraph decodes a graph from r.
func ReadGraph(r io.Reader) (*Graph, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read graph: %w", err)
	}
	return UnmarshalGraph(data)
}

// MarshalPage encodes a single page.
func MarshalPage(p *Page) ([]byte, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal page %s: %w", p.Path, err)
	}
	return data, nil
}

// UnmarshalPage decodes a single page.
func UnmarshalPage(data []byte) (*Page, error) {
	var p Page
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if p.Path == "" {
		return nil, fmt.Errorf("%w: page without path", ErrSerialization)
	}
	return &p, nil
}

// Node is a vertex in the exported node-link view.
type Node struct {
	Path  string   `json:"path"`
	Title string   `json:"title,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// Edge is a directed link in the exported node-link view. Targets need
// not resolve to an exported node (dangling links are kept).
type Edge struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// ExportView is the node-link form handed to visualization consumers.
type ExportView struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Export produces the node-link view: one node per page in sorted-path
// order, one edge per outbound link occurrence, edges sorted by
// (source, target).
func Export(g *Graph) ExportView {
	view := ExportView{Nodes: []Node{}, Edges: []Edge{}}
	for p := range g.Pages() {
		view.Nodes = append(view.Nodes, Node{Path: p.Path, Title: p.Title, Tags: p.Tags})
		for _, target := range p.Links {
			view.Edges = append(view.Edges, Edge{Source: p.Path, Target: target})
		}
	}
	sort.Slice(view.Edges, func(i, j int) bool {
		if view.Edges[i].Source != view.Edges[j].Source {
			return view.Edges[i].Source < view.Edges[j].Source
		}
		return view.Edges[i].Target < view.Edges[j].Target
	})
	return view
}
