package graph

import (
	"iter"
	"sort"
)

// Graph owns the collection of pages keyed by path plus the derived
// backlink index (target path → ordered source paths). The backlink
// index always equals, for every target T, the paths of pages currently
// listing T among their outbound links: AddPage and RemovePage retract
// the entries a superseded page contributed before adding new ones.
//
// Graph is not safe for concurrent use; callers must apply a
// single-writer discipline (see graphservice).
type Graph struct {
	pages     map[string]*Page
	backlinks map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		pages:     make(map[string]*Page),
		backlinks: make(map[string][]string),
	}
}

// AddPage inserts a page, replacing (never merging) any page already
// stored at the same path. Backlink entries contributed by the replaced
// version are retracted first; the new page then contributes one entry
// per link occurrence.
func (g *Graph) AddPage(p *Page) {
	if prev, ok := g.pages[p.Path]; ok {
		g.retract(prev)
	}
	for _, target := range p.Links {
		g.backlinks[target] = append(g.backlinks[target], p.Path)
	}
	g.pages[p.Path] = p
}

// RemovePage deletes the page at path and retracts its backlink
// contributions. Removing an absent path is a no-op.
func (g *Graph) RemovePage(path string) {
	prev, ok := g.pages[path]
	if !ok {
		return
	}
	g.retract(prev)
	delete(g.pages, path)
}

// retract drops every backlink entry p contributed to other pages' lists.
func (g *Graph) retract(p *Page) {
	for _, target := range p.Links {
		entries := g.backlinks[target]
		kept := entries[:0]
		for _, src := range entries {
			if src != p.Path {
				kept = append(kept, src)
			}
		}
		if len(kept) == 0 {
			delete(g.backlinks, target)
		} else {
			g.backlinks[target] = kept
		}
	}
}

// GetPage looks up a page by path. An absent path yields ok=false,
// never an error.
func (g *Graph) GetPage(path string) (*Page, bool) {
	p, ok := g.pages[path]
	return p, ok
}

// Backlinks returns the paths of pages linking to target, in insertion
// order, one entry per link occurrence. Unknown targets yield nil.
func (g *Graph) Backlinks(target string) []string {
	entries := g.backlinks[target]
	if len(entries) == 0 {
		return nil
	}
	out := make([]string, len(entries))
	copy(out, entries)
	return out
}

// PageCount returns the number of pages in the graph.
func (g *Graph) PageCount() int { return len(g.pages) }

// Paths returns every page path in sorted order.
func (g *Graph) Paths() []string {
	out := make([]string, 0, len(g.pages))
	for p := range g.pages {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Pages returns a restartable sequence over all pages in sorted-path
// order. The order is stable within one revision of the graph.
func (g *Graph) Pages() iter.Seq[*Page] {
	return func(yield func(*Page) bool) {
		for _, path := range g.Paths() {
			if !yield(g.pages[path]) {
				return
			}
		}
	}
}

// Stats holds aggregate graph statistics.
type Stats struct {
	PageCount   int `json:"page_count"`
	TotalBlocks int `json:"total_blocks"`
	TotalLinks  int `json:"total_links"`
	OrphanPages int `json:"orphan_pages"`
}

// ComputeStats derives statistics from the current graph contents.
// Nothing is cached; every call walks the graph.
func (g *Graph) ComputeStats() Stats {
	s := Stats{PageCount: len(g.pages)}
	for _, p := range g.pages {
		s.TotalBlocks += p.BlockCount()
		s.TotalLinks += len(p.Links)
		if len(p.Links) == 0 && len(g.backlinks[p.Path]) == 0 {
			s.OrphanPages++
		}
	}
	return s
}
