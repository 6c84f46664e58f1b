// Package graphservice wraps a graph behind the single-writer /
// many-reader discipline the graph itself does not provide. Writers
// (initial sync, watcher updates) go through the mutating methods;
// readers run analytics on the current snapshot under a shared lock.
package graphservice

import (
	"sync"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/graph"
)

// Service owns one graph and serializes access to it.
type Service struct {
	mu  sync.RWMutex
	g   *graph.Graph
	rev int64
}

// New wraps g. The service takes ownership; callers must not touch g
// directly afterwards.
func New(g *graph.Graph) *Service {
	if g == nil {
		g = graph.New()
	}
	return &Service{g: g}
}

// Revision returns a counter bumped on every mutation, letting
// consumers tell snapshots apart.
func (s *Service) Revision() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Replace swaps in a freshly built graph.
func (s *Service) Replace(g *graph.Graph) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g = g
	s.rev++
}

// ApplyPage adds or replaces one page.
func (s *Service) ApplyPage(p *graph.Page) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g.AddPage(p)
	s.rev++
}

// Remove deletes one page.
func (s *Service) Remove(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.g.RemovePage(path)
	s.rev++
}

// Mutate runs fn with exclusive access to the graph, for compound
// updates (e.g. builder.Update) that must appear atomic to readers.
func (s *Service) Mutate(fn func(g *graph.Graph)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.g)
	s.rev++
}

// Read runs fn with shared access to the graph snapshot. fn must not
// retain or mutate the graph.
func (s *Service) Read(fn func(g *graph.Graph)) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fn(s.g)
}

// Page returns the page at path, or apperr.ErrNotFound.
func (s *Service) Page(path string) (*graph.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.g.GetPage(path)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return p, nil
}

// Backlinks returns the backlink list for path.
func (s *Service) Backlinks(path string) []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.Backlinks(path)
}

// Stats computes aggregate statistics for the current snapshot.
func (s *Service) Stats() graph.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.g.ComputeStats()
}

// Export produces the node-link view of the current snapshot.
func (s *Service) Export() graph.ExportView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return graph.Export(s.g)
}
