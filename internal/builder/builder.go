// Package builder drives the parser over batches of vault files and
// folds the results into a graph. Parsing is a pure function of its
// inputs, so batches run through a bounded parallel worker group; the
// fold itself is sequential and deterministic (sorted-path order).
package builder

import (
	"errors"
	"io/fs"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/parser"
)

// Sink receives per-file parse failures. A failing file is skipped and
// never aborts the batch; the graph simply omits that page.
type Sink func(path string, err error)

// ContentReader supplies raw content for a path during incremental
// updates. A fs.ErrNotExist error means the path is gone and its page
// should leave the graph.
type ContentReader interface {
	Read(path string) ([]byte, error)
}

type options struct {
	workers int
	sink    Sink
}

// Option configures a build or update run.
type Option func(*options)

// WithWorkers bounds the parallel parse pool. Defaults to NumCPU.
func WithWorkers(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.workers = n
		}
	}
}

// WithSink routes parse failures to sink instead of dropping them
// silently.
func WithSink(sink Sink) Option {
	return func(o *options) { o.sink = sink }
}

func newOptions(opts []Option) options {
	o := options{workers: runtime.NumCPU(), sink: func(string, error) {}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Build parses every (path, content) pair in parallel and folds the
// pages into a fresh graph. The fold happens in sorted-path order, so
// the resulting backlink lists are identical regardless of worker count.
func Build(files map[string]string, opts ...Option) *graph.Graph {
	o := newOptions(opts)

	var mu sync.Mutex
	pages := make(map[string]*graph.Page, len(files))

	var eg errgroup.Group
	eg.SetLimit(o.workers)
	for path, content := range files {
		eg.Go(func() error {
			p, err := parser.Parse([]byte(content), path)
			if err != nil {
				o.sink(path, err)
				return nil
			}
			mu.Lock()
			pages[path] = p
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait() // workers only report through the sink

	g := graph.New()
	foldSorted(g, pages)
	return g
}

// Update re-parses only the changed paths through reader and folds the
// results into g. Paths the reader no longer has are removed; unrelated
// pages and their backlink contributions are untouched.
func Update(g *graph.Graph, paths []string, reader ContentReader, opts ...Option) {
	o := newOptions(opts)

	var mu sync.Mutex
	pages := make(map[string]*graph.Page, len(paths))
	var gone []string

	var eg errgroup.Group
	eg.SetLimit(o.workers)
	for _, path := range paths {
		eg.Go(func() error {
			data, err := reader.Read(path)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) {
					mu.Lock()
					gone = append(gone, path)
					mu.Unlock()
				} else {
					o.sink(path, err)
				}
				return nil
			}
			p, err := parser.Parse(data, path)
			if err != nil {
				o.sink(path, err)
				return nil
			}
			mu.Lock()
			pages[path] = p
			mu.Unlock()
			return nil
		})
	}
	_ = eg.Wait()

	sort.Strings(gone)
	for _, path := range gone {
		g.RemovePage(path)
	}
	foldSorted(g, pages)
}

func foldSorted(g *graph.Graph, pages map[string]*graph.Page) {
	paths := make([]string, 0, len(pages))
	for p := range pages {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	for _, p := range paths {
		g.AddPage(pages[p])
	}
}
