package graphservice

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/graph"
)

func TestServiceLifecycle(t *testing.T) {
	svc := New(nil)
	if svc.Revision() != 0 {
		t.Errorf("Revision = %d, want 0", svc.Revision())
	}

	svc.ApplyPage(&graph.Page{Path: "a.md", Links: []string{"b.md"}})
	svc.ApplyPage(&graph.Page{Path: "b.md"})
	if svc.Revision() != 2 {
		t.Errorf("Revision = %d, want 2", svc.Revision())
	}

	if _, err := svc.Page("a.md"); err != nil {
		t.Errorf("Page(a.md) = %v", err)
	}
	if got := svc.Backlinks("b.md"); !reflect.DeepEqual(got, []string{"a.md"}) {
		t.Errorf("Backlinks(b.md) = %v, want [a.md]", got)
	}
	if got := svc.Stats().PageCount; got != 2 {
		t.Errorf("Stats.PageCount = %d, want 2", got)
	}

	svc.Remove("a.md")
	if _, err := svc.Page("a.md"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Page(a.md) after Remove = %v, want ErrNotFound", err)
	}
	if got := svc.Backlinks("b.md"); got != nil {
		t.Errorf("Backlinks(b.md) = %v, want nil", got)
	}
}

func TestServiceReplace(t *testing.T) {
	svc := New(nil)
	svc.ApplyPage(&graph.Page{Path: "old.md"})

	fresh := graph.New()
	fresh.AddPage(&graph.Page{Path: "new.md"})
	svc.Replace(fresh)

	if _, err := svc.Page("old.md"); err == nil {
		t.Error("old.md survived Replace")
	}
	if _, err := svc.Page("new.md"); err != nil {
		t.Errorf("new.md missing after Replace: %v", err)
	}
}

func TestServiceMutateAtomic(t *testing.T) {
	svc := New(nil)
	before := svc.Revision()
	svc.Mutate(func(g *graph.Graph) {
		g.AddPage(&graph.Page{Path: "x.md", Links: []string{"y.md"}})
		g.AddPage(&graph.Page{Path: "y.md"})
	})
	if svc.Revision() != before+1 {
		t.Errorf("Revision bumped %d times, want 1", svc.Revision()-before)
	}
	if svc.Stats().PageCount != 2 {
		t.Errorf("PageCount = %d, want 2", svc.Stats().PageCount)
	}
}

func TestServiceExport(t *testing.T) {
	svc := New(nil)
	svc.ApplyPage(&graph.Page{Path: "a.md", Links: []string{"b.md"}})

	view := svc.Export()
	if len(view.Nodes) != 1 || len(view.Edges) != 1 {
		t.Errorf("Export = %+v, want 1 node 1 edge", view)
	}
}

func TestServiceConcurrentAccess(t *testing.T) {
	svc := New(nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.ApplyPage(&graph.Page{Path: fmt.Sprintf("w%d-%d.md", n, j)})
			}
		}(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				svc.Stats()
				svc.Backlinks("w0-0.md")
				svc.Read(func(g *graph.Graph) { g.PageCount() })
			}
		}()
	}
	wg.Wait()

	if got := svc.Stats().PageCount; got != 8*50 {
		t.Errorf("PageCount = %d, want %d", got, 8*50)
	}
}
