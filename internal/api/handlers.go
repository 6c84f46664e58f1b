package api

import (
	"errors"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/apperr"
	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/graphservice"
)

// Default PageRank parameters when the caller does not override them.
const (
	defaultDamping    = 0.85
	defaultIterations = 20
)

// Handler holds API route handlers over one graph service.
type Handler struct {
	svc *graphservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *graphservice.Service) *Handler {
	return &Handler{svc: svc}
}

// pagePath extracts the page path from the URL wildcard. Supports
// encoded slashes from generated clients (e.g. topics%2Fpage.md).
func pagePath(r *http.Request) string {
	raw := strings.TrimPrefix(chi.URLParam(r, "*"), "/")
	if raw == "" {
		return ""
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return raw
	}
	return decoded
}

// Graph handles GET /graph: the node-link view for visualization.
func (h *Handler) Graph(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Export())
}

// Stats handles GET /stats.
func (h *Handler) Stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Stats())
}

// ListPages handles GET /pages with optional tag, namespace, and
// public filters.
func (h *Handler) ListPages(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tag := q.Get("tag")
	namespace := q.Get("namespace")
	publicOnly := q.Get("public") == "true"

	var items []PageListItem
	h.svc.Read(func(g *graph.Graph) {
		for p := range g.Pages() {
			if tag != "" && !p.HasTag(tag) {
				continue
			}
			if publicOnly && !p.IsPublic() {
				continue
			}
			if namespace != "" && !strings.HasPrefix(strings.ReplaceAll(p.Path, "___", "/"), namespace) {
				continue
			}
			items = append(items, PageListItem{
				Path:  p.Path,
				Title: p.Title,
				Tags:  p.Tags,
				Links: len(p.Links),
			})
		}
	})
	if items == nil {
		items = []PageListItem{}
	}
	writeJSON(w, http.StatusOK, PageListResponse{Pages: items, Total: len(items)})
}

// GetPage handles GET /pages/*.
func (h *Handler) GetPage(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	p, err := h.svc.Page(path)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
			return
		}
		writeJSON(w, http.StatusInternalServerError, errorBody(err.Error()))
		return
	}
	backlinks := h.svc.Backlinks(path)
	if backlinks == nil {
		backlinks = []string{}
	}
	writeJSON(w, http.StatusOK, PageDetail{Page: p, Backlinks: backlinks})
}

// Backlinks handles GET /backlinks/*. Unknown targets yield an empty
// list, not an error: dangling link targets are legitimate queries.
func (h *Handler) Backlinks(w http.ResponseWriter, r *http.Request) {
	path := pagePath(r)
	if path == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("path is required"))
		return
	}
	backlinks := h.svc.Backlinks(path)
	if backlinks == nil {
		backlinks = []string{}
	}
	writeJSON(w, http.StatusOK, BacklinksResponse{Path: path, Backlinks: backlinks})
}

// Traverse handles GET /analytics/traverse?from=&depth=.
func (h *Handler) Traverse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from := q.Get("from")
	if from == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from is required"))
		return
	}
	depth := -1
	if raw := q.Get("depth"); raw != "" {
		d, err := strconv.Atoi(raw)
		if err != nil || d < 0 {
			writeJSON(w, http.StatusBadRequest, errorBody("depth must be a non-negative integer"))
			return
		}
		depth = d
	}

	var visited []string
	h.svc.Read(func(g *graph.Graph) {
		if depth < 0 {
			visited = g.BreadthFirstSearch(from)
		} else {
			visited = g.TraverseFrom(from, depth)
		}
	})
	if visited == nil {
		visited = []string{}
	}
	writeJSON(w, http.StatusOK, TraverseResponse{Start: from, Depth: depth, Visited: visited})
}

// ShortestPath handles GET /analytics/shortest-path?from=&to=.
func (h *Handler) ShortestPath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	from, to := q.Get("from"), q.Get("to")
	if from == "" || to == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("from and to are required"))
		return
	}

	var path []string
	h.svc.Read(func(g *graph.Graph) {
		path = g.ShortestPath(from, to)
	})
	resp := ShortestPathResponse{From: from, To: to, Found: path != nil, Path: path}
	if resp.Path == nil {
		resp.Path = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PageRank handles GET /analytics/pagerank?damping=&iterations=&limit=.
func (h *Handler) PageRank(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	damping := defaultDamping
	if raw := q.Get("damping"); raw != "" {
		d, err := strconv.ParseFloat(raw, 64)
		if err != nil || d < 0 || d > 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("damping must be in [0, 1]"))
			return
		}
		damping = d
	}
	iterations := defaultIterations
	if raw := q.Get("iterations"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeJSON(w, http.StatusBadRequest, errorBody("iterations must be a positive integer"))
			return
		}
		iterations = n
	}
	limit, _ := strconv.Atoi(q.Get("limit"))

	var ranks map[string]float64
	h.svc.Read(func(g *graph.Graph) {
		ranks = g.PageRank(damping, iterations)
	})

	out := make([]RankedPage, 0, len(ranks))
	for path, rank := range ranks {
		out = append(out, RankedPage{Path: path, Rank: rank})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rank != out[j].Rank {
			return out[i].Rank > out[j].Rank
		}
		return out[i].Path < out[j].Path
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	writeJSON(w, http.StatusOK, PageRankResponse{Damping: damping, Iterations: iterations, Ranks: out})
}

// Orphans handles GET /analytics/orphans.
func (h *Handler) Orphans(w http.ResponseWriter, _ *http.Request) {
	var orphans []string
	h.svc.Read(func(g *graph.Graph) {
		orphans = g.Orphans()
	})
	if orphans == nil {
		orphans = []string{}
	}
	writeJSON(w, http.StatusOK, OrphansResponse{Orphans: orphans})
}

// Cycles handles GET /analytics/cycles.
func (h *Handler) Cycles(w http.ResponseWriter, _ *http.Request) {
	var cycles [][]string
	h.svc.Read(func(g *graph.Graph) {
		cycles = g.DetectCycles()
	})
	if cycles == nil {
		cycles = [][]string{}
	}
	writeJSON(w, http.StatusOK, CyclesResponse{Cycles: cycles})
}
