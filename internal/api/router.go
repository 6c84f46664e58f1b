// Package api exposes the graph query surface over REST using chi.
// Everything is read-only: the vault on disk is the source of truth and
// mutations arrive through the sync and watcher paths.
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/othala/internal/graphservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth
// group.
func NewRouter(svc *graphservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Graph export and statistics.
	r.Get("/graph", h.Graph)
	r.Get("/stats", h.Stats)

	// Pages.
	r.Get("/pages", h.ListPages)
	r.Get("/pages/*", h.GetPage)
	r.Get("/backlinks/*", h.Backlinks)

	// Structural analytics.
	r.Get("/analytics/traverse", h.Traverse)
	r.Get("/analytics/shortest-path", h.ShortestPath)
	r.Get("/analytics/pagerank", h.PageRank)
	r.Get("/analytics/orphans", h.Orphans)
	r.Get("/analytics/cycles", h.Cycles)

	// SSE endpoint (protected by the same auth middleware).
	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
