package api

import "github.com/starford/othala/internal/graph"

// PageDetail is the full page response, enriched with backlinks.
type PageDetail struct {
	*graph.Page
	Backlinks []string `json:"backlinks"`
}

// PageListItem is a lightweight item in a list response.
type PageListItem struct {
	Path  string   `json:"path"`
	Title string   `json:"title"`
	Tags  []string `json:"tags,omitempty"`
	Links int      `json:"links"`
}

// PageListResponse wraps page listings.
type PageListResponse struct {
	Pages []PageListItem `json:"pages"`
	Total int            `json:"total"`
}

// BacklinksResponse wraps a backlink query.
type BacklinksResponse struct {
	Path      string   `json:"path"`
	Backlinks []string `json:"backlinks"`
}

// TraverseResponse wraps a traversal result in visit order.
type TraverseResponse struct {
	Start   string   `json:"start"`
	Depth   int      `json:"depth"`
	Visited []string `json:"visited"`
}

// ShortestPathResponse wraps a shortest-path query. Found is false and
// Path empty when the target is unreachable.
type ShortestPathResponse struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Found bool     `json:"found"`
	Path  []string `json:"path"`
}

// RankedPage is one PageRank entry.
type RankedPage struct {
	Path string  `json:"path"`
	Rank float64 `json:"rank"`
}

// PageRankResponse wraps PageRank results in descending rank order.
type PageRankResponse struct {
	Damping    float64      `json:"damping"`
	Iterations int          `json:"iterations"`
	Ranks      []RankedPage `json:"ranks"`
}

// CyclesResponse wraps detected cycles.
type CyclesResponse struct {
	Cycles [][]string `json:"cycles"`
}

// OrphansResponse wraps orphan detection.
type OrphansResponse struct {
	Orphans []string `json:"orphans"`
}
