// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes read-only structural queries over the knowledge graph
// for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/othala/internal/graph"
	"github.com/starford/othala/internal/graphservice"
)

// Server wraps the MCP server with graph query tools.
type Server struct {
	mcp *server.MCPServer
	svc *graphservice.Service
}

// New creates a new MCP server with all graph tools registered.
func New(svc *graphservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Othala",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read one parsed page: properties, block tree, tags, and outbound links."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Vault-relative path of the page (e.g. topics/graphs.md)")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("get_backlinks",
		mcp.WithDescription("Find all pages that link to the specified page."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of the page to find backlinks for")),
	), s.getBacklinks)

	s.mcp.AddTool(mcp.NewTool("graph_stats",
		mcp.WithDescription("Aggregate statistics: page count, total blocks, total links, orphan pages."),
	), s.graphStats)

	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List page paths, optionally restricted to a namespace prefix or tag."),
		mcp.WithString("namespace", mcp.Description("Optional namespace prefix (e.g. project/)")),
		mcp.WithString("tag", mcp.Description("Optional tag filter (without #)")),
	), s.listPages)

	s.mcp.AddTool(mcp.NewTool("shortest_path",
		mcp.WithDescription("Shortest link chain between two pages by hop count."),
		mcp.WithString("from", mcp.Required(), mcp.Description("Start page path")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target page path")),
	), s.shortestPath)

	s.mcp.AddTool(mcp.NewTool("top_pages",
		mcp.WithDescription("Most central pages by PageRank over the link structure."),
		mcp.WithString("limit", mcp.Description("Maximum number of pages to return (default 10)")),
	), s.topPages)

	// Resource: the node-link export consumed by visualization clients.
	s.mcp.AddResource(
		mcp.NewResource("othala://graph-export", "Graph Export",
			mcp.WithResourceDescription("Node-link JSON view of the whole knowledge graph."),
			mcp.WithMIMEType("application/json"),
		),
		s.readGraphExportResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	p, err := s.svc.Page(path)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("%v: %s", err, path)), nil
	}
	out, err := graph.MarshalPage(p)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getBacklinks(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	bl := s.svc.Backlinks(path)
	if len(bl) == 0 {
		return mcp.NewToolResultText("no backlinks found"), nil
	}
	return mcp.NewToolResultText(strings.Join(bl, "\n")), nil
}

func (s *Server) graphStats(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, _ := json.MarshalIndent(s.svc.Stats(), "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	namespace := ""
	if v, err := req.RequireString("namespace"); err == nil {
		namespace = v
	}
	tag := ""
	if v, err := req.RequireString("tag"); err == nil {
		tag = v
	}

	var paths []string
	s.svc.Read(func(g *graph.Graph) {
		for p := range g.Pages() {
			if tag != "" && !p.HasTag(tag) {
				continue
			}
			if namespace != "" && !strings.HasPrefix(strings.ReplaceAll(p.Path, "___", "/"), namespace) {
				continue
			}
			paths = append(paths, p.Path)
		}
	})
	if len(paths) == 0 {
		return mcp.NewToolResultText("no pages found"), nil
	}
	return mcp.NewToolResultText(strings.Join(paths, "\n")), nil
}

func (s *Server) shortestPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var path []string
	s.svc.Read(func(g *graph.Graph) {
		path = g.ShortestPath(from, to)
	})
	if path == nil {
		return mcp.NewToolResultText(fmt.Sprintf("no path from %s to %s", from, to)), nil
	}
	return mcp.NewToolResultText(strings.Join(path, " -> ")), nil
}

func (s *Server) topPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := 10
	if v, err := req.RequireString("limit"); err == nil {
		if n, convErr := parsePositive(v); convErr == nil {
			limit = n
		}
	}

	var ranks map[string]float64
	s.svc.Read(func(g *graph.Graph) {
		ranks = g.PageRank(0.85, 20)
	})

	type entry struct {
		path string
		rank float64
	}
	ordered := make([]entry, 0, len(ranks))
	for p, r := range ranks {
		ordered = append(ordered, entry{p, r})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].rank != ordered[j].rank {
			return ordered[i].rank > ordered[j].rank
		}
		return ordered[i].path < ordered[j].path
	})
	if limit < len(ordered) {
		ordered = ordered[:limit]
	}

	var b strings.Builder
	for _, e := range ordered {
		fmt.Fprintf(&b, "%.6f  %s\n", e.rank, e.path)
	}
	if b.Len() == 0 {
		return mcp.NewToolResultText("graph is empty"), nil
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) readGraphExportResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out, err := json.MarshalIndent(s.svc.Export(), "", "  ")
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      "othala://graph-export",
			MIMEType: "application/json",
			Text:     string(out),
		},
	}, nil
}

func parsePositive(s string) (int, error) {
	var n int
	if _, err := fmt.Sscanf(s, "%d", &n); err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("not positive: %d", n)
	}
	return n, nil
}
