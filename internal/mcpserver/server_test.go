package mcpserver

import (
	"context"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/starford/othala/internal/builder"
	"github.com/starford/othala/internal/graphservice"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	g := builder.Build(map[string]string{
		"index.md":       "- hub links [[topics___go.md]] and [[journal.md]]",
		"topics___go.md": "- #go notes [[journal.md]]",
		"journal.md":     "- daily",
	})
	return New(graphservice.New(g))
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	// mcp-go has no direct "call tool" test helper; invoke the handler
	// functions directly.
	var result *mcp.CallToolResult
	var err error

	switch name {
	case "read_page":
		result, err = srv.readPage(ctx, req)
	case "get_backlinks":
		result, err = srv.getBacklinks(ctx, req)
	case "graph_stats":
		result, err = srv.graphStats(ctx, req)
	case "list_pages":
		result, err = srv.listPages(ctx, req)
	case "shortest_path":
		result, err = srv.shortestPath(ctx, req)
	case "top_pages":
		result, err = srv.topPages(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestReadPage(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "read_page", map[string]interface{}{"path": "index.md"})
	text := resultText(r)
	if !strings.Contains(text, `"path": "index.md"`) && !strings.Contains(text, `"path":"index.md"`) {
		t.Errorf("read result = %q, want page JSON", text)
	}

	r = callTool(t, srv, "read_page", map[string]interface{}{"path": "nope.md"})
	if !r.IsError {
		t.Error("expected error for missing page")
	}
}

func TestGetBacklinksTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "get_backlinks", map[string]interface{}{"path": "journal.md"})
	text := resultText(r)
	if text != "index.md\ntopics___go.md" {
		t.Errorf("backlinks = %q", text)
	}

	r = callTool(t, srv, "get_backlinks", map[string]interface{}{"path": "index.md"})
	if resultText(r) != "no backlinks found" {
		t.Errorf("empty backlinks = %q", resultText(r))
	}
}

func TestGraphStatsTool(t *testing.T) {
	srv := testServer(t)
	r := callTool(t, srv, "graph_stats", map[string]interface{}{})
	text := resultText(r)
	if !strings.Contains(text, `"page_count": 3`) {
		t.Errorf("stats = %q", text)
	}
}

func TestListPagesTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "list_pages", map[string]interface{}{})
	lines := strings.Split(strings.TrimSpace(resultText(r)), "\n")
	if len(lines) != 3 {
		t.Errorf("list = %v, want 3 paths", lines)
	}

	r = callTool(t, srv, "list_pages", map[string]interface{}{"tag": "go"})
	if resultText(r) != "topics___go.md" {
		t.Errorf("tag filter = %q", resultText(r))
	}

	r = callTool(t, srv, "list_pages", map[string]interface{}{"namespace": "topics/"})
	if resultText(r) != "topics___go.md" {
		t.Errorf("namespace filter = %q", resultText(r))
	}

	r = callTool(t, srv, "list_pages", map[string]interface{}{"tag": "absent"})
	if resultText(r) != "no pages found" {
		t.Errorf("empty list = %q", resultText(r))
	}
}

func TestShortestPathTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "shortest_path", map[string]interface{}{
		"from": "index.md", "to": "journal.md",
	})
	if resultText(r) != "index.md -> journal.md" {
		t.Errorf("path = %q", resultText(r))
	}

	r = callTool(t, srv, "shortest_path", map[string]interface{}{
		"from": "journal.md", "to": "index.md",
	})
	if !strings.Contains(resultText(r), "no path") {
		t.Errorf("unreachable = %q", resultText(r))
	}
}

func TestTopPagesTool(t *testing.T) {
	srv := testServer(t)

	r := callTool(t, srv, "top_pages", map[string]interface{}{"limit": "2"})
	lines := strings.Split(strings.TrimSpace(resultText(r)), "\n")
	if len(lines) != 2 {
		t.Errorf("top pages = %v, want 2 lines", lines)
	}
	// journal.md has the most inbound links.
	if !strings.Contains(lines[0], "journal.md") {
		t.Errorf("top page line = %q, want journal.md first", lines[0])
	}
}

func TestGraphExportResource(t *testing.T) {
	srv := testServer(t)
	contents, err := srv.readGraphExportResource(context.Background(), mcp.ReadResourceRequest{})
	if err != nil {
		t.Fatalf("readGraphExportResource: %v", err)
	}
	if len(contents) != 1 {
		t.Fatalf("got %d contents, want 1", len(contents))
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents type = %T", contents[0])
	}
	if !strings.Contains(tc.Text, `"nodes"`) || !strings.Contains(tc.Text, `"edges"`) {
		t.Errorf("export = %q, want node-link JSON", tc.Text)
	}
}
