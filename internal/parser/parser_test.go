package parser

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParseFrontmatter(t *testing.T) {
	content := `---
title: My Page
public: true
tags: a, b
---
- first block`

	page, err := Parse([]byte(content), "pages/my-page.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Title != "my-page" {
		t.Errorf("Title = %q, want %q", page.Title, "my-page")
	}
	if got := page.Properties["title"]; got != "My Page" {
		t.Errorf("Properties[title] = %q, want %q", got, "My Page")
	}
	if got := page.Properties["public"]; got != "true" {
		t.Errorf("Properties[public] = %q, want %q", got, "true")
	}
	if !page.IsPublic() {
		t.Error("IsPublic() = false, want true")
	}
	if len(page.Blocks) != 1 || page.Blocks[0].Content != "first block" {
		t.Errorf("Blocks = %+v, want one block %q", page.Blocks, "first block")
	}
}

func TestParseUnclosedFrontmatter(t *testing.T) {
	content := "---\ntitle: Broken\n- never closed"

	_, err := Parse([]byte(content), "pages/broken.md")
	if err == nil {
		t.Fatal("Parse: expected error for unclosed frontmatter")
	}
	if !errors.Is(err, ErrUnclosedFrontmatter) {
		t.Errorf("error = %v, want ErrUnclosedFrontmatter", err)
	}
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("error type = %T, want *ParseError", err)
	}
	if perr.Path != "pages/broken.md" {
		t.Errorf("ParseError.Path = %q, want %q", perr.Path, "pages/broken.md")
	}
}

func TestParseNoFrontmatter(t *testing.T) {
	page, err := Parse([]byte("- just a block"), "note.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Properties) != 0 {
		t.Errorf("Properties = %v, want empty", page.Properties)
	}
	// A lone "---" mid-document is content, not frontmatter.
	page, err = Parse([]byte("intro\n---\nmore"), "note.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Blocks) != 3 {
		t.Errorf("got %d blocks, want 3", len(page.Blocks))
	}
}

func TestParseBlockNesting(t *testing.T) {
	content := "- a\n\t- b\n\t\t- c\n\t- d\n- e"

	page, err := Parse([]byte(content), "tree.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Blocks) != 2 {
		t.Fatalf("got %d top-level blocks, want 2", len(page.Blocks))
	}
	a := page.Blocks[0]
	if a.Content != "a" || len(a.Children) != 2 {
		t.Fatalf("block a = %+v, want content %q with 2 children", a, "a")
	}
	if a.Children[0].Content != "b" || a.Children[1].Content != "d" {
		t.Errorf("children of a = %q, %q; want b, d", a.Children[0].Content, a.Children[1].Content)
	}
	if len(a.Children[0].Children) != 1 || a.Children[0].Children[0].Content != "c" {
		t.Errorf("grandchild = %+v, want c", a.Children[0].Children)
	}
	if page.Blocks[1].Content != "e" {
		t.Errorf("second top block = %q, want e", page.Blocks[1].Content)
	}
	if page.BlockCount() != 5 {
		t.Errorf("BlockCount() = %d, want 5", page.BlockCount())
	}
}

func TestParseSpaceIndentation(t *testing.T) {
	// Two spaces per level; a lone trailing space counts for nothing.
	cases := []struct {
		line string
		want int
	}{
		{"- a", 0},
		{"  - a", 1},
		{"    - a", 2},
		{"\t- a", 1},
		{"\t  - a", 2},
		{"   - a", 1},
		{" - a", 0},
	}
	for _, tc := range cases {
		if got := countIndent(tc.line); got != tc.want {
			t.Errorf("countIndent(%q) = %d, want %d", tc.line, got, tc.want)
		}
	}
}

func TestParseBulletMarkers(t *testing.T) {
	page, err := Parse([]byte("- dash\n* star\n+ plus\nplain"), "bullets.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"dash", "star", "plus", "plain"}
	if len(page.Blocks) != len(want) {
		t.Fatalf("got %d blocks, want %d", len(page.Blocks), len(want))
	}
	for i, w := range want {
		if page.Blocks[i].Content != w {
			t.Errorf("block %d = %q, want %q", i, page.Blocks[i].Content, w)
		}
	}
}

func TestParseDeepNesting(t *testing.T) {
	const depth = 1200
	var sb strings.Builder
	for i := 0; i < depth; i++ {
		sb.WriteString(strings.Repeat("\t", i))
		fmt.Fprintf(&sb, "- level %d\n", i)
	}

	page, err := Parse([]byte(sb.String()), "deep.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if got := page.BlockCount(); got != depth {
		t.Fatalf("BlockCount() = %d, want %d", got, depth)
	}

	b := page.Blocks[0]
	for i := 1; i < depth; i++ {
		if len(b.Children) != 1 {
			t.Fatalf("level %d has %d children, want 1", i-1, len(b.Children))
		}
		b = b.Children[0]
	}
	if b.Content != fmt.Sprintf("level %d", depth-1) {
		t.Errorf("deepest block = %q", b.Content)
	}
}

func TestParseTagsAndLinks(t *testing.T) {
	content := `- intro #project see [[Target Page]]
	- nested #project #idea links [[Other]] and [[Target Page]]
- tail [[Third]]`

	page, err := Parse([]byte(content), "links.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	wantTags := []string{"project", "idea"}
	if len(page.Tags) != len(wantTags) {
		t.Fatalf("Tags = %v, want %v", page.Tags, wantTags)
	}
	for i, w := range wantTags {
		if page.Tags[i] != w {
			t.Errorf("Tags[%d] = %q, want %q", i, page.Tags[i], w)
		}
	}

	wantLinks := []string{"Target Page", "Other", "Third"}
	if len(page.Links) != len(wantLinks) {
		t.Fatalf("Links = %v, want %v", page.Links, wantLinks)
	}
	for i, w := range wantLinks {
		if page.Links[i] != w {
			t.Errorf("Links[%d] = %q, want %q", i, page.Links[i], w)
		}
	}
}

func TestParseLinkTargetsVerbatim(t *testing.T) {
	page, err := Parse([]byte("- see [[Page|Alias]] and [[ns/Sub Page]]"), "verbatim.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	want := []string{"Page|Alias", "ns/Sub Page"}
	if len(page.Links) != 2 || page.Links[0] != want[0] || page.Links[1] != want[1] {
		t.Errorf("Links = %v, want %v", page.Links, want)
	}
}

func TestParseBlockProperties(t *testing.T) {
	content := `- parent block
	id:: custom-id
	collapsed:: true
	- child
priority:: high`

	page, err := Parse([]byte(content), "props.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Blocks) != 1 {
		t.Fatalf("got %d top blocks, want 1", len(page.Blocks))
	}
	parent := page.Blocks[0]
	if got := parent.Properties["id"]; got != "custom-id" {
		t.Errorf("parent id property = %q, want %q", got, "custom-id")
	}
	if got := parent.Properties["collapsed"]; got != "true" {
		t.Errorf("parent collapsed property = %q, want %q", got, "true")
	}
	if len(parent.Children) != 1 || parent.Children[0].Content != "child" {
		t.Errorf("children = %+v, want one child", parent.Children)
	}
	// Top-level property lines land on the page.
	if got := page.Properties["priority"]; got != "high" {
		t.Errorf("page priority property = %q, want %q", got, "high")
	}
}

func TestParseBlockIDsDeterministic(t *testing.T) {
	content := "- a\n\t- b\n- c"
	first, err := Parse([]byte(content), "ids.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	second, err := Parse([]byte(content), "ids.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if first.Blocks[0].ID != "block-0" || first.Blocks[0].Children[0].ID != "block-1" || first.Blocks[1].ID != "block-2" {
		t.Errorf("IDs = %q %q %q, want block-0 block-1 block-2",
			first.Blocks[0].ID, first.Blocks[0].Children[0].ID, first.Blocks[1].ID)
	}
	if first.Blocks[1].ID != second.Blocks[1].ID {
		t.Error("IDs differ between identical parses")
	}
}

func TestParseCRLF(t *testing.T) {
	page, err := Parse([]byte("---\r\nkey: v\r\n---\r\n- a\r\n\t- b\r\n"), "crlf.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if page.Properties["key"] != "v" {
		t.Errorf("Properties = %v", page.Properties)
	}
	if page.BlockCount() != 2 {
		t.Errorf("BlockCount() = %d, want 2", page.BlockCount())
	}
}

func TestParseBlankLinesSkipped(t *testing.T) {
	page, err := Parse([]byte("- a\n\n\t- still child of a\n"), "blanks.md")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(page.Blocks) != 1 || len(page.Blocks[0].Children) != 1 {
		t.Errorf("blank line closed the block: %+v", page.Blocks)
	}
}

func TestParseArbitraryBytes(t *testing.T) {
	inputs := [][]byte{
		nil,
		[]byte(""),
		[]byte("\x00\x01\x02"),
		[]byte("- café ☃ [[Über]] #été"),
		[]byte(strings.Repeat("]", 64) + strings.Repeat("[", 64)),
	}
	for _, in := range inputs {
		if _, err := Parse(in, "any.md"); err != nil {
			t.Errorf("Parse(%q) = %v, want nil error", in, err)
		}
	}
}

func TestTitleFromPath(t *testing.T) {
	cases := []struct {
		path string
		want string
	}{
		{"pages/foo.md", "foo"},
		{"foo.markdown", "foo"},
		{"a/b/c.md", "c"},
		{"ns___sub.md", "ns___sub"},
	}
	for _, tc := range cases {
		if got := titleFromPath(tc.path); got != tc.want {
			t.Errorf("titleFromPath(%q) = %q, want %q", tc.path, got, tc.want)
		}
	}
}
