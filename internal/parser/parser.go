// Package parser turns one outline-style Markdown file into a
// graph.Page: frontmatter properties, the indented block tree, and the
// tags and wiki-links extracted from it. The parser never fails on
// malformed or adversarial content; the single hard error is an
// unclosed frontmatter fence.
package parser

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/starford/othala/internal/graph"
)

var (
	wikilinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	tagRe      = regexp.MustCompile(`#(\w+)`)
	propertyRe = regexp.MustCompile(`^([A-Za-z][\w-]*)::\s*(.*)$`)
)

// ErrUnclosedFrontmatter reports a frontmatter fence opened but never
// closed before the input ended.
var ErrUnclosedFrontmatter = errors.New("unclosed frontmatter")

// ParseError scopes a parse failure to one file.
type ParseError struct {
	Path string
	Err  error
}

func (e *ParseError) Error() string { return fmt.Sprintf("parse %s: %v", e.Path, e.Err) }

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts raw page content plus its vault-relative path into a
// Page. Content is accepted as-is: mixed line endings, unusual Unicode
// and non-text bytes all become opaque block content. The only failure
// mode is ErrUnclosedFrontmatter, wrapped in a *ParseError naming path.
func Parse(content []byte, path string) (*graph.Page, error) {
	page := &graph.Page{
		Path:       path,
		Title:      titleFromPath(path),
		Properties: map[string]string{},
	}

	lines := splitLines(string(content))

	rest := lines
	if len(lines) > 0 && lines[0] == "---" {
		closing := -1
		for i := 1; i < len(lines); i++ {
			if lines[i] == "---" {
				closing = i
				break
			}
			if key, value, ok := strings.Cut(lines[i], ":"); ok {
				page.Properties[strings.TrimSpace(key)] = strings.TrimSpace(value)
			}
		}
		if closing < 0 {
			return nil, &ParseError{Path: path, Err: ErrUnclosedFrontmatter}
		}
		rest = lines[closing+1:]
	}

	page.Blocks = buildBlockTree(rest, page.Properties)
	page.Tags, page.Links = extractTagsAndLinks(page.Blocks)
	return page, nil
}

// splitLines splits on \n and drops a trailing \r per line, so CRLF and
// LF inputs parse alike.
func splitLines(s string) []string {
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// titleFromPath derives the page title from the last path segment with
// the markdown suffix removed.
func titleFromPath(path string) string {
	name := path
	if i := strings.LastIndex(name, "/"); i >= 0 {
		name = name[i+1:]
	}
	name = strings.TrimSuffix(name, ".md")
	return strings.TrimSuffix(name, ".markdown")
}

// treeFrame pairs an open block with the indentation that produced it.
type treeFrame struct {
	block  *graph.Block
	indent int
}

// buildBlockTree folds lines into a block tree with an explicit frame
// stack instead of recursion, so thousand-level nesting cannot exhaust
// the call stack. A line attaches as a child of the nearest preceding
// line with strictly smaller indentation; blank lines are skipped and
// never close a block's children. Lines of the form `key:: value`
// become properties of their parent block (page properties at top
// level) rather than block nodes.
func buildBlockTree(lines []string, pageProps map[string]string) []*graph.Block {
	var top []*graph.Block
	var stack []treeFrame
	nextID := 0

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		indent := countIndent(line)
		content := blockContent(line)

		for len(stack) > 0 && stack[len(stack)-1].indent >= indent {
			stack = stack[:len(stack)-1]
		}

		if m := propertyRe.FindStringSubmatch(content); m != nil {
			if len(stack) > 0 {
				parent := stack[len(stack)-1].block
				if parent.Properties == nil {
					parent.Properties = map[string]string{}
				}
				parent.Properties[m[1]] = m[2]
			} else {
				pageProps[m[1]] = m[2]
			}
			continue
		}

		block := &graph.Block{
			ID:      fmt.Sprintf("block-%d", nextID),
			Content: content,
			Level:   indent,
		}
		nextID++

		if len(stack) == 0 {
			top = append(top, block)
		} else {
			parent := stack[len(stack)-1].block
			parent.Children = append(parent.Children, block)
		}
		stack = append(stack, treeFrame{block: block, indent: indent})
	}
	return top
}

// countIndent returns the indentation level of a line: one level per
// leading tab plus one per leading two-space group. A trailing odd
// space counts for nothing.
func countIndent(line string) int {
	indent := 0
	for i := 0; i < len(line); {
		switch {
		case line[i] == '\t':
			indent++
			i++
		case line[i] == ' ':
			if i+1 < len(line) && line[i+1] == ' ' {
				indent++
				i += 2
			} else {
				i++
			}
		default:
			return indent
		}
	}
	return indent
}

// blockContent strips the leading bullet marker, if any, from a line.
func blockContent(line string) string {
	trimmed := strings.TrimSpace(line)
	for _, marker := range []string{"- ", "* ", "+ "} {
		if strings.HasPrefix(trimmed, marker) {
			return trimmed[len(marker):]
		}
	}
	return trimmed
}

// extractTagsAndLinks walks the finished tree in document order
// (iteratively, same stack-depth guarantee as construction) and
// collects #tags and [[wiki-links]] from block content. Link targets
// are taken verbatim; nested brackets are not resolved. Both lists are
// de-duplicated preserving first-occurrence order across the page.
func extractTagsAndLinks(blocks []*graph.Block) (tags, links []string) {
	seenTag := make(map[string]struct{})
	seenLink := make(map[string]struct{})

	stack := make([]*graph.Block, 0, len(blocks))
	for i := len(blocks) - 1; i >= 0; i-- {
		stack = append(stack, blocks[i])
	}

	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		for _, m := range tagRe.FindAllStringSubmatch(b.Content, -1) {
			if _, dup := seenTag[m[1]]; dup {
				continue
			}
			seenTag[m[1]] = struct{}{}
			tags = append(tags, m[1])
		}
		for _, m := range wikilinkRe.FindAllStringSubmatch(b.Content, -1) {
			if _, dup := seenLink[m[1]]; dup {
				continue
			}
			seenLink[m[1]] = struct{}{}
			links = append(links, m[1])
		}

		for i := len(b.Children) - 1; i >= 0; i-- {
			stack = append(stack, b.Children[i])
		}
	}
	return tags, links
}
