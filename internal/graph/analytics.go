package graph

import (
	"sort"
	"strings"
)

// Analytics queries are read-only and derive everything from the
// current snapshot. None of them error: unknown start nodes, self-links
// and cycles all resolve to empty or truncated results. Traversals only
// visit stored pages; a dangling link target is not a node.

// TraverseFrom performs a breadth-first traversal from start, visiting
// pages up to maxDepth hops away. Every page appears at most once in
// the result, so traversal terminates on cyclic graphs. An unknown
// start yields an empty result.
func (g *Graph) TraverseFrom(start string, maxDepth int) []string {
	return g.bfs(start, maxDepth)
}

// BreadthFirstSearch visits every page reachable from start in
// breadth-first order.
func (g *Graph) BreadthFirstSearch(start string) []string {
	return g.bfs(start, -1)
}

// bfs is the shared traversal core. maxDepth < 0 means unbounded.
func (g *Graph) bfs(start string, maxDepth int) []string {
	if _, ok := g.pages[start]; !ok {
		return nil
	}

	type hop struct {
		path  string
		depth int
	}
	visited := map[string]bool{start: true}
	order := []string{start}
	queue := []hop{{start, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if maxDepth >= 0 && cur.depth == maxDepth {
			continue
		}
		for _, target := range g.pages[cur.path].Links {
			if visited[target] {
				continue
			}
			if _, ok := g.pages[target]; !ok {
				continue
			}
			visited[target] = true
			order = append(order, target)
			queue = append(queue, hop{target, cur.depth + 1})
		}
	}
	return order
}

// DepthFirstSearch visits every page reachable from start using an
// explicit stack: a node's most-recently-pushed child is visited next.
func (g *Graph) DepthFirstSearch(start string) []string {
	if _, ok := g.pages[start]; !ok {
		return nil
	}

	visited := make(map[string]bool)
	var order []string
	stack := []string{start}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[cur] {
			continue
		}
		visited[cur] = true
		order = append(order, cur)
		for _, target := range g.pages[cur].Links {
			if visited[target] {
				continue
			}
			if _, ok := g.pages[target]; !ok {
				continue
			}
			stack = append(stack, target)
		}
	}
	return order
}

// ShortestPath returns the unweighted shortest path from one page to
// another, inclusive of both endpoints, or nil when to is unreachable.
// Neighbors expand in stored link order, so ties between equal-length
// paths resolve deterministically to the first one discovered.
func (g *Graph) ShortestPath(from, to string) []string {
	if _, ok := g.pages[from]; !ok {
		return nil
	}
	if _, ok := g.pages[to]; !ok {
		return nil
	}
	if from == to {
		return []string{from}
	}

	parent := map[string]string{from: ""}
	queue := []string{from}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, target := range g.pages[cur].Links {
			if _, seen := parent[target]; seen {
				continue
			}
			if _, ok := g.pages[target]; !ok {
				continue
			}
			parent[target] = cur
			if target == to {
				var path []string
				for n := to; n != ""; n = parent[n] {
					path = append(path, n)
				}
				for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return path
			}
			queue = append(queue, target)
		}
	}
	return nil
}

// PageRank computes ranks over the whole graph. Every page starts at
// 1/N; each iteration redistributes damping × rank/outdegree along each
// resolvable outbound edge, pages without any resolvable outbound edge
// spread their entire rank uniformly, and every page receives a base
// (1−damping)/N. Exactly iterations rounds run, no convergence check.
// Ranks are non-negative and sum to 1 for any non-empty graph.
func (g *Graph) PageRank(damping float64, iterations int) map[string]float64 {
	n := len(g.pages)
	if n == 0 {
		return map[string]float64{}
	}

	paths := g.Paths()
	ranks := make(map[string]float64, n)
	for _, p := range paths {
		ranks[p] = 1.0 / float64(n)
	}

	// Resolvable outbound edges only: a dangling link target is not a
	// node and must not leak rank.
	edges := make(map[string][]string, n)
	for _, p := range paths {
		for _, target := range g.pages[p].Links {
			if _, ok := g.pages[target]; ok {
				edges[p] = append(edges[p], target)
			}
		}
	}

	base := (1.0 - damping) / float64(n)
	for i := 0; i < iterations; i++ {
		next := make(map[string]float64, n)
		for _, p := range paths {
			next[p] = base
		}
		for _, p := range paths {
			out := edges[p]
			if len(out) == 0 {
				share := damping * ranks[p] / float64(n)
				for _, q := range paths {
					next[q] += share
				}
				continue
			}
			share := damping * ranks[p] / float64(len(out))
			for _, target := range out {
				next[target] += share
			}
		}
		ranks = next
	}
	return ranks
}

// DetectCycles finds directed cycles using a three-state depth-first
// search (unvisited, in-progress, finished) over an explicit stack. An
// edge into an in-progress page closes a cycle; a self-referencing link
// counts. Each returned cycle lists its member paths in walk order.
func (g *Graph) DetectCycles() [][]string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(g.pages))
	var cycles [][]string

	type frame struct {
		path string
		next int
	}

	for _, start := range g.Paths() {
		if color[start] != white {
			continue
		}
		color[start] = gray
		stack := []frame{{path: start}}
		trail := []string{start}

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			links := g.pages[top.path].Links
			advanced := false
			for top.next < len(links) {
				target := links[top.next]
				top.next++
				if _, ok := g.pages[target]; !ok {
					continue
				}
				switch color[target] {
				case gray:
					// Back edge: the cycle is the trail suffix from target.
					for i, p := range trail {
						if p == target {
							cycle := make([]string, len(trail)-i)
							copy(cycle, trail[i:])
							cycles = append(cycles, cycle)
							break
						}
					}
				case white:
					color[target] = gray
					stack = append(stack, frame{path: target})
					trail = append(trail, target)
					advanced = true
				}
				if advanced {
					break
				}
			}
			if !advanced {
				color[top.path] = black
				stack = stack[:len(stack)-1]
				trail = trail[:len(trail)-1]
			}
		}
	}
	return cycles
}

// Orphans returns the sorted paths of pages with no outbound links and
// no recorded backlinks.
func (g *Graph) Orphans() []string {
	var out []string
	for path, p := range g.pages {
		if len(p.Links) == 0 && len(g.backlinks[path]) == 0 {
			out = append(out, path)
		}
	}
	sort.Strings(out)
	return out
}

// InNamespace returns pages whose path, after converting the "___"
// namespace separator to "/", falls under prefix. Results are in
// sorted-path order.
func (g *Graph) InNamespace(prefix string) []*Page {
	var out []*Page
	for p := range g.Pages() {
		if strings.HasPrefix(strings.ReplaceAll(p.Path, "___", "/"), prefix) {
			out = append(out, p)
		}
	}
	return out
}

// PagesWithTag returns pages carrying the given tag, in sorted-path order.
func (g *Graph) PagesWithTag(tag string) []*Page {
	var out []*Page
	for p := range g.Pages() {
		if p.HasTag(tag) {
			out = append(out, p)
		}
	}
	return out
}

// PublicPages returns pages marked public via page properties, in
// sorted-path order. This is the subset the publishing pipeline emits
// when publish-all is off.
func (g *Graph) PublicPages() []*Page {
	var out []*Page
	for p := range g.Pages() {
		if p.IsPublic() {
			out = append(out, p)
		}
	}
	return out
}
