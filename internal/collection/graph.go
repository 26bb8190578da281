package collection

import (
	"fmt"
	"slices"
	"strings"
)

// depGraph is the dependency graph of one derivation pass: an edge runs
// from a derived source to every id its selector groups resolve to.
type depGraph struct {
	nodes []string            // insertion order
	edges map[string][]string // derived id -> dependency ids, resolution order
	rank  map[string]int      // id -> position in nodes
}

// buildGraph resolves every derived source's selector once. A selector
// that panics contributes no edges; evaluate records the failure.
func (c *Collection) buildGraph() *depGraph {
	g := &depGraph{
		nodes: slices.Clone(c.order),
		edges: make(map[string][]string),
		rank:  make(map[string]int, len(c.order)),
	}
	for i, id := range g.nodes {
		g.rank[id] = i
		rec := c.records[id]
		if rec.kind != KindDerived {
			continue
		}
		var deps []string
		groups, _ := c.resolveGroups(rec.sources)
		for _, ids := range groups {
			deps = append(deps, ids...)
		}
		g.edges[id] = deps
	}
	return g
}

func (g *depGraph) hasSelfLoop(id string) bool {
	return slices.Contains(g.edges[id], id)
}

// cyclic reports whether a component is a cycle: more than one member, or
// a single member that depends on itself.
func (g *depGraph) cyclic(comp []string) bool {
	return len(comp) > 1 || (len(comp) == 1 && g.hasSelfLoop(comp[0]))
}

// components returns the strongly connected components of g using
// Tarjan's algorithm with an explicit call stack.
//
// Components come out dependencies-first: every component is emitted after
// all components it has edges into. Members of a component are ordered by
// insertion order. Roots are visited in insertion order, so the output is
// deterministic for a given collection.
//
// Node state is three-valued: unvisited (no index), in progress (on the
// Tarjan stack), done (indexed and popped).
func (g *depGraph) components() [][]string {
	type frame struct {
		node string
		next int // index of the next edge to follow
	}

	var (
		index   = 0
		stack   []string
		indices = make(map[string]int, len(g.nodes))
		lowlink = make(map[string]int, len(g.nodes))
		onStack = make(map[string]bool, len(g.nodes))
		sccs    [][]string
	)

	visit := func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true
	}

	for _, root := range g.nodes {
		if _, seen := indices[root]; seen {
			continue
		}
		visit(root)
		calls := []frame{{node: root}}

		for len(calls) > 0 {
			top := &calls[len(calls)-1]
			v := top.node
			succ := g.edges[v]

			if top.next < len(succ) {
				w := succ[top.next]
				top.next++
				if _, seen := indices[w]; !seen {
					visit(w)
					calls = append(calls, frame{node: w})
				} else if onStack[w] {
					lowlink[v] = min(lowlink[v], indices[w])
				}
				continue
			}

			// All successors of v handled.
			if lowlink[v] == indices[v] {
				var scc []string
				for {
					w := stack[len(stack)-1]
					stack = stack[:len(stack)-1]
					onStack[w] = false
					scc = append(scc, w)
					if w == v {
						break
					}
				}
				slices.SortFunc(scc, func(a, b string) int { return g.rank[a] - g.rank[b] })
				sccs = append(sccs, scc)
			}

			calls = calls[:len(calls)-1]
			if len(calls) > 0 {
				parent := calls[len(calls)-1].node
				lowlink[parent] = min(lowlink[parent], lowlink[v])
			}
		}
	}

	return sccs
}

// CycleWarning describes one dependency cycle.
type CycleWarning struct {
	Members []string `json:"members"` // insertion order
	Path    []string `json:"path"`    // e.g. ["C", "D", "C"]
	Message string   `json:"message"`
}

// AnalyzeCycles reports every dependency cycle among derived sources
// without evaluating anything.
func (c *Collection) AnalyzeCycles() []CycleWarning {
	g := c.buildGraph()
	warnings := []CycleWarning{}
	for _, comp := range g.components() {
		if g.cyclic(comp) {
			warnings = append(warnings, g.cycleWarning(comp))
		}
	}
	return warnings
}

func (g *depGraph) cycleWarning(comp []string) CycleWarning {
	if len(comp) == 1 {
		id := comp[0]
		return CycleWarning{
			Members: []string{id},
			Path:    []string{id, id},
			Message: fmt.Sprintf("source %s depends on itself", id),
		}
	}
	path := g.cyclePath(comp)
	return CycleWarning{
		Members: slices.Clone(comp),
		Path:    path,
		Message: fmt.Sprintf("circular dependency: %s", strings.Join(path, " -> ")),
	}
}

// cyclePath returns a shortest cycle through the component's first member,
// found breadth-first over edges that stay inside the component.
func (g *depGraph) cyclePath(comp []string) []string {
	members := make(map[string]bool, len(comp))
	for _, id := range comp {
		members[id] = true
	}

	start := comp[0]
	parent := map[string]string{}
	queue := []string{start}
	seen := map[string]bool{start: true}

	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, w := range g.edges[u] {
			if !members[w] {
				continue
			}
			if w == start {
				path := []string{start}
				for n := u; n != start; n = parent[n] {
					path = append(path, n)
				}
				slices.Reverse(path[1:])
				return append(path, start)
			}
			if !seen[w] {
				seen[w] = true
				parent[w] = u
				queue = append(queue, w)
			}
		}
	}

	return slices.Clone(comp)
}
