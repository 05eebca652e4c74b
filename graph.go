package bootstrap

import (
	"fmt"
	"slices"
)

// DependencyGraph is a directed graph keyed by initializer name, where an
// edge A -> B means "A depends on B". The graph stays acyclic: inserting an
// edge that would close a cycle is rejected atomically and the full cycle
// is reported via CircularDependencyError.
//
// Edges may reference names that have not been added as nodes yet; such
// dangling references are caught when an order is computed.
type DependencyGraph struct {
	// nodes in registration order; the topological sort breaks ties by
	// this ordering so repeated calls are stable.
	order []string
	edges map[string][]string
}

// NewDependencyGraph creates an empty dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		edges: make(map[string][]string),
	}
}

// AddNode records a named node. Adding an existing node is a no-op.
func (g *DependencyGraph) AddNode(name string) {
	if _, exists := g.edges[name]; exists {
		return
	}
	g.order = append(g.order, name)
	g.edges[name] = nil
}

// HasNode reports whether the node has been added.
func (g *DependencyGraph) HasNode(name string) bool {
	_, exists := g.edges[name]
	return exists
}

// RemoveNode deletes a node and every edge that starts at it. Edges of
// other nodes pointing to it become dangling references.
func (g *DependencyGraph) RemoveNode(name string) {
	if !g.HasNode(name) {
		return
	}
	delete(g.edges, name)
	g.order = slices.DeleteFunc(g.order, func(n string) bool { return n == name })
}

// AddEdge inserts the dependency edge from -> to. If the edge would close a
// cycle it is not committed and a CircularDependencyError carrying the
// ordered cycle is returned. A duplicate edge is a no-op.
func (g *DependencyGraph) AddEdge(from, to string) error {
	if slices.Contains(g.edges[from], to) {
		return nil
	}
	// A path to -> ... -> from means from -> to would close a cycle.
	if path := g.findPath(to, from); path != nil {
		return &CircularDependencyError{Cycle: append([]string{from}, path...)}
	}
	g.AddNode(from)
	g.edges[from] = append(g.edges[from], to)
	return nil
}

// RemoveEdge deletes the edge from -> to if present.
func (g *DependencyGraph) RemoveEdge(from, to string) {
	g.edges[from] = slices.DeleteFunc(g.edges[from], func(n string) bool { return n == to })
}

// Dependencies returns the direct dependencies of name in insertion order.
func (g *DependencyGraph) Dependencies(name string) []string {
	deps := make([]string, len(g.edges[name]))
	copy(deps, g.edges[name])
	return deps
}

// TransitiveDependencies returns every name reachable from name, in
// depth-first discovery order, without name itself.
func (g *DependencyGraph) TransitiveDependencies(name string) []string {
	var result []string
	seen := map[string]bool{name: true}
	var walk func(string)
	walk = func(n string) {
		for _, dep := range g.edges[n] {
			if seen[dep] {
				continue
			}
			seen[dep] = true
			result = append(result, dep)
			walk(dep)
		}
	}
	walk(name)
	return result
}

// findPath returns the node path from start to goal, inclusive, or nil when
// goal is unreachable.
func (g *DependencyGraph) findPath(start, goal string) []string {
	if start == goal {
		return []string{start}
	}
	seen := map[string]bool{start: true}
	var walk func(n string, path []string) []string
	walk = func(n string, path []string) []string {
		for _, next := range g.edges[n] {
			if seen[next] {
				continue
			}
			seen[next] = true
			p := append(path, next)
			if next == goal {
				return p
			}
			if found := walk(next, p); found != nil {
				return found
			}
		}
		return nil
	}
	return walk(start, []string{start})
}

// TopologicalOrder computes a deterministic initialization order using
// Kahn's algorithm: nodes whose dependencies are all satisfied are emitted
// first, ties broken by registration order. For every edge A -> B the
// returned order places B before A. An edge to a name that was never added
// as a node yields ErrDependencyMissing.
func (g *DependencyGraph) TopologicalOrder() ([]string, error) {
	remaining := make(map[string]int, len(g.order))
	for _, name := range g.order {
		for _, dep := range g.edges[name] {
			if !g.HasNode(dep) {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrDependencyMissing, name, dep)
			}
		}
		remaining[name] = len(g.edges[name])
	}

	emitted := make(map[string]bool, len(g.order))
	result := make([]string, 0, len(g.order))
	for len(result) < len(g.order) {
		progressed := false
		for _, name := range g.order {
			if emitted[name] || remaining[name] != 0 {
				continue
			}
			emitted[name] = true
			result = append(result, name)
			progressed = true
			// Satisfy this dependency for every dependent.
			for _, other := range g.order {
				if emitted[other] {
					continue
				}
				for _, dep := range g.edges[other] {
					if dep == name {
						remaining[other]--
					}
				}
			}
		}
		if !progressed {
			// Unreachable while AddEdge rejects cycles; kept as a guard
			// against graphs mutated through RemoveNode.
			return nil, fmt.Errorf("%w: no progress over %d unordered node(s)",
				ErrCircularDependency, len(g.order)-len(result))
		}
	}
	return result, nil
}

// Len returns the number of nodes.
func (g *DependencyGraph) Len() int { return len(g.order) }

// Nodes returns the node names in registration order.
func (g *DependencyGraph) Nodes() []string {
	nodes := make([]string, len(g.order))
	copy(nodes, g.order)
	return nodes
}
