package depgraph

import (
	"maps"
	"slices"
	"strings"
)

// Graph holds the package adjacency relation: each known package maps to
// the set of packages it directly depends on. Every package that appears
// as a dependency also owns its own (possibly empty) entry, so the graph
// never contains dangling references.
//
// The zero value is not usable - use New. Graph is not safe for concurrent
// mutation; once built it is treated as immutable and reads may run
// concurrently.
type Graph struct {
	adj    map[string]map[string]struct{}
	filter string // lower-cased exclusion substring, empty means no filtering
	cycles [][]string
}

// New creates an empty graph. When filter is non-empty, any package whose
// name contains it (case-insensitively) is excluded from the graph
// entirely: it is never added as a key or a value, and its dependencies
// are never explored.
func New(filter string) *Graph {
	return &Graph{
		adj:    make(map[string]map[string]struct{}),
		filter: strings.ToLower(strings.TrimSpace(filter)),
	}
}

// Filtered reports whether name matches the active filter substring.
func (g *Graph) Filtered(name string) bool {
	if g.filter == "" {
		return false
	}
	return strings.Contains(strings.ToLower(name), g.filter)
}

// AddEdge records that pkg directly depends on dep, creating entries for
// both as needed. This is the single enforcement point for filtering: the
// call is a no-op when either name matches the filter, so no edge naming
// a filtered package ever enters the graph.
func (g *Graph) AddEdge(pkg, dep string) {
	if g.Filtered(pkg) || g.Filtered(dep) {
		return
	}
	g.ensure(pkg)[dep] = struct{}{}
	g.ensure(dep)
}

// ensure returns pkg's dependency set, creating an empty one if absent.
func (g *Graph) ensure(pkg string) map[string]struct{} {
	set, ok := g.adj[pkg]
	if !ok {
		set = make(map[string]struct{})
		g.adj[pkg] = set
	}
	return set
}

// Direct returns pkg's direct dependencies sorted lexicographically.
// Unknown packages yield an empty slice; Direct never errors.
func (g *Graph) Direct(pkg string) []string {
	return slices.Sorted(maps.Keys(g.adj[pkg]))
}

// Contains reports whether pkg has an entry in the graph, in either role.
func (g *Graph) Contains(pkg string) bool {
	_, ok := g.adj[pkg]
	return ok
}

// All returns every package that appears anywhere in the graph, as a
// dependent or as a dependency, sorted lexicographically.
func (g *Graph) All() []string {
	seen := make(map[string]struct{}, len(g.adj))
	for pkg, deps := range g.adj {
		seen[pkg] = struct{}{}
		for dep := range deps {
			seen[dep] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Len returns the number of packages in the graph.
func (g *Graph) Len() int { return len(g.adj) }

// EdgeCount returns the total number of dependency edges.
func (g *Graph) EdgeCount() int {
	n := 0
	for _, deps := range g.adj {
		n += len(deps)
	}
	return n
}

// Clear resets the adjacency relation and the recorded cycles so the
// instance can be reused for another build. The filter is retained.
func (g *Graph) Clear() {
	g.adj = make(map[string]map[string]struct{})
	g.cycles = nil
}
