package depgraph

import (
	"maps"
	"slices"
)

// Transitive returns every package reachable from pkg via one or more
// dependency edges, sorted lexicographically. The walk uses its own
// visited set over the finished graph, so repeated calls are idempotent
// and free of side effects. Absent packages yield an empty slice.
func (g *Graph) Transitive(pkg string) []string {
	if _, ok := g.adj[pkg]; !ok {
		return nil
	}

	reachable := make(map[string]struct{})
	seen := make(map[string]struct{})
	stack := []string{pkg}

	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if _, ok := seen[cur]; ok {
			continue
		}
		seen[cur] = struct{}{}

		for dep := range g.adj[cur] {
			reachable[dep] = struct{}{}
			stack = append(stack, dep)
		}
	}
	return slices.Sorted(maps.Keys(reachable))
}

// Dependents returns the packages that name pkg in their direct dependency
// set, sorted lexicographically. The scan covers every graph entry, so the
// result is only complete once the caller has ingested every package of
// interest (typically via repeated Build calls).
func (g *Graph) Dependents(pkg string) []string {
	var out []string
	for candidate, deps := range g.adj {
		if _, ok := deps[pkg]; ok {
			out = append(out, candidate)
		}
	}
	slices.Sort(out)
	return out
}

// HasCycles reports whether any dependency cycle was recorded during a
// build. Cycles are never recomputed at query time.
func (g *Graph) HasCycles() bool { return len(g.cycles) > 0 }

// Cycles returns the recorded cycles in discovery order. Each cycle is a
// package path that ends with a repeated occurrence of its first element,
// e.g. [a b c a]. Duplicate cycles discovered through different branches
// are kept as-is. The returned slices are copies and safe to retain.
func (g *Graph) Cycles() [][]string {
	out := make([][]string, len(g.cycles))
	for i, c := range g.cycles {
		out[i] = slices.Clone(c)
	}
	return out
}
