package depgraph

import (
	"context"
	"maps"
	"slices"
)

// Source supplies direct dependencies for a package. Implementations fetch
// from a package registry, a fixture file, or any other provider of
// name→version-constraint pairs. The engine ignores the version
// constraints; only the dependency names enter the graph.
type Source interface {
	// Fetch returns pkg's direct dependencies as name→version-constraint
	// pairs. A failed fetch is not fatal to a build: the engine treats the
	// package as having no further discoverable dependencies.
	Fetch(ctx context.Context, pkg string) (map[string]string, error)
}

// SourceFunc adapts a function to the Source interface.
type SourceFunc func(ctx context.Context, pkg string) (map[string]string, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, pkg string) (map[string]string, error) {
	return f(ctx, pkg)
}

// BuildOptions configures a graph build.
type BuildOptions struct {
	// Warn is called when a fetch fails for a package. The failure is
	// swallowed either way; Warn only surfaces it for logging. Optional.
	Warn func(pkg string, err error)
}

// Build populates the graph by walking the dependency relation outward
// from root, fetching each package's direct dependencies from src at most
// once. Cycles encountered along a descent are recorded (see Cycles) and
// not re-expanded, so the walk always terminates. Fetch failures for
// individual packages never abort the build.
//
// The root package is entered into the graph even when nothing is known
// about its dependencies, unless it matches the filter. Build may be
// called again, on the same or another root, to ingest further packages;
// visited-state is scoped to a single call so builds never cross-contaminate.
func (g *Graph) Build(ctx context.Context, root string, src Source) {
	g.BuildWithOptions(ctx, root, src, BuildOptions{})
}

// BuildWithOptions is Build with explicit options.
func (g *Graph) BuildWithOptions(ctx context.Context, root string, src Source, opts BuildOptions) {
	if g.Filtered(root) {
		return
	}
	g.ensure(root)
	t := &traversal{graph: g, src: src, opts: opts, visited: make(map[string]struct{})}
	t.walk(ctx, root, nil)
}

// traversal carries the state of one Build call. The visited set memoizes
// full expansion (each package fetched at most once per build); the
// ancestor path passed through walk detects cycles on the current descent
// only.
type traversal struct {
	graph   *Graph
	src     Source
	opts    BuildOptions
	visited map[string]struct{}
}

// walk expands pkg, whose ancestors on the current descent are path.
// Each recursion receives its own copy of the path so sibling branches
// never see each other's entries as false cycle hits.
func (t *traversal) walk(ctx context.Context, pkg string, path []string) {
	g := t.graph
	if g.Filtered(pkg) {
		return
	}

	// The path check must precede the visited check: a package reachable
	// from itself is a cycle even when a prior branch already expanded it.
	if i := slices.Index(path, pkg); i >= 0 {
		cycle := append(slices.Clone(path[i:]), pkg)
		g.cycles = append(g.cycles, cycle)
		return
	}

	if _, ok := t.visited[pkg]; ok {
		return
	}
	t.visited[pkg] = struct{}{}

	deps, err := t.src.Fetch(ctx, pkg)
	if err != nil {
		// One unreachable package must not abort the whole build.
		if t.opts.Warn != nil {
			t.opts.Warn(pkg, err)
		}
		return
	}

	next := append(slices.Clone(path), pkg)
	for _, dep := range slices.Sorted(maps.Keys(deps)) {
		if g.Filtered(dep) {
			continue
		}
		g.AddEdge(pkg, dep)
		t.walk(ctx, dep, next)
	}
}
