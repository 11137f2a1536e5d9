// Package depgraph implements the dependency graph engine.
//
// A [Graph] maps package names to the set of packages they directly depend
// on. It is populated once by [Graph.Build], which walks the dependency
// relation depth-first starting from a root package, fetching direct
// dependencies from a [Source]. The walk detects dependency cycles and
// applies an optional case-insensitive name filter. After the build the
// graph is read-only and answers direct, transitive, and reverse dependency
// queries as well as cycle listings.
//
// The engine is deliberately synchronous and single-threaded: registry
// calls are cheap to mock in tests and rate-limited in production, so the
// traversal fetches one package at a time. A finished graph is safe for
// concurrent reads.
//
//	g := depgraph.New("")
//	g.Build(ctx, "react", source)
//	for _, dep := range g.Transitive("react") {
//	    fmt.Println(dep)
//	}
package depgraph
