// Package dot renders a dependency graph as a Graphviz node-link diagram.
//
// ToDOT produces deterministic DOT text (nodes and edges sorted), with the
// root package highlighted and cycle edges restyled dashed red. RenderSVG
// turns the DOT text into an SVG using the embedded Graphviz engine, so no
// external binary is required.
package dot

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/depscope/pkg/depgraph"
)

// ToDOT converts a dependency graph to Graphviz DOT format. The root
// package is drawn with a highlighted fill, its outgoing edges are
// emphasized, and every edge that participates in a recorded cycle is
// drawn dashed in red.
func ToDOT(g *depgraph.Graph, root string) string {
	var buf bytes.Buffer
	buf.WriteString("digraph dependencies {\n")
	buf.WriteString("  rankdir=TB;\n")
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, margin=\"0.2,0.1\"];\n")
	buf.WriteString("\n")

	for _, pkg := range g.All() {
		if pkg == root {
			fmt.Fprintf(&buf, "  %q [fillcolor=\"#e1f5ff\", color=\"#01579b\", penwidth=3];\n", pkg)
			continue
		}
		fmt.Fprintf(&buf, "  %q;\n", pkg)
	}

	buf.WriteString("\n")
	cyclic := cycleEdges(g)
	for _, pkg := range g.All() {
		for _, dep := range g.Direct(pkg) {
			switch {
			case cyclic[[2]string{pkg, dep}]:
				fmt.Fprintf(&buf, "  %q -> %q [color=\"#d32f2f\", style=dashed, penwidth=2];\n", pkg, dep)
			case pkg == root:
				fmt.Fprintf(&buf, "  %q -> %q [color=\"#0277bd\", penwidth=2];\n", pkg, dep)
			default:
				fmt.Fprintf(&buf, "  %q -> %q;\n", pkg, dep)
			}
		}
	}

	buf.WriteString("}\n")
	return buf.String()
}

// cycleEdges returns the set of edges covered by recorded cycles.
func cycleEdges(g *depgraph.Graph) map[[2]string]bool {
	edges := make(map[[2]string]bool)
	for _, cycle := range g.Cycles() {
		for i := 0; i+1 < len(cycle); i++ {
			edges[[2]string{cycle[i], cycle[i+1]}] = true
		}
	}
	return edges
}

// RenderSVG renders DOT text to SVG using Graphviz.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	parsed, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer parsed.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, parsed, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
