// Package tree renders a dependency graph as an indented ASCII tree.
//
// Two modes are available: the expanded tree re-walks shared subtrees
// under every parent and marks cycle back-references, while the compact
// tree prints each package once and marks later occurrences. Both modes
// read the graph through its query operations only and leave it unchanged.
package tree

import (
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/depscope/pkg/depgraph"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	pipePad    = "│   "
	blankPad   = "    "

	cycleMark  = "[cycle]"
	repeatMark = "[shown above]"
)

// Render returns the expanded dependency tree of root. Shared subtrees
// are repeated under each dependent; a package that appears on its own
// ancestor path is printed once more with a cycle marker and not
// descended into.
func Render(g *depgraph.Graph, root string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", header(root))

	if !g.Contains(root) {
		b.WriteString("(no dependencies)\n")
		return b.String()
	}

	b.WriteString(root + "\n")
	writeChildren(&b, g, root, "", []string{root})
	return b.String()
}

// RenderCompact returns the compact dependency tree of root: each package
// is expanded only the first time it appears.
func RenderCompact(g *depgraph.Graph, root string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (compact)\n", header(root))

	if !g.Contains(root) {
		b.WriteString("(no dependencies)\n")
		return b.String()
	}

	b.WriteString(root + "\n")
	seen := map[string]bool{root: true}
	writeChildrenCompact(&b, g, root, "", seen)
	return b.String()
}

func header(root string) string {
	return fmt.Sprintf("Dependencies of %s\n%s\n", root, strings.Repeat("=", 60))
}

func writeChildren(b *strings.Builder, g *depgraph.Graph, pkg, prefix string, path []string) {
	deps := g.Direct(pkg)
	for i, dep := range deps {
		last := i == len(deps)-1
		connector := branchMid
		pad := pipePad
		if last {
			connector = branchLast
			pad = blankPad
		}

		if slices.Contains(path, dep) {
			fmt.Fprintf(b, "%s%s%s %s\n", prefix, connector, dep, cycleMark)
			continue
		}

		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, dep)
		writeChildren(b, g, dep, prefix+pad, append(slices.Clone(path), dep))
	}
}

func writeChildrenCompact(b *strings.Builder, g *depgraph.Graph, pkg, prefix string, seen map[string]bool) {
	deps := g.Direct(pkg)
	for i, dep := range deps {
		last := i == len(deps)-1
		connector := branchMid
		pad := pipePad
		if last {
			connector = branchLast
			pad = blankPad
		}

		if seen[dep] {
			fmt.Fprintf(b, "%s%s%s %s\n", prefix, connector, dep, repeatMark)
			continue
		}
		seen[dep] = true

		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, dep)
		writeChildrenCompact(b, g, dep, prefix+pad, seen)
	}
}
