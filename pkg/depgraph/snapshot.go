package depgraph

import (
	"github.com/google/uuid"
)

// Snapshot is the canonical serialization of a finished graph. Nodes and
// edges are sorted for deterministic output, so identical graphs always
// marshal to identical bytes (modulo the analysis ID).
type Snapshot struct {
	// ID uniquely identifies this analysis run.
	ID string `json:"id"`
	// Root is the package the graph was built from.
	Root   string     `json:"root"`
	Nodes  []string   `json:"nodes"`
	Edges  []Edge     `json:"edges"`
	Cycles [][]string `json:"cycles,omitempty"`
}

// Edge is a directed dependency edge in a snapshot.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Export converts the graph into a Snapshot with a fresh analysis ID.
func (g *Graph) Export(root string) Snapshot {
	nodes := g.All()

	edges := make([]Edge, 0, g.EdgeCount())
	for _, pkg := range nodes {
		for _, dep := range g.Direct(pkg) {
			edges = append(edges, Edge{From: pkg, To: dep})
		}
	}

	return Snapshot{
		ID:     uuid.NewString(),
		Root:   root,
		Nodes:  nodes,
		Edges:  edges,
		Cycles: g.Cycles(),
	}
}
