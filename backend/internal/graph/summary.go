package graph

import "fmt"

// NodeLabel is the annotation shown for a node
func NodeLabel(id string, degree int) string {
	return fmt.Sprintf("%s - %d connection(s)", id, degree)
}

// EdgeLabel is the annotation shown for an edge
func EdgeLabel(p Pair, weight int) string {
	return fmt.Sprintf("%s and %s: %d interaction(s)", p.A, p.B, weight)
}

// Project derives the node and edge annotations of g. It reads g only, so
// calling it again on the same graph yields the same Summary.
func Project(g *InteractionGraph) Summary {
	edges := g.Edges()

	degrees := make(map[string]int, g.NodeCount())
	for _, e := range edges {
		degrees[e.A]++
		degrees[e.B]++
	}

	s := Summary{
		Nodes: make([]NodeSummary, 0, g.NodeCount()),
		Edges: make([]EdgeSummary, 0, len(edges)),
	}
	for _, id := range g.Nodes() {
		d := degrees[id]
		s.Nodes = append(s.Nodes, NodeSummary{ID: id, Degree: d, Label: NodeLabel(id, d)})
	}
	for _, e := range edges {
		s.Edges = append(s.Edges, EdgeSummary{Pair: e.Pair, Weight: e.Weight, Label: EdgeLabel(e.Pair, e.Weight)})
	}
	return s
}
