package graph

import (
	"cmp"
	"slices"

	gonum "gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/iterator"
	"gonum.org/v1/gonum/graph/simple"
)

// View exposes an InteractionGraph as a gonum weighted undirected graph for
// layout algorithms. Node IDs are positions in the sorted node list, and
// Nodes iterates in that order so seeded algorithms are reproducible.
type View struct {
	*simple.WeightedUndirectedGraph
	names []string
	ids   map[string]int64
	order []gonum.Node
}

// NewView builds the gonum view of g
func NewView(g *InteractionGraph) *View {
	names := g.Nodes()
	v := &View{
		WeightedUndirectedGraph: simple.NewWeightedUndirectedGraph(0, 0),
		names:                   names,
		ids:                     make(map[string]int64, len(names)),
		order:                   make([]gonum.Node, 0, len(names)),
	}
	for i, name := range names {
		n := simple.Node(int64(i))
		v.ids[name] = n.ID()
		v.order = append(v.order, n)
		v.AddNode(n)
	}
	for _, e := range g.Edges() {
		from := v.Node(v.ids[e.A])
		to := v.Node(v.ids[e.B])
		v.SetWeightedEdge(v.NewWeightedEdge(from, to, float64(e.Weight)))
	}
	return v
}

// Nodes returns the nodes in identity order
func (v *View) Nodes() gonum.Nodes {
	if len(v.order) == 0 {
		return gonum.Empty
	}
	return iterator.NewOrderedNodes(v.order)
}

// From returns the neighbours of id in identity order
func (v *View) From(id int64) gonum.Nodes {
	neighbours := gonum.NodesOf(v.WeightedUndirectedGraph.From(id))
	if len(neighbours) == 0 {
		return gonum.Empty
	}
	slices.SortFunc(neighbours, func(a, b gonum.Node) int { return cmp.Compare(a.ID(), b.ID()) })
	return iterator.NewOrderedNodes(neighbours)
}

// ID returns the gonum node ID of an identity
func (v *View) ID(name string) (int64, bool) {
	id, ok := v.ids[name]
	return id, ok
}

// Name returns the identity behind a gonum node ID
func (v *View) Name(id int64) string {
	if id < 0 || id >= int64(len(v.names)) {
		return ""
	}
	return v.names[id]
}
