package graph

import (
	"encoding/json"
	"slices"

	"github.com/tidwall/btree"
)

// InteractionGraph is a weighted undirected graph of contributors. Nodes are
// identities seen as an issue creator or event author; edges join a creator
// and a distinct event author. A graph value is never modified after Build
// returns it.
type InteractionGraph struct {
	nodes *btree.Set[string]
	edges *btree.BTreeG[Edge]
}

func newEdgeTree() *btree.BTreeG[Edge] {
	return btree.NewBTreeGOptions(edgeLess, btree.Options{NoLocks: true})
}

// Empty returns a graph with no nodes and no edges
func Empty() *InteractionGraph {
	return &InteractionGraph{
		nodes: new(btree.Set[string]),
		edges: newEdgeTree(),
	}
}

// Nodes returns every identity in ascending order
func (g *InteractionGraph) Nodes() []string {
	out := make([]string, 0, g.nodes.Len())
	g.nodes.Scan(func(id string) bool {
		out = append(out, id)
		return true
	})
	return out
}

// Edges returns every edge ordered by canonical pair
func (g *InteractionGraph) Edges() []Edge {
	return g.edges.Items()
}

// NodeCount returns the number of identities
func (g *InteractionGraph) NodeCount() int {
	return g.nodes.Len()
}

// EdgeCount returns the number of distinct pairs with at least one interaction
func (g *InteractionGraph) EdgeCount() int {
	return g.edges.Len()
}

// HasNode reports whether id is in the node set
func (g *InteractionGraph) HasNode(id string) bool {
	return g.nodes.Contains(id)
}

// Weight returns the weight of the edge between a and b in either order
func (g *InteractionGraph) Weight(a, b string) (int, bool) {
	e, ok := g.edges.Get(Edge{Pair: Canonical(a, b)})
	if !ok {
		return 0, false
	}
	return e.Weight, true
}

// Degree returns the number of edges incident to id
func (g *InteractionGraph) Degree(id string) int {
	n := 0
	g.edges.Scan(func(e Edge) bool {
		if e.Has(id) {
			n++
		}
		return true
	})
	return n
}

// Equal reports whether both graphs have the same node set and the same
// pair to weight mapping
func (g *InteractionGraph) Equal(other *InteractionGraph) bool {
	return slices.Equal(g.Nodes(), other.Nodes()) && slices.Equal(g.Edges(), other.Edges())
}

// MarshalJSON encodes the graph's structural form
func (g *InteractionGraph) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Nodes []string `json:"nodes"`
		Edges []Edge   `json:"edges"`
	}{
		Nodes: g.Nodes(),
		Edges: g.Edges(),
	})
}
