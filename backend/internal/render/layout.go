package render

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/graph/layout"

	"issue-insights/backend/internal/graph"
	apperrors "issue-insights/backend/pkg/errors"
)

// Point is a node position in layout space
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Positions maps each node identity to its position
type Positions map[string]Point

// Layout assigns a position to every node of a graph
type Layout interface {
	Positions(g *graph.InteractionGraph) (Positions, error)
}

// EadesLayout is a force-directed layout. Edge weights pull nodes together,
// and the same Seed always yields the same positions for the same graph.
type EadesLayout struct {
	Iterations int
	Seed       uint64
}

// Positions runs the Eades optimizer over g
func (l EadesLayout) Positions(g *graph.InteractionGraph) (Positions, error) {
	pos := make(Positions, g.NodeCount())
	if g.NodeCount() == 0 {
		return pos, nil
	}

	view := graph.NewView(g)
	eades := layout.EadesR2{
		Updates:   l.Iterations,
		Repulsion: 1,
		Rate:      0.05,
		Theta:     0.2,
		Src:       rand.NewPCG(l.Seed, l.Seed),
	}
	optimizer := layout.NewOptimizerR2(view, eades.Update)
	for optimizer.Update() {
	}

	for _, name := range g.Nodes() {
		id, _ := view.ID(name)
		c := optimizer.Coord2(id)
		if !finite(c.X) || !finite(c.Y) {
			return nil, apperrors.NewRenderFailed("layout", fmt.Sprintf("node %q has no finite position", name), nil)
		}
		pos[name] = Point{X: c.X, Y: c.Y}
	}
	return pos, nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
