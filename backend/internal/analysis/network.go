package analysis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"

	"go.uber.org/zap"

	"issue-insights/backend/internal/graph"
	"issue-insights/backend/internal/render"
)

const networkTop = 10

func (r *Runner) network(ctx context.Context, in Input) (*Report, error) {
	report := newReport(FeatureNetwork, "Interactive Network", in)
	issues := in.Filter.Apply(in.Issues)

	g, build, err := graph.Build(issues,
		graph.WithMalformedPolicy(r.policy),
		graph.WithLogger(r.logger),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build interaction graph: %w", err)
	}
	summary := graph.Project(g)
	report.Graph = &GraphStats{
		Nodes:   g.NodeCount(),
		Edges:   g.EdgeCount(),
		Build:   build,
		Summary: summary,
	}

	report.line(fmt.Sprintf("Issues used: %d (skipped without creator: %d)", build.Issues, build.Skipped))
	report.line(fmt.Sprintf("Nodes: %d, Edges: %d", g.NodeCount(), g.EdgeCount()))
	report.line(fmt.Sprintf("Interactions: %d (self: %d, without author: %d)",
		build.Interactions, build.SelfInteractions, build.AnonymousEvents))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pos, err := r.layout.Positions(g)
	if err != nil {
		return nil, err
	}
	fig, err := render.NetworkFigure(g, summary, pos)
	if err != nil {
		return nil, err
	}
	report.Figures = append(report.Figures, fig)

	nodes := slices.Clone(summary.Nodes)
	slices.SortStableFunc(nodes, func(a, b graph.NodeSummary) int { return cmp.Compare(b.Degree, a.Degree) })
	nodeTable := render.Table{Title: "Most connected users", Headers: []string{"User", "Connections"}}
	for _, n := range nodes[:min(networkTop, len(nodes))] {
		nodeTable.Rows = append(nodeTable.Rows, []string{n.ID, strconv.Itoa(n.Degree)})
	}

	edges := slices.Clone(summary.Edges)
	slices.SortStableFunc(edges, func(a, b graph.EdgeSummary) int { return cmp.Compare(b.Weight, a.Weight) })
	edgeTable := render.Table{Title: "Strongest interactions", Headers: []string{"Users", "Interactions"}}
	for _, e := range edges[:min(networkTop, len(edges))] {
		edgeTable.Rows = append(edgeTable.Rows, []string{e.A + " and " + e.B, strconv.Itoa(e.Weight)})
	}
	report.Tables = append(report.Tables, nodeTable, edgeTable)

	r.logger.Debug("Network figure ready",
		zap.Int("nodes", len(summary.Nodes)),
		zap.Int("edges", len(summary.Edges)),
	)
	return report, nil
}
