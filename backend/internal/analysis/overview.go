package analysis

import (
	"context"
	"fmt"
	"strconv"

	"issue-insights/backend/internal/render"
)

const overviewTop = 10

func (r *Runner) overview(ctx context.Context, in Input) (*Report, error) {
	report := newReport(FeatureOverview, "Dataset Overview", in)
	issues := in.Filter.Apply(in.Issues)
	if in.Filter.User != "" {
		report.line(fmt.Sprintf("Issues involving user %s", in.Filter.User))
	}
	if in.Filter.Label != "" {
		report.line(fmt.Sprintf("Issues with label %s", in.Filter.Label))
	}

	var open, closed, events, comments int
	creators := make(map[string]int)
	labels := make(map[string]int)
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if issue.IsClosed() {
			closed++
		} else {
			open++
		}
		events += len(issue.Events)
		comments += issue.CommentCount()
		if issue.Creator != "" {
			creators[issue.Creator]++
		}
		for _, l := range issue.Labels {
			labels[l]++
		}
	}

	report.line(fmt.Sprintf("Issues: %d", len(issues)))
	report.line(fmt.Sprintf("Open: %d, Closed: %d", open, closed))
	report.line(fmt.Sprintf("Events: %d (%d with a comment)", events, comments))
	report.line(fmt.Sprintf("Distinct creators: %d", len(creators)))

	topCreators := topCounts(creators, overviewTop)
	creatorTable := render.Table{Title: "Top creators", Headers: []string{"Creator", "Issues"}}
	names := make([]string, 0, len(topCreators))
	values := make([]float64, 0, len(topCreators))
	for _, c := range topCreators {
		creatorTable.Rows = append(creatorTable.Rows, []string{c.key, strconv.Itoa(c.n)})
		names = append(names, c.key)
		values = append(values, float64(c.n))
	}

	labelTable := render.Table{Title: "Top labels", Headers: []string{"Label", "Issues"}}
	for _, c := range topCounts(labels, overviewTop) {
		labelTable.Rows = append(labelTable.Rows, []string{c.key, strconv.Itoa(c.n)})
	}
	report.Tables = append(report.Tables, creatorTable, labelTable)

	if len(names) > 0 {
		fig, err := render.BarFigure("creators", "Top Issue Creators", "Issues", "Creator", names, values, nil)
		if err != nil {
			return nil, err
		}
		report.Figures = append(report.Figures, fig)
	}
	return report, nil
}
