package analysis

import (
	"context"
	"fmt"
	"strconv"

	"issue-insights/backend/internal/render"
)

func (r *Runner) trend(ctx context.Context, in Input) (*Report, error) {
	report := newReport(FeatureTrend, "Number of Issues Created by Year", in)
	issues := in.Filter.Apply(in.Issues)

	years := make([]float64, 0, len(issues))
	perYear := make(map[int]int)
	for _, issue := range issues {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if issue.CreatedDate.IsZero() {
			continue
		}
		years = append(years, fractionalYear(issue.CreatedDate))
		perYear[issue.CreatedDate.UTC().Year()]++
	}

	missing := len(issues) - len(years)
	report.line(fmt.Sprintf("Issues with a created date: %d", len(years)))
	if missing > 0 {
		report.line(fmt.Sprintf("Issues without a created date (ignored): %d", missing))
	}
	if len(years) == 0 {
		return report, nil
	}

	first, last := years[0], years[0]
	for _, y := range years {
		first = min(first, y)
		last = max(last, y)
	}
	table := render.Table{Title: "Issues per year", Headers: []string{"Year", "Issues"}}
	for y := int(first); y <= int(last); y++ {
		table.Rows = append(table.Rows, []string{strconv.Itoa(y), strconv.Itoa(perYear[y])})
	}
	report.Tables = append(report.Tables, table)

	fig, err := render.HistogramFigure("trend", report.Title, "Year", "# of issues", histogram(years, histogramBins))
	if err != nil {
		return nil, err
	}
	report.Figures = append(report.Figures, fig)
	return report, nil
}
