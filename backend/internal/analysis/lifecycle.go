package analysis

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"gonum.org/v1/gonum/stat"

	"issue-insights/backend/internal/model"
	"issue-insights/backend/internal/render"
)

const (
	lifecycleTopUsers    = 15
	lifecycleMinIssues   = 2
	lifecycleLongest     = 10
	lifecycleTitleLength = 60
)

type lifecycleRow struct {
	number   int
	title    string
	creator  string
	days     int
	comments int
}

// resolutionDays is the number of whole days between creation and the last
// update. ok is false when a date is missing or the update precedes creation.
func resolutionDays(issue model.Issue) (int, bool) {
	if issue.CreatedDate.IsZero() || issue.UpdatedDate.IsZero() {
		return 0, false
	}
	d := issue.UpdatedDate.Sub(issue.CreatedDate)
	if d < 0 {
		return 0, false
	}
	return int(d / (24 * time.Hour)), true
}

func (r *Runner) lifecycle(ctx context.Context, in Input) (*Report, error) {
	report := newReport(FeatureLifecycle, "Issue Lifecycle Analysis", in)

	closed := make([]model.Issue, 0, len(in.Issues))
	for _, issue := range in.Issues {
		if issue.IsClosed() {
			closed = append(closed, issue)
		}
	}
	if len(closed) == 0 {
		report.line("No closed issues found in the dataset.")
		return report, nil
	}

	closed = in.Filter.Apply(closed)
	if in.Filter.Label != "" {
		report.line(fmt.Sprintf("Analyzing %d closed issues with label %s", len(closed), in.Filter.Label))
	} else {
		report.line(fmt.Sprintf("Analyzing %d closed issues", len(closed)))
	}

	rows := make([]lifecycleRow, 0, len(closed))
	for _, issue := range closed {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		days, ok := resolutionDays(issue)
		if !ok {
			continue
		}
		rows = append(rows, lifecycleRow{
			number:   issue.Number,
			title:    issue.Title,
			creator:  issue.Creator,
			days:     days,
			comments: issue.CommentCount(),
		})
	}
	if len(rows) == 0 {
		report.line("No valid lifecycle data found to analyze.")
		return report, nil
	}

	days := make([]float64, len(rows))
	comments := make([]float64, len(rows))
	for i, row := range rows {
		days[i] = float64(row.days)
		comments[i] = float64(row.comments)
	}
	mean := stat.Mean(days, nil)
	med := median(days)
	fastest := slices.MinFunc(rows, func(a, b lifecycleRow) int { return cmp.Compare(a.days, b.days) })
	slowest := slices.MaxFunc(rows, func(a, b lifecycleRow) int { return cmp.Compare(a.days, b.days) })

	report.line("Issue Resolution Summary:")
	report.line(fmt.Sprintf("Average resolution time: %.2f days", mean))
	report.line(fmt.Sprintf("Median resolution time: %.2f days", med))
	report.line(fmt.Sprintf("Fastest resolution time: %d days", fastest.days))
	report.line(fmt.Sprintf("Slowest resolution time: %d days", slowest.days))

	fig, err := render.HistogramFigure("resolution",
		fmt.Sprintf("Distribution of Issue Resolution Times (median %.4f, mean %.4f days)", med, mean),
		"Resolution Time (days)", "Number of Issues", histogram(days, histogramBins))
	if err != nil {
		return nil, err
	}
	report.Figures = append(report.Figures, fig)

	if err := r.lifecycleUsers(report, rows); err != nil {
		return nil, err
	}
	if err := r.lifecycleComments(report, comments, days); err != nil {
		return nil, err
	}

	if len(rows) >= lifecycleLongest {
		longest := slices.Clone(rows)
		slices.SortStableFunc(longest, func(a, b lifecycleRow) int { return cmp.Compare(b.days, a.days) })
		table := render.Table{Title: "Top 10 longest-lived issues", Headers: []string{"Issue", "Days", "Title"}}
		for _, row := range longest[:lifecycleLongest] {
			table.Rows = append(table.Rows, []string{
				"#" + strconv.Itoa(row.number),
				strconv.Itoa(row.days),
				truncate(row.title, lifecycleTitleLength) + "...",
			})
		}
		report.Tables = append(report.Tables, table)
	}
	return report, nil
}

type userResolution struct {
	user  string
	mean  float64
	count int
}

func (r *Runner) lifecycleUsers(report *Report, rows []lifecycleRow) error {
	byUser := make(map[string][]float64)
	for _, row := range rows {
		byUser[row.creator] = append(byUser[row.creator], float64(row.days))
	}

	users := make([]userResolution, 0, len(byUser))
	for user, days := range byUser {
		if len(days) < lifecycleMinIssues {
			continue
		}
		users = append(users, userResolution{user: user, mean: stat.Mean(days, nil), count: len(days)})
	}
	slices.SortFunc(users, func(a, b userResolution) int {
		if c := cmp.Compare(a.mean, b.mean); c != 0 {
			return c
		}
		return cmp.Compare(a.user, b.user)
	})
	users = users[:min(lifecycleTopUsers, len(users))]

	title := "Top 15 Users by Average Resolution Time (with at least 2 issues)"
	table := render.Table{Title: title, Headers: []string{"User", "Average days", "Issues"}}
	names := make([]string, 0, len(users))
	means := make([]float64, 0, len(users))
	labels := make([]string, 0, len(users))
	for _, u := range users {
		table.Rows = append(table.Rows, []string{u.user, fmt.Sprintf("%.2f", u.mean), strconv.Itoa(u.count)})
		names = append(names, u.user)
		means = append(means, u.mean)
		labels = append(labels, fmt.Sprintf("%d issues", u.count))
	}
	report.Tables = append(report.Tables, table)

	if len(users) == 0 {
		return nil
	}
	fig, err := render.BarFigure("users", title, "Average Resolution Time (days)", "User", names, means, labels)
	if err != nil {
		return err
	}
	report.Figures = append(report.Figures, fig)
	return nil
}

func (r *Runner) lifecycleComments(report *Report, comments, days []float64) error {
	points := render.Series{Name: "Issues", X: comments, Y: days}

	alpha, beta, corr, ok := trend(comments, days)
	if !ok {
		report.line("Not enough variation in comment counts for a trend line.")
		fig, err := render.ScatterFigure("comments", "Correlation between Comments and Resolution Time",
			"Number of Comments", "Resolution Time (days)", points)
		if err != nil {
			return err
		}
		report.Figures = append(report.Figures, fig)
		return nil
	}

	report.line(fmt.Sprintf("Comments vs resolution trend slope: %.2f", beta))
	report.line(fmt.Sprintf("Correlation: %.2f", corr))

	lo, hi := slices.Min(comments), slices.Max(comments)
	line := render.Series{
		Name: fmt.Sprintf("Trend Line (slope=%.2f)", beta),
		X:    []float64{lo, hi},
		Y:    []float64{alpha + beta*lo, alpha + beta*hi},
	}
	fig, err := render.ScatterFigure("comments",
		fmt.Sprintf("Correlation between Comments and Resolution Time (correlation %.2f)", corr),
		"Number of Comments", "Resolution Time (days)", points, line)
	if err != nil {
		return err
	}
	report.Figures = append(report.Figures, fig)
	return nil
}
