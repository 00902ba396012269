package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-insights/backend/internal/graph"
	"issue-insights/backend/internal/model"
	"issue-insights/backend/internal/render"
	"issue-insights/backend/internal/source"
	apperrors "issue-insights/backend/pkg/errors"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
}

func commented(author string) model.Event {
	comment := "+1"
	return model.Event{EventType: "commented", Author: author, Comment: &comment}
}

func newTestRunner(policy graph.MalformedPolicy) *Runner {
	return NewRunner(render.EadesLayout{Iterations: 10, Seed: 1}, policy)
}

func sampleIssues() []model.Issue {
	return []model.Issue{
		{
			Number: 1, Creator: "alice", State: model.StateClosed, Labels: []string{"bug"},
			CreatedDate: day(2020, time.March, 1), UpdatedDate: day(2020, time.March, 11),
			Events: []model.Event{commented("bob"), commented("bob"), commented("alice"), {EventType: "labeled"}},
		},
		{
			Number: 2, Creator: "bob", State: model.StateOpen, Labels: []string{"feature"},
			CreatedDate: day(2021, time.June, 1),
			Events:      []model.Event{commented("alice")},
		},
		{
			Number: 3, Creator: "carol", State: model.StateClosed, Labels: []string{"bug", "docs"},
			CreatedDate: day(2022, time.January, 5), UpdatedDate: day(2022, time.January, 6),
		},
	}
}

func TestRun_UnknownFeature(t *testing.T) {
	_, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), 9, Input{})
	require.Error(t, err)

	var unknown *apperrors.ErrUnknownFeature
	require.ErrorAs(t, err, &unknown)
	assert.Contains(t, err.Error(), "--feature")
}

func TestFeatureName(t *testing.T) {
	assert.Equal(t, "overview", FeatureName(FeatureOverview))
	assert.Equal(t, "network", FeatureName(FeatureNetwork))
	assert.Equal(t, "", FeatureName(-1))
}

func TestRun_Overview(t *testing.T) {
	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureOverview,
		Input{Dataset: "poetry.json", Issues: sampleIssues()})
	require.NoError(t, err)

	assert.Equal(t, "overview", report.Name)
	assert.Contains(t, report.Lines, "Issues: 3")
	assert.Contains(t, report.Lines, "Open: 1, Closed: 2")
	assert.Contains(t, report.Lines, "Events: 5 (4 with a comment)")
	require.Len(t, report.Tables, 2)
	assert.Equal(t, [][]string{{"alice", "1"}, {"bob", "1"}, {"carol", "1"}}, report.Tables[0].Rows)
	assert.Equal(t, []string{"bug", "2"}, report.Tables[1].Rows[0])
	require.Len(t, report.Figures, 1)
}

func TestRun_OverviewScopedToUser(t *testing.T) {
	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureOverview,
		Input{Issues: sampleIssues(), Filter: source.Filter{User: "alice"}})
	require.NoError(t, err)

	assert.Contains(t, report.Lines, "Issues involving user alice")
	assert.Contains(t, report.Lines, "Issues: 2")
}

func TestRun_Trend(t *testing.T) {
	issues := append(sampleIssues(), model.Issue{Number: 4, Creator: "dave"})

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureTrend, Input{Issues: issues})
	require.NoError(t, err)

	assert.Contains(t, report.Lines, "Issues with a created date: 3")
	assert.Contains(t, report.Lines, "Issues without a created date (ignored): 1")
	require.Len(t, report.Tables, 1)
	assert.Equal(t, [][]string{{"2020", "1"}, {"2021", "1"}, {"2022", "1"}}, report.Tables[0].Rows)

	require.Len(t, report.Figures, 1)
	bars := report.Figures[0].Data[0]
	assert.Len(t, bars.Y, histogramBins)
	total := 0.0
	for _, v := range bars.Y {
		total += v.(float64)
	}
	assert.Equal(t, 3.0, total)
}

func TestRun_TrendWithoutDates(t *testing.T) {
	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureTrend,
		Input{Issues: []model.Issue{{Creator: "alice"}}})
	require.NoError(t, err)
	assert.Empty(t, report.Figures)
	assert.Contains(t, report.Lines, "Issues with a created date: 0")
}

func TestRun_Network(t *testing.T) {
	issues := []model.Issue{
		{Creator: "alice", Events: []model.Event{commented("bob"), commented("bob"), commented("alice"), {EventType: "closed"}}},
		{Creator: "bob", Events: []model.Event{commented("alice")}},
	}

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureNetwork, Input{Issues: issues})
	require.NoError(t, err)

	require.NotNil(t, report.Graph)
	assert.Equal(t, 2, report.Graph.Nodes)
	assert.Equal(t, 1, report.Graph.Edges)
	assert.Equal(t, 3, report.Graph.Build.Interactions)
	assert.Equal(t, "alice and bob: 3 interaction(s)", report.Graph.Summary.Edges[0].Label)

	require.Len(t, report.Figures, 1)
	assert.Len(t, report.Figures[0].Data, 3)
	assert.Equal(t, [][]string{{"alice and bob", "3"}}, report.Tables[1].Rows)
}

func TestRun_NetworkFromDecodedDataset(t *testing.T) {
	input := `[
		{"creator": "alice", "events": [
			{"event_type": "commented", "author": "bob", "comment": "+1"},
			{"event_type": "commented", "author": "bob", "comment": null},
			{"event_type": "commented", "author": "alice", "comment": "thanks"},
			{"event_type": "labeled", "author": null, "comment": null}
		]},
		{"creator": "bob", "events": [{"event_type": "commented", "author": "alice", "comment": "ok"}]},
		{"creator": "x", "events": []},
		{"creator": null, "events": [{"event_type": "commented", "author": "carol", "comment": "?"}]}
	]`
	ds, err := source.NewLoader().Decode(context.Background(), "issues.json", strings.NewReader(input))
	require.NoError(t, err)

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureNetwork, Input{Issues: ds.Issues})
	require.NoError(t, err)

	assert.Equal(t, []graph.NodeSummary{
		{ID: "alice", Degree: 1, Label: "alice - 1 connection(s)"},
		{ID: "bob", Degree: 1, Label: "bob - 1 connection(s)"},
		{ID: "x", Degree: 0, Label: "x - 0 connection(s)"},
	}, report.Graph.Summary.Nodes)
	require.Len(t, report.Graph.Summary.Edges, 1)
	assert.Equal(t, 3, report.Graph.Summary.Edges[0].Weight)
	assert.Equal(t, 1, report.Graph.Build.Skipped)

	require.Len(t, report.Figures, 1)
	data, err := json.Marshal(report.Figures[0])
	require.NoError(t, err)
	assert.Contains(t, string(data), `"layout":{"title":"Interactive Network"`)
}

func TestRun_NetworkFilteredByLabel(t *testing.T) {
	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureNetwork,
		Input{Issues: sampleIssues(), Filter: source.Filter{Label: "feature"}})
	require.NoError(t, err)

	assert.Equal(t, []graph.NodeSummary{
		{ID: "alice", Degree: 1, Label: "alice - 1 connection(s)"},
		{ID: "bob", Degree: 1, Label: "bob - 1 connection(s)"},
	}, report.Graph.Summary.Nodes)
}

func TestRun_NetworkStrict(t *testing.T) {
	issues := []model.Issue{{Creator: "alice"}, {Creator: ""}}

	_, err := newTestRunner(graph.FailOnMalformed).Run(context.Background(), FeatureNetwork, Input{Issues: issues})
	require.Error(t, err)
	assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeRecord))

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureNetwork, Input{Issues: issues})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Graph.Build.Skipped)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, feature := range []int{FeatureOverview, FeatureTrend, FeatureNetwork, FeatureLifecycle} {
		_, err := newTestRunner(graph.SkipMalformed).Run(ctx, feature, Input{Issues: sampleIssues()})
		assert.ErrorIs(t, err, context.Canceled, FeatureName(feature))
	}
}

func TestRun_LifecycleNoClosedIssues(t *testing.T) {
	issues := []model.Issue{{Creator: "alice", State: model.StateOpen}}

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureLifecycle, Input{Issues: issues})
	require.NoError(t, err)
	assert.Equal(t, []string{"No closed issues found in the dataset."}, report.Lines)
	assert.Empty(t, report.Figures)
}

func TestRun_LifecycleNoValidRows(t *testing.T) {
	issues := []model.Issue{
		{Creator: "alice", State: model.StateClosed, CreatedDate: day(2021, time.May, 2), UpdatedDate: day(2021, time.May, 1)},
		{Creator: "bob", State: model.StateClosed, CreatedDate: day(2021, time.May, 2)},
	}

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureLifecycle, Input{Issues: issues})
	require.NoError(t, err)
	assert.Equal(t, []string{"Analyzing 2 closed issues", "No valid lifecycle data found to analyze."}, report.Lines)
}

func TestRun_Lifecycle(t *testing.T) {
	var issues []model.Issue
	for i := 0; i < 12; i++ {
		creator := []string{"alice", "bob", "carol"}[i%3]
		events := make([]model.Event, i%4)
		for j := range events {
			events[j] = commented("dave")
		}
		issues = append(issues, model.Issue{
			Number:      i + 1,
			Creator:     creator,
			State:       model.StateClosed,
			Labels:      []string{"bug"},
			Title:       fmt.Sprintf("issue %d %s", i+1, strings.Repeat("x", 70)),
			CreatedDate: day(2021, time.January, 1),
			UpdatedDate: day(2021, time.January, 1).Add(time.Duration(i) * 24 * time.Hour).Add(3 * time.Hour),
			Events:      events,
		})
	}
	issues = append(issues, model.Issue{Creator: "erin", State: model.StateOpen})

	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureLifecycle,
		Input{Issues: issues, Filter: source.Filter{Label: "bug"}})
	require.NoError(t, err)

	assert.Equal(t, "Analyzing 12 closed issues with label bug", report.Lines[0])
	assert.Contains(t, report.Lines, "Average resolution time: 5.50 days")
	assert.Contains(t, report.Lines, "Median resolution time: 5.50 days")
	assert.Contains(t, report.Lines, "Fastest resolution time: 0 days")
	assert.Contains(t, report.Lines, "Slowest resolution time: 11 days")

	require.Len(t, report.Tables, 2)
	users := report.Tables[0]
	assert.Equal(t, []string{"alice", "4.50", "4"}, users.Rows[0])
	assert.Equal(t, []string{"carol", "6.50", "4"}, users.Rows[2])

	longest := report.Tables[1]
	require.Len(t, longest.Rows, 10)
	assert.Equal(t, "#12", longest.Rows[0][0])
	assert.Equal(t, "11", longest.Rows[0][1])
	assert.Equal(t, 63, len([]rune(longest.Rows[0][2])))

	require.Len(t, report.Figures, 3)
	assert.Equal(t, "resolution", report.Figures[0].Name)
	assert.Equal(t, "users", report.Figures[1].Name)
	assert.Equal(t, "comments", report.Figures[2].Name)
	assert.Len(t, report.Figures[2].Data, 2)
}

func TestRun_LifecycleFewRowsHasNoLongestTable(t *testing.T) {
	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureLifecycle,
		Input{Issues: sampleIssues()})
	require.NoError(t, err)

	assert.Contains(t, report.Lines, "Analyzing 2 closed issues")
	assert.Contains(t, report.Lines, "Median resolution time: 5.50 days")
	require.Len(t, report.Tables, 1)
	assert.Empty(t, report.Tables[0].Rows)
}

func TestResolutionDays(t *testing.T) {
	tests := []struct {
		name   string
		issue  model.Issue
		want   int
		wantOK bool
	}{
		{name: "whole days", issue: model.Issue{CreatedDate: day(2021, 1, 1), UpdatedDate: day(2021, 1, 4)}, want: 3, wantOK: true},
		{name: "partial day floors", issue: model.Issue{CreatedDate: day(2021, 1, 1), UpdatedDate: day(2021, 1, 1).Add(23 * time.Hour)}, want: 0, wantOK: true},
		{name: "negative", issue: model.Issue{CreatedDate: day(2021, 1, 2), UpdatedDate: day(2021, 1, 1)}},
		{name: "missing update", issue: model.Issue{CreatedDate: day(2021, 1, 2)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := resolutionDays(tt.issue)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReportOutput(t *testing.T) {
	report, err := newTestRunner(graph.SkipMalformed).Run(context.Background(), FeatureNetwork,
		Input{Dataset: "poetry.json", Issues: sampleIssues()})
	require.NoError(t, err)

	var text bytes.Buffer
	report.WriteText(&text)
	assert.Contains(t, text.String(), "Interactive Network")
	assert.Contains(t, text.String(), "poetry.json")
	assert.Contains(t, text.String(), "Most connected users")

	var js bytes.Buffer
	require.NoError(t, report.WriteJSON(&js))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(js.Bytes(), &decoded))
	assert.Equal(t, "network", decoded["name"])
	assert.Contains(t, decoded, "figures")
	assert.Contains(t, decoded, "graph")
}
