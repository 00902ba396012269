package analysis

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"go.uber.org/zap"

	"issue-insights/backend/internal/graph"
	"issue-insights/backend/internal/model"
	"issue-insights/backend/internal/render"
	"issue-insights/backend/internal/source"
	apperrors "issue-insights/backend/pkg/errors"
	"issue-insights/backend/pkg/logger"
)

// Feature numbers accepted by --feature
const (
	FeatureOverview  = 0
	FeatureTrend     = 1
	FeatureNetwork   = 2
	FeatureLifecycle = 3
)

// FeatureName returns the short name of a feature, or "" if unknown
func FeatureName(feature int) string {
	switch feature {
	case FeatureOverview:
		return "overview"
	case FeatureTrend:
		return "trend"
	case FeatureNetwork:
		return "network"
	case FeatureLifecycle:
		return "lifecycle"
	}
	return ""
}

// Input is the record set an analysis runs over
type Input struct {
	Dataset string
	Issues  []model.Issue
	Filter  source.Filter
}

// GraphStats describes the interaction graph built by the network analysis
type GraphStats struct {
	Nodes   int               `json:"nodes"`
	Edges   int               `json:"edges"`
	Build   graph.BuildReport `json:"build"`
	Summary graph.Summary     `json:"summary"`
}

// Report is the outcome of one analysis run
type Report struct {
	Feature  int             `json:"feature"`
	Name     string          `json:"name"`
	Title    string          `json:"title"`
	Dataset  string          `json:"dataset"`
	Lines    []string        `json:"lines"`
	Tables   []render.Table  `json:"tables"`
	Figures  []render.Figure `json:"figures"`
	Graph    *GraphStats     `json:"graph,omitempty"`
	Duration time.Duration   `json:"duration_ns"`
}

func newReport(feature int, title string, in Input) *Report {
	return &Report{
		Feature: feature,
		Name:    FeatureName(feature),
		Title:   title,
		Dataset: in.Dataset,
		Lines:   []string{},
		Tables:  []render.Table{},
		Figures: []render.Figure{},
	}
}

func (r *Report) line(text string) {
	r.Lines = append(r.Lines, text)
}

// WriteText prints the report for a terminal
func (r *Report) WriteText(w io.Writer) {
	term := render.NewTerminal(w)
	term.Title(r.Title)
	if r.Dataset != "" {
		term.Note("dataset: " + r.Dataset)
	}
	for _, l := range r.Lines {
		term.Line(l)
	}
	for _, t := range r.Tables {
		term.Table(t)
	}
}

// WriteJSON writes the report as indented JSON
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// Runner dispatches a feature number to its analysis
type Runner struct {
	layout render.Layout
	policy graph.MalformedPolicy
	logger *zap.Logger
}

// NewRunner creates a runner. layout positions the network figure and
// policy decides how the graph builder treats issues without a creator.
func NewRunner(layout render.Layout, policy graph.MalformedPolicy) *Runner {
	return &Runner{
		layout: layout,
		policy: policy,
		logger: logger.Named("analysis"),
	}
}

// WithLogger replaces the runner's logger, e.g. with one carrying a run ID
func (r *Runner) WithLogger(l *zap.Logger) *Runner {
	r.logger = l
	return r
}

// Run executes the analysis selected by feature
func (r *Runner) Run(ctx context.Context, feature int, in Input) (*Report, error) {
	r.logger.Info("Starting analysis",
		zap.Int("feature", feature),
		zap.String("name", FeatureName(feature)),
		zap.Int("issues", len(in.Issues)),
		zap.String("user", in.Filter.User),
		zap.String("label", in.Filter.Label),
	)
	start := time.Now()

	var (
		report *Report
		err    error
	)
	switch feature {
	case FeatureOverview:
		report, err = r.overview(ctx, in)
	case FeatureTrend:
		report, err = r.trend(ctx, in)
	case FeatureNetwork:
		report, err = r.network(ctx, in)
	case FeatureLifecycle:
		report, err = r.lifecycle(ctx, in)
	default:
		return nil, apperrors.NewUnknownFeature(feature)
	}
	if err != nil {
		r.logger.Error("Analysis failed", zap.Int("feature", feature), zap.Error(err))
		return nil, err
	}

	report.Duration = time.Since(start)
	r.logger.Info("Analysis finished",
		zap.Int("feature", feature),
		zap.Duration("duration", report.Duration),
		zap.Int("figures", len(report.Figures)),
	)
	return report, nil
}
