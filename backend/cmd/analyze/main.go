package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"issue-insights/backend/internal/analysis"
	"issue-insights/backend/internal/graph"
	"issue-insights/backend/internal/metrics"
	"issue-insights/backend/internal/render"
	"issue-insights/backend/internal/source"
	"issue-insights/backend/internal/viewer"
	"issue-insights/backend/pkg/config"
	apperrors "issue-insights/backend/pkg/errors"
	"issue-insights/backend/pkg/logger"
)

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var (
		feature int
		dataset int
		flags   config.Flags
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run an analysis over a GitHub issue dataset",
		Long: `Runs one analysis over a local dataset of scraped GitHub issues.

Features:
  0  overview   counts, top creators and labels
  1  trend      issues created over time
  2  network    creator/commenter interaction graph
  3  lifecycle  resolution times of closed issues

Examples:
  analyze -f 2
  analyze -f 3 --label bug
  analyze -f 2 -u octocat --serve
  analyze -f 1 -d 1 --format json --out trend.json`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("dataset") {
				flags.Dataset = &dataset
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return run(ctx, out, feature, flags)
		},
	}

	cmd.Flags().IntVarP(&feature, "feature", "f", -1, "Which feature to run (0-3)")
	cmd.Flags().StringVarP(&flags.User, "user", "u", "", "Only use issues the user created or took part in")
	cmd.Flags().StringVarP(&flags.Label, "label", "l", "", "Only use issues carrying the label")
	cmd.Flags().IntVarP(&dataset, "dataset", "d", 0, "Which configured dataset to use")
	cmd.Flags().StringVar(&flags.Format, "format", "", "Output format: text or json")
	cmd.Flags().StringVar(&flags.OutputFile, "out", "", "Also write the report to a file (.html for a page, otherwise JSON)")
	cmd.Flags().StringVar(&flags.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format")
	cmd.Flags().BoolVar(&flags.Serve, "serve", false, "Show the figures in a local browser viewer until interrupted")
	cmd.Flags().BoolVar(&flags.Strict, "strict", false, "Fail on issues without a creator instead of skipping them")
	_ = cmd.MarkFlagRequired("feature")

	return cmd
}

func run(ctx context.Context, out io.Writer, feature int, flags config.Flags) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.OverwriteFromFlags(flags); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	if err := logger.Init(cfg.Env); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()
	if cfg.LogLevel != "" {
		if err := logger.SetLevel(cfg.LogLevel); err != nil {
			return apperrors.NewConfigValidationFailed("LOG_LEVEL", err.Error())
		}
	}
	log := logger.Get().With(zap.String("run_id", uuid.NewString()))

	if analysis.FeatureName(feature) == "" {
		return apperrors.NewUnknownFeature(feature)
	}

	path, err := cfg.DatasetPath()
	if err != nil {
		return err
	}
	ds, err := source.NewLoader().Load(ctx, path)
	if err != nil {
		return err
	}
	log.Info("Dataset loaded",
		zap.String("path", path),
		zap.Int("issues", len(ds.Issues)),
		zap.Int("skipped", ds.Skipped),
	)

	recorder := metrics.NewRecorder()
	recorder.ObserveLoad(len(ds.Issues), ds.Skipped)

	policy, err := graph.ParsePolicy(cfg.MalformedPolicy)
	if err != nil {
		return err
	}
	layout := render.EadesLayout{Iterations: cfg.LayoutIterations, Seed: cfg.LayoutSeed}
	runner := analysis.NewRunner(layout, policy).WithLogger(log.Named("analysis"))

	report, err := runner.Run(ctx, feature, analysis.Input{
		Dataset: filepath.Base(path),
		Issues:  ds.Issues,
		Filter:  source.Filter{User: cfg.User, Label: cfg.Label},
	})
	if err != nil {
		return err
	}

	recorder.ObserveAnalysis(feature, report.Duration)
	if report.Graph != nil {
		recorder.ObserveGraph(report.Graph.Nodes, report.Graph.Edges, report.Graph.Build.Skipped)
	}

	if cfg.OutputFormat == config.FormatJSON {
		if err := report.WriteJSON(out); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	} else {
		report.WriteText(out)
	}

	if cfg.OutputFile != "" {
		if err := writeReportFile(cfg.OutputFile, report); err != nil {
			return err
		}
		log.Info("Report written", zap.String("path", cfg.OutputFile))
	}

	if cfg.MetricsFile != "" {
		if err := recorder.WriteFile(cfg.MetricsFile); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}

	if !cfg.Serve {
		return nil
	}
	if len(report.Figures) == 0 {
		log.Info("Nothing to show, the report has no figures")
		return nil
	}
	configureGin(cfg.IsProduction(), os.Stderr)
	srv, err := viewer.NewServer(cfg.ViewerAddr, report.Title, report.Figures)
	if err != nil {
		return err
	}
	return srv.ListenAndServe(ctx)
}

// configureGin sends gin's debug and request output to w so stdout only
// carries the report.
func configureGin(production bool, w io.Writer) {
	gin.DefaultWriter = w
	gin.DefaultErrorWriter = w
	if production {
		gin.SetMode(gin.ReleaseMode)
	}
}

func writeReportFile(path string, report *analysis.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if strings.EqualFold(filepath.Ext(path), ".html") {
		err = render.WritePage(f, report.Title, report.Figures...)
	} else {
		err = report.WriteJSON(f)
	}
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
