package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"issue-insights/backend/internal/model"
	"issue-insights/backend/internal/source"
	"issue-insights/backend/pkg/config"
	"issue-insights/backend/pkg/logger"
)

var labels = []string{"kind/bug", "kind/feature", "kind/question", "area/installer", "area/solver", "status/triage"}

func main() {
	issues := flag.Int("issues", 200, "Number of issues to generate")
	users := flag.Int("users", 25, "Number of distinct users")
	seed := flag.Uint64("seed", 1, "Random seed")
	name := flag.String("name", "sample.json", "Dataset file name, written under the data directory")
	force := flag.Bool("force", false, "Overwrite an existing dataset")
	flag.Parse()

	// Initialize logger
	if err := logger.Init("development"); err != nil {
		panic(fmt.Sprintf("Failed to initialize logger: %v", err))
	}
	defer logger.Sync()

	log := logger.Get()
	log.Info("Generating sample dataset...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	path := filepath.Join(cfg.DataDir, *name)
	if _, err := os.Stat(path); err == nil && !*force {
		log.Info("Dataset already exists, skipping generation (use -force to overwrite)",
			zap.String("path", path),
		)
		os.Exit(0)
	}

	rng := rand.New(rand.NewPCG(*seed, *seed))
	data := generate(rng, *issues, *users, time.Date(2019, time.January, 1, 0, 0, 0, 0, time.UTC))

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatal("Failed to create data directory", zap.Error(err))
	}
	if err := write(path, data); err != nil {
		log.Fatal("Failed to write dataset", zap.Error(err))
	}

	// Read it back through the loader so a broken file is caught here
	ds, err := source.NewLoader().Load(context.Background(), path)
	if err != nil {
		log.Fatal("Generated dataset does not load", zap.Error(err))
	}

	log.Info("Sample dataset ready",
		zap.String("path", path),
		zap.Int("issues", len(ds.Issues)),
		zap.Int("skipped", ds.Skipped),
	)
	log.Info("Add it to ISSUES_DATASETS to analyze it")
}

// generate builds n issues among users contributors, created after start.
// About a third of the issues are closed and some events have no author.
func generate(rng *rand.Rand, n, users int, start time.Time) []model.Issue {
	users = max(users, 1)
	out := make([]model.Issue, 0, n)
	for i := 0; i < n; i++ {
		created := start.Add(time.Duration(rng.IntN(4*365*24)) * time.Hour)
		issue := model.Issue{
			URL:         fmt.Sprintf("https://github.com/example/project/issues/%d", i+1),
			Creator:     user(rng, users),
			Labels:      []string{labels[rng.IntN(len(labels))]},
			State:       model.StateOpen,
			Title:       fmt.Sprintf("Sample issue %d", i+1),
			Text:        "Generated issue body.",
			Number:      i + 1,
			CreatedDate: created,
			UpdatedDate: created,
			TimelineURL: fmt.Sprintf("https://api.github.com/repos/example/project/issues/%d/timeline", i+1),
		}

		at := created
		for e := rng.IntN(6); e > 0; e-- {
			at = at.Add(time.Duration(1+rng.IntN(72)) * time.Hour)
			comment := "Generated comment."
			issue.Events = append(issue.Events, model.Event{
				EventType: "commented",
				Author:    user(rng, users),
				EventDate: at,
				Comment:   &comment,
			})
		}
		if rng.IntN(3) == 0 {
			at = at.Add(time.Duration(1+rng.IntN(60*24)) * time.Hour)
			issue.State = model.StateClosed
			issue.Events = append(issue.Events, model.Event{EventType: "closed", EventDate: at})
		}
		issue.UpdatedDate = at
		out = append(out, issue)
	}
	return out
}

func user(rng *rand.Rand, users int) string {
	return fmt.Sprintf("user%02d", rng.IntN(users))
}

func write(path string, issues []model.Issue) error {
	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
