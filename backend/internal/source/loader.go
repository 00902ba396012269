package source

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"issue-insights/backend/internal/model"
	apperrors "issue-insights/backend/pkg/errors"
	"issue-insights/backend/pkg/logger"
)

// Dataset is the record set of one run
type Dataset struct {
	Path          string
	Issues        []model.Issue
	Skipped       int // elements that could not be decoded as an issue
	SkippedEvents int // events dropped from otherwise valid issues
}

// issueRecord holds the events raw so a broken event is dropped alone
type issueRecord struct {
	model.Issue
	Events []json.RawMessage `json:"events"`
}

// Loader reads issue datasets from the local filesystem
type Loader struct {
	logger *zap.Logger
}

// NewLoader creates a new dataset loader
func NewLoader() *Loader {
	return &Loader{
		logger: logger.Named("source"),
	}
}

// Load reads the JSON array of issues at path
func (l *Loader) Load(ctx context.Context, path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewSourceNotFound(path, err)
	}
	defer f.Close()

	return l.Decode(ctx, path, f)
}

// Decode reads a JSON array of issues from r. An element that is valid JSON
// but not a valid issue is skipped and counted; anything that breaks the
// array itself fails the whole dataset.
func (l *Loader) Decode(ctx context.Context, name string, r io.Reader) (*Dataset, error) {
	dec := json.NewDecoder(bufio.NewReader(r))

	tok, err := dec.Token()
	if err != nil {
		return nil, apperrors.NewSourceDecodeFailed(name, err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '[' {
		return nil, apperrors.NewSourceDecodeFailed(name, fmt.Errorf("expected a JSON array, got %v", tok))
	}

	ds := &Dataset{Path: name}
	for index := 0; dec.More(); index++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return nil, apperrors.NewSourceDecodeFailed(name, fmt.Errorf("element %d: %w", index, err))
		}

		var rec issueRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			ds.Skipped++
			l.logger.Warn("Skipping malformed issue record",
				zap.String("dataset", name),
				zap.Int("index", index),
				zap.Error(err),
			)
			continue
		}
		ds.Issues = append(ds.Issues, l.issue(ds, name, index, rec))
	}

	if _, err := dec.Token(); err != nil {
		return nil, apperrors.NewSourceDecodeFailed(name, err)
	}

	l.logger.Debug("Dataset loaded",
		zap.String("dataset", name),
		zap.Int("issues", len(ds.Issues)),
		zap.Int("skipped", ds.Skipped),
		zap.Int("skipped_events", ds.SkippedEvents),
	)
	return ds, nil
}

func (l *Loader) issue(ds *Dataset, name string, index int, rec issueRecord) model.Issue {
	issue := rec.Issue
	if rec.Events == nil {
		return issue
	}

	issue.Events = make([]model.Event, 0, len(rec.Events))
	for i, raw := range rec.Events {
		var event model.Event
		if err := json.Unmarshal(raw, &event); err != nil {
			ds.SkippedEvents++
			l.logger.Warn("Skipping malformed event",
				zap.String("dataset", name),
				zap.Int("index", index),
				zap.Int("event", i),
				zap.Error(err),
			)
			continue
		}
		issue.Events = append(issue.Events, event)
	}
	return issue
}
