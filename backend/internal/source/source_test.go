package source

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"issue-insights/backend/internal/model"
	apperrors "issue-insights/backend/pkg/errors"
)

func TestLoader_Load(t *testing.T) {
	path := filepath.Join(t.TempDir(), "issues.json")
	require.NoError(t, os.WriteFile(path, []byte(`[
		{"creator": "alice", "number": 1, "events": [{"author": "bob"}]},
		{"creator": "bob", "number": 2, "events": []}
	]`), 0o644))

	ds, err := NewLoader().Load(context.Background(), path)
	require.NoError(t, err)

	assert.Equal(t, path, ds.Path)
	assert.Zero(t, ds.Skipped)
	require.Len(t, ds.Issues, 2)
	assert.Equal(t, "alice", ds.Issues[0].Creator)
	assert.Equal(t, "bob", ds.Issues[0].Events[0].Author)
}

func TestLoader_LoadMissing(t *testing.T) {
	_, err := NewLoader().Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"))
	require.Error(t, err)

	var notFound *apperrors.ErrSourceNotFound
	assert.ErrorAs(t, err, &notFound)
}

func TestLoader_Decode(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		wantIssues  int
		wantSkipped int
		wantErr     bool
	}{
		{name: "empty array", input: `[]`, wantIssues: 0},
		{name: "skips wrongly typed element", input: `[{"creator": "a"}, {"creator": 12}, "text", {"creator": "b"}]`, wantIssues: 2, wantSkipped: 2},
		{name: "not an array", input: `{"creator": "a"}`, wantErr: true},
		{name: "truncated", input: `[{"creator": "a"}, {"creator"`, wantErr: true},
		{name: "empty input", input: ``, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := NewLoader().Decode(context.Background(), "test", strings.NewReader(tt.input))
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, apperrors.IsErrorType(err, apperrors.ErrorTypeSource))
				return
			}
			require.NoError(t, err)
			assert.Len(t, ds.Issues, tt.wantIssues)
			assert.Equal(t, tt.wantSkipped, ds.Skipped)
		})
	}
}

func TestLoader_DecodeDropsOnlyBadEvents(t *testing.T) {
	input := `[{"creator": "alice", "number": 7, "events": [
		{"event_type": "commented", "author": "bob"},
		{"event_type": "commented", "author": 5},
		{"event_type": "commented", "author": "carol", "event_date": "not a date"},
		{"event_type": "commented", "author": "dave"}
	]}]`

	ds, err := NewLoader().Decode(context.Background(), "test", strings.NewReader(input))
	require.NoError(t, err)

	assert.Zero(t, ds.Skipped)
	assert.Equal(t, 2, ds.SkippedEvents)
	require.Len(t, ds.Issues, 1)
	assert.Equal(t, "alice", ds.Issues[0].Creator)
	assert.Equal(t, 7, ds.Issues[0].Number)
	require.Len(t, ds.Issues[0].Events, 2)
	assert.Equal(t, "bob", ds.Issues[0].Events[0].Author)
	assert.Equal(t, "dave", ds.Issues[0].Events[1].Author)
}

func TestLoader_DecodeCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewLoader().Decode(ctx, "test", strings.NewReader(`[{"creator": "a"}]`))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestFilter_Apply(t *testing.T) {
	issues := []model.Issue{
		{Number: 1, Creator: "alice", Labels: []string{"bug"}},
		{Number: 2, Creator: "bob", Labels: []string{"feature"}, Events: []model.Event{{Author: "alice"}}},
		{Number: 3, Creator: "carol", Labels: []string{"bug"}},
	}

	numbers := func(in []model.Issue) []int {
		var out []int
		for _, i := range in {
			out = append(out, i.Number)
		}
		return out
	}

	tests := []struct {
		name   string
		filter Filter
		want   []int
	}{
		{name: "no filter", filter: Filter{}, want: []int{1, 2, 3}},
		{name: "user as creator or author", filter: Filter{User: "alice"}, want: []int{1, 2}},
		{name: "label", filter: Filter{Label: "bug"}, want: []int{1, 3}},
		{name: "user and label", filter: Filter{User: "alice", Label: "bug"}, want: []int{1}},
		{name: "no match", filter: Filter{User: "ALICE"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, numbers(tt.filter.Apply(issues)))
		})
	}
}
