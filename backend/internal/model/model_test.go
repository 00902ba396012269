package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleIssue = `{
	"url": "https://github.com/python-poetry/poetry/issues/9001",
	"creator": "alice",
	"labels": ["kind/bug", "status/triage"],
	"state": "closed",
	"assignees": [],
	"title": "Lock file not updated",
	"text": "steps to reproduce",
	"number": 9001,
	"created_date": "2024-01-10T08:00:00+00:00",
	"updated_date": "2024-01-15T09:30:00+00:00",
	"timeline_url": "https://api.github.com/repos/python-poetry/poetry/issues/9001/timeline",
	"events": [
		{"event_type": "commented", "author": "bob", "event_date": "2024-01-11T10:00:00+00:00", "label": null, "comment": "same here"},
		{"event_type": "labeled", "author": null, "event_date": "2024-01-11T10:05:00+00:00", "label": "kind/bug", "comment": null},
		{"event_type": "closed", "author": "alice", "event_date": "2024-01-15T09:30:00+00:00", "label": null, "comment": null}
	]
}`

func TestIssueDecode(t *testing.T) {
	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(sampleIssue), &issue))

	assert.Equal(t, "alice", issue.Creator)
	assert.Equal(t, 9001, issue.Number)
	assert.True(t, issue.IsClosed())
	assert.True(t, issue.HasLabel("kind/bug"))
	assert.False(t, issue.HasLabel("Kind/Bug"))
	assert.Equal(t, time.Date(2024, 1, 10, 8, 0, 0, 0, time.UTC), issue.CreatedDate.UTC())

	require.Len(t, issue.Events, 3)
	assert.True(t, issue.Events[0].HasAuthor())
	assert.False(t, issue.Events[1].HasAuthor())
	assert.Equal(t, 1, issue.CommentCount())
}

func TestIssueDecode_NullDates(t *testing.T) {
	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(`{"creator": null, "created_date": null, "events": null}`), &issue))

	assert.Empty(t, issue.Creator)
	assert.True(t, issue.CreatedDate.IsZero())
	assert.Empty(t, issue.Events)
}

func TestCommentCount_EmptyCommentCounts(t *testing.T) {
	var issue Issue
	require.NoError(t, json.Unmarshal([]byte(`{"creator": "alice", "events": [
		{"event_type": "commented", "author": "bob", "comment": ""},
		{"event_type": "commented", "author": "bob", "comment": "hi"},
		{"event_type": "labeled", "author": "bob", "comment": null},
		{"event_type": "closed", "author": "alice"}
	]}`), &issue))

	assert.True(t, issue.Events[0].HasComment())
	assert.Equal(t, "", *issue.Events[0].Comment)
	assert.False(t, issue.Events[2].HasComment())
	assert.False(t, issue.Events[3].HasComment())
	assert.Equal(t, 2, issue.CommentCount())
}

func TestInvolvesUser(t *testing.T) {
	issue := Issue{
		Creator: "alice",
		Events:  []Event{{Author: "bob"}, {Author: ""}},
	}

	tests := []struct {
		name string
		user string
		want bool
	}{
		{name: "creator", user: "alice", want: true},
		{name: "event author", user: "bob", want: true},
		{name: "stranger", user: "carol", want: false},
		{name: "case differs", user: "Alice", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, issue.InvolvesUser(tt.user))
		})
	}
}
