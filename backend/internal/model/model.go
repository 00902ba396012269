package model

import "time"

// State is the open/closed state of an issue
type State string

const (
	StateOpen   State = "open"
	StateClosed State = "closed"
)

// Issue is one tracked issue and its timeline. JSON nulls decode to zero
// values: an empty Creator means the creator is unknown.
type Issue struct {
	URL         string    `json:"url"`
	Creator     string    `json:"creator"`
	Labels      []string  `json:"labels"`
	State       State     `json:"state"`
	Assignees   []string  `json:"assignees"`
	Title       string    `json:"title"`
	Text        string    `json:"text"`
	Number      int       `json:"number"`
	CreatedDate time.Time `json:"created_date"`
	UpdatedDate time.Time `json:"updated_date"`
	TimelineURL string    `json:"timeline_url"`
	Events      []Event   `json:"events"`
}

// Event is one timeline entry of an issue (comment, label, close, ...).
// System-generated events have no Author. Comment is nil when the event
// carries no comment at all; an empty comment is still a comment.
type Event struct {
	EventType string    `json:"event_type"`
	Author    string    `json:"author"`
	EventDate time.Time `json:"event_date"`
	Label     string    `json:"label"`
	Comment   *string   `json:"comment"`
}

// HasAuthor reports whether a person is attributed to the event
func (e Event) HasAuthor() bool {
	return e.Author != ""
}

// HasComment reports whether the event carries a comment, even an empty one
func (e Event) HasComment() bool {
	return e.Comment != nil
}

// HasLabel reports whether the issue carries label (exact match)
func (i Issue) HasLabel(label string) bool {
	for _, l := range i.Labels {
		if l == label {
			return true
		}
	}
	return false
}

// IsClosed reports whether the issue is closed
func (i Issue) IsClosed() bool {
	return i.State == StateClosed
}

// CommentCount returns the number of events carrying a comment
func (i Issue) CommentCount() int {
	n := 0
	for _, e := range i.Events {
		if e.HasComment() {
			n++
		}
	}
	return n
}

// InvolvesUser reports whether user created the issue or authored one of its events
func (i Issue) InvolvesUser(user string) bool {
	if i.Creator == user {
		return true
	}
	for _, e := range i.Events {
		if e.Author == user {
			return true
		}
	}
	return false
}
