package source

import "issue-insights/backend/internal/model"

// Filter narrows the record set before it reaches an analysis. Empty fields
// do not filter. Matching is exact string equality.
type Filter struct {
	User  string
	Label string
}

// IsZero reports whether the filter keeps every issue
func (f Filter) IsZero() bool {
	return f.User == "" && f.Label == ""
}

// Apply returns the issues that pass the filter, in input order
func (f Filter) Apply(issues []model.Issue) []model.Issue {
	if f.IsZero() {
		return issues
	}
	out := make([]model.Issue, 0, len(issues))
	for _, issue := range issues {
		if f.User != "" && !issue.InvolvesUser(f.User) {
			continue
		}
		if f.Label != "" && !issue.HasLabel(f.Label) {
			continue
		}
		out = append(out, issue)
	}
	return out
}
