package domain

import "strings"

// JobFilter narrows a job listing. A zero-valued field does not constrain the
// result; a job is included only when it satisfies every non-empty field.
type JobFilter struct {
	Category string
	Urgency  Urgency
	MinPrice *float64
	MaxPrice *float64
	Location string
	// Search is a case-insensitive substring of the title or description.
	Search string
	// ClientID restricts the listing to jobs owned by one client.
	ClientID string
	// IncludeBlocked keeps moderated jobs in the result (admin views).
	IncludeBlocked bool
}

// IsEmpty reports whether no criterion is set.
func (f JobFilter) IsEmpty() bool {
	return f.Category == "" && f.Urgency == "" && f.MinPrice == nil && f.MaxPrice == nil &&
		f.Location == "" && f.Search == "" && f.ClientID == ""
}

// Matches reports whether j passes every criterion of f.
func (f JobFilter) Matches(j *Job) bool {
	if j == nil {
		return false
	}
	if j.IsBlocked && !f.IncludeBlocked {
		return false
	}
	if f.Category != "" && j.Category != f.Category {
		return false
	}
	if f.Urgency != "" && j.Urgency != f.Urgency {
		return false
	}
	if f.Location != "" && j.Location != f.Location {
		return false
	}
	if f.ClientID != "" && j.ClientID != f.ClientID {
		return false
	}
	if f.MinPrice != nil && j.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && j.Price > *f.MaxPrice {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(j.Title), q) && !strings.Contains(strings.ToLower(j.Description), q) {
			return false
		}
	}
	return true
}

// FilterJobs returns the jobs of list that match f, preserving order.
func FilterJobs(list []*Job, f JobFilter) []*Job {
	out := make([]*Job, 0, len(list))
	for _, j := range list {
		if f.Matches(j) {
			out = append(out, j)
		}
	}
	return out
}
