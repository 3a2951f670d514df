package domain

import "sort"

// SimilarJobsLimit caps the "similar jobs" block on a job page.
const SimilarJobsLimit = 4

// RecentEarningsLimit caps the recent completed jobs in an earnings summary.
const RecentEarningsLimit = 5

// SimilarTo reports whether candidate belongs in the similar jobs of current:
// another visible open job sharing the category or the location.
func SimilarTo(current, candidate *Job) bool {
	if current == nil || candidate == nil || candidate.ID == current.ID {
		return false
	}
	if candidate.IsBlocked || candidate.Status != JobOpen {
		return false
	}
	return candidate.Category == current.Category || candidate.Location == current.Location
}

// SimilarJobs picks up to limit jobs of list that are similar to current,
// preserving order.
func SimilarJobs(current *Job, list []*Job, limit int) []*Job {
	out := make([]*Job, 0, limit)
	for _, j := range list {
		if len(out) == limit {
			break
		}
		if SimilarTo(current, j) {
			out = append(out, j)
		}
	}
	return out
}

// MonthlyEarnings is the sum of completed job prices in one calendar month.
type MonthlyEarnings struct {
	Month string  `json:"month"` // YYYY-MM
	Total float64 `json:"total"`
}

// EarningsSummary aggregates the completed jobs of one user.
type EarningsSummary struct {
	Completed int               `json:"completed"`
	Total     float64           `json:"total"`
	Average   float64           `json:"average"`
	Monthly   []MonthlyEarnings `json:"monthly"`
	Recent    []*Job            `json:"recent"`
}

// SummarizeEarnings totals the completed jobs of list. Jobs are bucketed by
// the month they were completed in (their last update); list is expected
// newest first, so Recent keeps that order.
func SummarizeEarnings(list []*Job) EarningsSummary {
	s := EarningsSummary{Monthly: []MonthlyEarnings{}, Recent: []*Job{}}
	byMonth := make(map[string]float64)
	for _, j := range list {
		if j.Status != JobCompleted {
			continue
		}
		s.Completed++
		s.Total += j.Price
		byMonth[j.UpdatedAt.UTC().Format("2006-01")] += j.Price
		if len(s.Recent) < RecentEarningsLimit {
			s.Recent = append(s.Recent, j)
		}
	}
	if s.Completed > 0 {
		s.Average = s.Total / float64(s.Completed)
	}
	for month, total := range byMonth {
		s.Monthly = append(s.Monthly, MonthlyEarnings{Month: month, Total: total})
	}
	sort.Slice(s.Monthly, func(a, b int) bool { return s.Monthly[a].Month < s.Monthly[b].Month })
	return s
}
