// Package rating derives view-level aggregates from empathy ratings.
package rating

import "github.com/avelichko/storycircle/internal/model"

// Summary is the derived view of one resource's empathy ratings. Own is
// meaningful only when Rated is true.
type Summary struct {
	Average float64
	Count   int
	Own     int
	Rated   bool
}

// Summarize computes the average and count of a rating sequence plus the
// viewer's own rating. Average is 0 when there are no ratings; callers
// render that case as "be the first to rate".
func Summarize(entries []model.EmpathyRating, userID string) Summary {
	var s Summary
	sum := 0
	for _, e := range entries {
		sum += e.Rating
		s.Count++
		if userID != "" && e.UserID == userID {
			s.Own = e.Rating
			s.Rated = true
		}
	}
	if s.Count > 0 {
		s.Average = float64(sum) / float64(s.Count)
	}
	return s
}
