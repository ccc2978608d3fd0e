// Package review flags solved problems that have not been practiced for a
// while.
package review

import (
	"context"
	"sort"
	"time"

	"github.com/abhisek/drill/internal/store"
)

// DefaultThreshold is how long a solved problem may go unattempted before
// it is due for review.
const DefaultThreshold = 72 * time.Hour

// Due is a problem due for review.
type Due struct {
	ProblemID   int64
	Title       string
	LastAttempt time.Time
}

// StaleDays returns how many whole days have passed since the last attempt.
func (d Due) StaleDays(now time.Time) int {
	return int(now.Sub(d.LastAttempt).Hours() / 24)
}

// Scheduler answers which problems are due for review.
type Scheduler struct {
	attempts  store.AttemptRepo
	threshold time.Duration
}

// NewScheduler creates a Scheduler. A non-positive threshold selects
// DefaultThreshold.
func NewScheduler(attempts store.AttemptRepo, threshold time.Duration) *Scheduler {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Scheduler{attempts: attempts, threshold: threshold}
}

// Threshold returns the staleness threshold.
func (s *Scheduler) Threshold() time.Duration {
	return s.threshold
}

// DueForReview returns solved problems whose most recent attempt is older
// than the threshold before now, most stale first. Unsolved problems and
// problems without attempts are never due.
func (s *Scheduler) DueForReview(ctx context.Context, now time.Time) ([]Due, error) {
	activity, err := s.attempts.LastSolvedActivity(ctx)
	if err != nil {
		return nil, err
	}

	cutoff := now.Add(-s.threshold)
	var due []Due
	for _, a := range activity {
		if a.LastAttempt.Before(cutoff) {
			due = append(due, Due{ProblemID: a.ProblemID, Title: a.Title, LastAttempt: a.LastAttempt})
		}
	}

	sort.Slice(due, func(i, j int) bool {
		if !due[i].LastAttempt.Equal(due[j].LastAttempt) {
			return due[i].LastAttempt.Before(due[j].LastAttempt)
		}
		return due[i].ProblemID < due[j].ProblemID
	})
	return due, nil
}

// DueIDs returns the set of problem IDs due for review.
func (s *Scheduler) DueIDs(ctx context.Context, now time.Time) (map[int64]bool, error) {
	due, err := s.DueForReview(ctx, now)
	if err != nil {
		return nil, err
	}
	ids := make(map[int64]bool, len(due))
	for _, d := range due {
		ids[d.ProblemID] = true
	}
	return ids, nil
}
