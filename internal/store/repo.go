package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit   int       // max results (0 = unlimited)
	From    time.Time // timestamp >= From
	To      time.Time // timestamp <= To
	Purpose string    // exact match when set
}

// Problem is one practice exercise.
type Problem struct {
	ID           int64
	Title        string
	Filename     string
	Instructions string
	SolutionStub string
	TestCode     string
	Solved       bool
	Notes        string
}

// ProblemInput carries the imported fields of a problem definition.
type ProblemInput struct {
	Title        string
	Filename     string
	Instructions string
	SolutionStub string
	TestCode     string
}

// ProblemCounts summarizes the catalog.
type ProblemCounts struct {
	Total  int
	Solved int
}

// ProblemRepo manages problem definitions.
type ProblemRepo interface {
	// Upsert inserts a problem, or refreshes instructions, stub and test
	// code of the problem with the same title. Filename, solved flag and
	// notes of an existing problem are kept. Returns the problem ID.
	Upsert(ctx context.Context, in ProblemInput) (int64, error)

	// Get returns the problem with the given ID, or ErrNotFound.
	Get(ctx context.Context, id int64) (*Problem, error)

	// GetByTitle returns the problem with the given title, or ErrNotFound.
	GetByTitle(ctx context.Context, title string) (*Problem, error)

	// List returns all problems ordered by ID.
	List(ctx context.Context) ([]Problem, error)

	// Delete removes a problem and, through the foreign key, its attempts.
	Delete(ctx context.Context, id int64) error

	// SaveNotes replaces the user's notes on a problem.
	SaveNotes(ctx context.Context, id int64, notes string) error

	// Counts returns total and solved problem counts.
	Counts(ctx context.Context) (ProblemCounts, error)
}

// Attempt is one recorded grading run.
type Attempt struct {
	ID         int64
	ProblemID  int64
	Timestamp  time.Time
	Success    bool
	Kind       string
	Diagnostic string
	Duration   time.Duration
	RunID      string
}

// NewAttempt describes an attempt to record.
type NewAttempt struct {
	ProblemID  int64
	Timestamp  time.Time
	Success    bool
	Kind       string
	Diagnostic string
	Duration   time.Duration
	RunID      string
}

// RecordResult reports what recording an attempt changed.
type RecordResult struct {
	Attempt Attempt

	// FirstSolve is true when this attempt moved the problem from unsolved
	// to solved.
	FirstSolve bool

	// Tries is the number of attempts on the problem, including this one.
	Tries int
}

// ProblemStats aggregates attempts for one problem.
type ProblemStats struct {
	ProblemID   int64
	Title       string
	Wins        int
	Fails       int
	LastAttempt time.Time
}

// LastActivity is the most recent attempt time of a problem.
type LastActivity struct {
	ProblemID   int64
	Title       string
	LastAttempt time.Time
}

// AttemptRepo manages the append-only attempt history.
type AttemptRepo interface {
	// Record appends an attempt and, on success, marks the problem solved.
	// Both happen in one transaction.
	Record(ctx context.Context, a NewAttempt) (*RecordResult, error)

	// History returns a problem's attempts, newest first.
	History(ctx context.Context, problemID int64) ([]Attempt, error)

	// Count returns the number of attempts on a problem.
	Count(ctx context.Context, problemID int64) (int, error)

	// LastFailure returns the newest failed attempt, or ErrNotFound.
	LastFailure(ctx context.Context, problemID int64) (*Attempt, error)

	// GlobalStats returns win/fail counts per attempted problem, most
	// recently attempted first.
	GlobalStats(ctx context.Context) ([]ProblemStats, error)

	// LastSolvedActivity returns, for every solved problem with at least
	// one attempt, the time of its most recent attempt.
	LastSolvedActivity(ctx context.Context) ([]LastActivity, error)

	// SuccessTimes returns the timestamps of all successful attempts,
	// oldest first.
	SuccessTimes(ctx context.Context) ([]time.Time, error)
}

// ProgressState is the singleton gamification record. Level is derived
// from TotalXP by callers and never stored.
type ProgressState struct {
	TotalXP        int
	StreakDays     int
	LastActiveDate string // YYYY-MM-DD, empty before the first award
}

// ProgressRepo loads and saves the singleton progress row.
type ProgressRepo interface {
	Load(ctx context.Context) (ProgressState, error)
	Save(ctx context.Context, st ProgressState) error
}

// LLMRequestEventData captures the data for a single LLM request event.
type LLMRequestEventData struct {
	Provider     string
	Model        string
	Purpose      string
	InputTokens  int
	OutputTokens int
	LatencyMs    int64
	Success      bool
	ErrorMessage string
	RequestBody  string
	ResponseBody string
}

// LLMEvent is a stored LLM request event.
type LLMEvent struct {
	ID        int64
	Timestamp time.Time
	LLMRequestEventData
}

// LLMUsage aggregates LLM events by a grouping key.
type LLMUsage struct {
	Purpose      string
	Model        string
	Calls        int
	InputTokens  int
	OutputTokens int
	AvgLatencyMs int64
}

// EventRepo provides append and query access to LLM request events.
type EventRepo interface {
	// AppendLLMRequest records an LLM API call event.
	AppendLLMRequest(ctx context.Context, data LLMRequestEventData) error

	// QueryLLMEvents returns events newest first.
	QueryLLMEvents(ctx context.Context, opts QueryOpts) ([]LLMEvent, error)

	// GetLLMEvent returns one event, or ErrNotFound.
	GetLLMEvent(ctx context.Context, id int64) (*LLMEvent, error)

	// LLMUsageByPurpose aggregates token usage per purpose.
	LLMUsageByPurpose(ctx context.Context) ([]LLMUsage, error)

	// LLMUsageByModel aggregates token usage per model.
	LLMUsageByModel(ctx context.Context) ([]LLMUsage, error)
}
