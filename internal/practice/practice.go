// Package practice ties grading, attempt history and the progress ledger
// together for a single practice session.
package practice

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/drill/internal/grader"
	"github.com/abhisek/drill/internal/progress"
	"github.com/abhisek/drill/internal/store"
	"github.com/abhisek/drill/internal/workspace"
	"go.uber.org/zap"
)

// Session is an opened problem ready to be worked on.
type Session struct {
	Problem      *store.Problem
	SolutionPath string

	// Created is true when the solution file was created from the stub.
	Created bool
	History []store.Attempt
}

// Result is the outcome of one submission.
type Result struct {
	Verdict grader.Verdict
	Attempt store.Attempt

	// Award is set only when the submission solved the problem for the
	// first time.
	Award *progress.Award

	// AlreadySolved is true when the problem was solved before this
	// submission.
	AlreadySolved bool
}

// Service runs practice submissions.
type Service struct {
	problems store.ProblemRepo
	attempts store.AttemptRepo
	grader   *grader.Grader
	ledger   *progress.Ledger
	ws       *workspace.Workspace
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service. The grader must read solutions from the
// workspace's solutions directory.
func NewService(st *store.Store, g *grader.Grader, ws *workspace.Workspace, opts ...Option) *Service {
	s := &Service{
		problems: st.ProblemRepo(),
		attempts: st.AttemptRepo(),
		grader:   g,
		ledger:   progress.NewLedger(st.ProgressRepo()),
		ws:       ws,
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Ledger returns the progress ledger the service awards XP through.
func (s *Service) Ledger() *progress.Ledger {
	return s.ledger
}

// Open loads a problem, makes sure its solution file exists and returns
// its attempt history.
func (s *Service) Open(ctx context.Context, problemID int64) (*Session, error) {
	p, err := s.problems.Get(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("load problem %d: %w", problemID, err)
	}

	path, created, err := s.ws.EnsureSolution(p)
	if err != nil {
		return nil, err
	}
	if created {
		s.logger.Debug("created solution file", zap.Int64("problem_id", p.ID), zap.String("path", path))
	}

	hist, err := s.attempts.History(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return &Session{Problem: p, SolutionPath: path, Created: created, History: hist}, nil
}

// Submit grades the current solution of a problem and records the
// attempt. elapsed is the time the user spent before submitting. On the
// first successful attempt the reward for the number of tries is added to
// the ledger.
//
// A failed grading run is not an error. An error is returned only when
// the run could not happen or could not be recorded.
func (s *Service) Submit(ctx context.Context, problemID int64, elapsed time.Duration) (*Result, error) {
	p, err := s.problems.Get(ctx, problemID)
	if err != nil {
		return nil, fmt.Errorf("load problem %d: %w", problemID, err)
	}
	if _, _, err := s.ws.EnsureSolution(p); err != nil {
		return nil, err
	}

	v, err := s.grader.Grade(ctx, p.TestCode, workspace.ModuleName(p.Filename))
	if err != nil {
		return nil, fmt.Errorf("grade problem %d: %w", problemID, err)
	}

	log := s.logger.With(zap.Int64("problem_id", p.ID), zap.String("run_id", v.RunID))

	now := s.now()
	rec, err := s.attempts.Record(ctx, store.NewAttempt{
		ProblemID:  p.ID,
		Timestamp:  now,
		Success:    v.Success,
		Kind:       string(v.Kind),
		Diagnostic: v.Diagnostic,
		Duration:   elapsed,
		RunID:      v.RunID,
	})
	if err != nil {
		return nil, fmt.Errorf("record attempt: %w", err)
	}

	res := &Result{Verdict: v, Attempt: rec.Attempt, AlreadySolved: p.Solved}
	log.Info("attempt recorded",
		zap.String("kind", string(v.Kind)),
		zap.Int("tries", rec.Tries),
		zap.Bool("first_solve", rec.FirstSolve),
	)

	if rec.FirstSolve {
		award, err := s.ledger.ApplyXP(ctx, progress.RewardForAttempts(rec.Tries), now)
		if err != nil {
			return res, fmt.Errorf("award xp: %w", err)
		}
		res.Award = &award
		log.Info("xp awarded", zap.Int("xp", award.XP), zap.Int("level", award.Level))
	}
	return res, nil
}

// Reset restores a problem's solution file to the stub.
func (s *Service) Reset(ctx context.Context, problemID int64) (string, error) {
	p, err := s.problems.Get(ctx, problemID)
	if err != nil {
		return "", fmt.Errorf("load problem %d: %w", problemID, err)
	}
	return s.ws.ResetSolution(p)
}
