package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
)

const attemptsTable = "attempts"

var attemptColumns = []string{
	"id", "problem_id", "timestamp", "is_success", "kind",
	"error_message", "time_taken", "run_id",
}

type attemptRepo struct {
	db *sql.DB
	sb *entsql.DialectBuilder
}

func (r *attemptRepo) Record(ctx context.Context, a NewAttempt) (*RecordResult, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	query, args := r.sb.Select("is_solved").
		From(r.sb.Table(problemsTable)).
		Where(entsql.EQ("id", a.ProblemID)).
		Query()
	var wasSolved bool
	err = tx.QueryRowContext(ctx, query, args...).Scan(&wasSolved)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read solved flag: %w", err)
	}

	ts := a.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}

	query, args = r.sb.Insert(attemptsTable).
		Columns("problem_id", "timestamp", "is_success", "kind", "error_message", "time_taken", "run_id").
		Values(a.ProblemID, ts.UnixMilli(), a.Success, a.Kind, a.Diagnostic, a.Duration.Seconds(), a.RunID).
		Returning("id").
		Query()
	var id int64
	if err := tx.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert attempt: %w", err)
	}

	firstSolve := a.Success && !wasSolved
	if firstSolve {
		query, args = r.sb.Update(problemsTable).
			Set("is_solved", true).
			Where(entsql.EQ("id", a.ProblemID)).
			Query()
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("mark solved: %w", err)
		}
	}

	var tries int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE problem_id = ?`, a.ProblemID,
	).Scan(&tries); err != nil {
		return nil, fmt.Errorf("count attempts: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &RecordResult{
		Attempt: Attempt{
			ID:         id,
			ProblemID:  a.ProblemID,
			Timestamp:  time.UnixMilli(ts.UnixMilli()),
			Success:    a.Success,
			Kind:       a.Kind,
			Diagnostic: a.Diagnostic,
			Duration:   a.Duration,
			RunID:      a.RunID,
		},
		FirstSolve: firstSolve,
		Tries:      tries,
	}, nil
}

func (r *attemptRepo) History(ctx context.Context, problemID int64) ([]Attempt, error) {
	query, args := r.sb.Select(attemptColumns...).
		From(r.sb.Table(attemptsTable)).
		Where(entsql.EQ("problem_id", problemID)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Attempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan attempt: %w", err)
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}

func (r *attemptRepo) Count(ctx context.Context, problemID int64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM attempts WHERE problem_id = ?`, problemID,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count attempts: %w", err)
	}
	return n, nil
}

func (r *attemptRepo) LastFailure(ctx context.Context, problemID int64) (*Attempt, error) {
	query, args := r.sb.Select(attemptColumns...).
		From(r.sb.Table(attemptsTable)).
		Where(entsql.And(
			entsql.EQ("problem_id", problemID),
			entsql.EQ("is_success", false),
		)).
		OrderBy(entsql.Desc("timestamp"), entsql.Desc("id")).
		Limit(1).
		Query()

	a, err := scanAttempt(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("last failure: %w", err)
	}
	return a, nil
}

// GlobalStats uses raw SQL: the conditional aggregates read more plainly
// than their builder form.
func (r *attemptRepo) GlobalStats(ctx context.Context) ([]ProblemStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title,
			SUM(CASE WHEN a.is_success = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN a.is_success = 0 THEN 1 ELSE 0 END),
			MAX(a.timestamp)
		FROM attempts a
		JOIN problems p ON p.id = a.problem_id
		GROUP BY p.id, p.title
		ORDER BY MAX(a.timestamp) DESC, p.id`)
	if err != nil {
		return nil, fmt.Errorf("query global stats: %w", err)
	}
	defer rows.Close()

	var out []ProblemStats
	for rows.Next() {
		var s ProblemStats
		var last int64
		if err := rows.Scan(&s.ProblemID, &s.Title, &s.Wins, &s.Fails, &last); err != nil {
			return nil, fmt.Errorf("scan global stats: %w", err)
		}
		s.LastAttempt = time.UnixMilli(last)
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *attemptRepo) LastSolvedActivity(ctx context.Context) ([]LastActivity, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT p.id, p.title, MAX(a.timestamp)
		FROM problems p
		JOIN attempts a ON a.problem_id = p.id
		WHERE p.is_solved = 1
		GROUP BY p.id, p.title`)
	if err != nil {
		return nil, fmt.Errorf("query last activity: %w", err)
	}
	defer rows.Close()

	var out []LastActivity
	for rows.Next() {
		var la LastActivity
		var last int64
		if err := rows.Scan(&la.ProblemID, &la.Title, &last); err != nil {
			return nil, fmt.Errorf("scan last activity: %w", err)
		}
		la.LastAttempt = time.UnixMilli(last)
		out = append(out, la)
	}
	return out, rows.Err()
}

func (r *attemptRepo) SuccessTimes(ctx context.Context) ([]time.Time, error) {
	query, args := r.sb.Select("timestamp").
		From(r.sb.Table(attemptsTable)).
		Where(entsql.EQ("is_success", true)).
		OrderBy("timestamp").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query success times: %w", err)
	}
	defer rows.Close()

	var out []time.Time
	for rows.Next() {
		var ms int64
		if err := rows.Scan(&ms); err != nil {
			return nil, fmt.Errorf("scan success time: %w", err)
		}
		out = append(out, time.UnixMilli(ms))
	}
	return out, rows.Err()
}

func scanAttempt(s rowScanner) (*Attempt, error) {
	var a Attempt
	var ts int64
	var seconds float64
	err := s.Scan(&a.ID, &a.ProblemID, &ts, &a.Success, &a.Kind,
		&a.Diagnostic, &seconds, &a.RunID)
	if err != nil {
		return nil, err
	}
	a.Timestamp = time.UnixMilli(ts)
	a.Duration = time.Duration(seconds * float64(time.Second))
	return &a, nil
}
