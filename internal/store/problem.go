package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

const problemsTable = "problems"

var problemColumns = []string{
	"id", "title", "filename", "instructions", "solution_stub",
	"test_code", "is_solved", "user_notes",
}

type problemRepo struct {
	db *sql.DB
	sb *entsql.DialectBuilder
}

func (r *problemRepo) Upsert(ctx context.Context, in ProblemInput) (int64, error) {
	query, args := r.sb.Insert(problemsTable).
		Columns("title", "filename", "instructions", "solution_stub", "test_code").
		Values(in.Title, in.Filename, in.Instructions, in.SolutionStub, in.TestCode).
		OnConflict(
			entsql.ConflictColumns("title"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("instructions")
				u.SetExcluded("solution_stub")
				u.SetExcluded("test_code")
			}),
		).
		Returning("id").
		Query()

	var id int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&id); err != nil {
		return 0, fmt.Errorf("upsert problem %q: %w", in.Title, err)
	}
	return id, nil
}

func (r *problemRepo) Get(ctx context.Context, id int64) (*Problem, error) {
	return r.getOne(ctx, entsql.EQ("id", id))
}

func (r *problemRepo) GetByTitle(ctx context.Context, title string) (*Problem, error) {
	return r.getOne(ctx, entsql.EQ("title", title))
}

func (r *problemRepo) getOne(ctx context.Context, where *entsql.Predicate) (*Problem, error) {
	query, args := r.sb.Select(problemColumns...).
		From(r.sb.Table(problemsTable)).
		Where(where).
		Limit(1).
		Query()

	p, err := scanProblem(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get problem: %w", err)
	}
	return p, nil
}

func (r *problemRepo) List(ctx context.Context) ([]Problem, error) {
	query, args := r.sb.Select(problemColumns...).
		From(r.sb.Table(problemsTable)).
		OrderBy("id").
		Query()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list problems: %w", err)
	}
	defer rows.Close()

	var out []Problem
	for rows.Next() {
		p, err := scanProblem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan problem: %w", err)
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

func (r *problemRepo) Delete(ctx context.Context, id int64) error {
	query, args := r.sb.Delete(problemsTable).Where(entsql.EQ("id", id)).Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("delete problem %d: %w", id, err)
	}
	return expectAffected(res)
}

func (r *problemRepo) SaveNotes(ctx context.Context, id int64, notes string) error {
	query, args := r.sb.Update(problemsTable).
		Set("user_notes", notes).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("save notes for problem %d: %w", id, err)
	}
	return expectAffected(res)
}

func (r *problemRepo) Counts(ctx context.Context) (ProblemCounts, error) {
	var c ProblemCounts
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COALESCE(SUM(is_solved), 0) FROM problems`,
	).Scan(&c.Total, &c.Solved)
	if err != nil {
		return c, fmt.Errorf("count problems: %w", err)
	}
	return c, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProblem(s rowScanner) (*Problem, error) {
	var p Problem
	err := s.Scan(&p.ID, &p.Title, &p.Filename, &p.Instructions,
		&p.SolutionStub, &p.TestCode, &p.Solved, &p.Notes)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func expectAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
