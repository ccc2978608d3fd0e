package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// migration is one numbered schema step. Steps are additive only: new
// tables, or new columns with defaults so existing rows stay valid.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create problems, attempts and user_stats",
		stmts: []string{
			`CREATE TABLE problems (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				title TEXT NOT NULL UNIQUE,
				filename TEXT NOT NULL,
				instructions TEXT NOT NULL DEFAULT '',
				solution_stub TEXT NOT NULL DEFAULT '',
				test_code TEXT NOT NULL DEFAULT '',
				is_solved INTEGER NOT NULL DEFAULT 0
			)`,
			`CREATE TABLE attempts (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				problem_id INTEGER NOT NULL REFERENCES problems(id) ON DELETE CASCADE,
				timestamp INTEGER NOT NULL,
				is_success INTEGER NOT NULL,
				error_message TEXT NOT NULL DEFAULT ''
			)`,
			`CREATE INDEX attempts_problem_timestamp ON attempts (problem_id, timestamp)`,
			`CREATE TABLE user_stats (
				id INTEGER PRIMARY KEY CHECK (id = 1),
				total_xp INTEGER NOT NULL DEFAULT 0 CHECK (total_xp >= 0),
				streak_days INTEGER NOT NULL DEFAULT 0 CHECK (streak_days >= 0),
				last_active_date TEXT NOT NULL DEFAULT ''
			)`,
			`INSERT INTO user_stats (id) VALUES (1)`,
		},
	},
	{
		version: 2,
		name:    "add attempts.time_taken",
		stmts: []string{
			`ALTER TABLE attempts ADD COLUMN time_taken REAL NOT NULL DEFAULT 0`,
		},
	},
	{
		version: 3,
		name:    "add problems.user_notes",
		stmts: []string{
			`ALTER TABLE problems ADD COLUMN user_notes TEXT NOT NULL DEFAULT ''`,
		},
	},
	{
		version: 4,
		name:    "add attempts.kind and attempts.run_id",
		stmts: []string{
			`ALTER TABLE attempts ADD COLUMN kind TEXT NOT NULL DEFAULT ''`,
			`ALTER TABLE attempts ADD COLUMN run_id TEXT NOT NULL DEFAULT ''`,
			`UPDATE attempts SET kind = CASE WHEN is_success = 1 THEN 'passed' ELSE 'failed' END`,
		},
	},
	{
		version: 5,
		name:    "create llm_request_events",
		stmts: []string{
			`CREATE TABLE llm_request_events (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp INTEGER NOT NULL,
				provider TEXT NOT NULL,
				model TEXT NOT NULL,
				purpose TEXT NOT NULL,
				input_tokens INTEGER NOT NULL DEFAULT 0,
				output_tokens INTEGER NOT NULL DEFAULT 0,
				latency_ms INTEGER NOT NULL DEFAULT 0,
				success INTEGER NOT NULL,
				error_message TEXT NOT NULL DEFAULT '',
				request_body TEXT NOT NULL DEFAULT '',
				response_body TEXT NOT NULL DEFAULT ''
			)`,
		},
	},
}

// migrate applies every migration newer than the recorded schema version.
// Each step runs in its own transaction together with its bookkeeping row.
func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at INTEGER NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("create schema_migrations: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := applyMigration(ctx, db, m); err != nil {
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
	}
	return nil
}

func applyMigration(ctx context.Context, db *sql.DB, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range m.stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, ?)`,
		m.version, m.name, time.Now().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("record version: %w", err)
	}

	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version, 0 for a
// fresh database.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_migrations`).Scan(&v); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// LatestSchemaVersion is the version a fully migrated database reports.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}
