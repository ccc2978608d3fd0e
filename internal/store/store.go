// Package store persists problems, attempts, progress and LLM call
// events in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	_ "modernc.org/sqlite"
)

// pragmas run on every new connection, in this order.
var pragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
	"synchronous(NORMAL)",
	"foreign_keys(ON)",
}

// Store is an open database. Repositories share its single connection.
type Store struct {
	db *sql.DB
	sb *entsql.DialectBuilder
}

// Open opens or creates the database file at path and migrates it to the
// latest schema.
func Open(path string) (*Store, error) {
	q := url.Values{"_pragma": pragmas}
	db, err := sql.Open("sqlite", path+"?"+q.Encode())
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite allows one writer; a single connection also keeps
	// transactions and pragmas on the same handle.
	db.SetMaxOpenConns(1)

	if err := migrate(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate %s: %w", path, err)
	}
	return &Store{db: db, sb: entsql.Dialect(dialect.SQLite)}, nil
}

// DB exposes the handle for schema checks.
func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error { return s.db.Close() }

func (s *Store) ProblemRepo() ProblemRepo   { return &problemRepo{db: s.db, sb: s.sb} }
func (s *Store) AttemptRepo() AttemptRepo   { return &attemptRepo{db: s.db, sb: s.sb} }
func (s *Store) ProgressRepo() ProgressRepo { return &progressRepo{db: s.db, sb: s.sb} }
func (s *Store) EventRepo() EventRepo       { return &eventRepo{db: s.db, sb: s.sb} }

// DataDir returns the directory holding the database and the log file:
// $XDG_DATA_HOME/drill, or ~/.local/share/drill when XDG_DATA_HOME is unset.
func DataDir() (string, error) {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "drill"), nil
}

// EnsureDir creates the directory that will hold path.
func EnsureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}
