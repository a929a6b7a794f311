// Package sqlite persists pipeline state in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3" // sqlite driver

	"github.com/fairyhunter13/ai-job-hunter/internal/domain"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx, so the
// same query code serves both direct and transactional access.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements domain.Store against SQLite.
type Store struct {
	db *sql.DB // nil inside a transaction
	q  querier
}

// Open opens (or creates) the database at path with WAL and foreign keys on.
// SQLite serializes writers; a busy timeout keeps concurrent scorer writes
// from failing immediately.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("op=store.open: %w", err)
	}
	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("op=store.open: %w", err)
	}
	return &Store{db: db, q: db}, nil
}

// OpenMemory opens a private in-memory database, used by tests.
func OpenMemory() (*Store, error) {
	db, err := sql.Open("sqlite3", "file::memory:?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("op=store.open_memory: %w", err)
	}
	// A single connection keeps the in-memory database alive and visible.
	db.SetMaxOpenConns(1)
	return &Store{db: db, q: db}, nil
}

// Init creates the schema. Idempotent.
func (s *Store) Init(ctx domain.Context) error {
	if _, err := s.q.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("op=store.init: %w", err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Transaction runs fn atomically. Nested calls run fn against the enclosing
// transaction rather than opening a new one.
func (s *Store) Transaction(ctx domain.Context, fn func(domain.Store) error) error {
	if s.db == nil {
		return fn(s)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("op=store.tx_begin: %w", err)
	}
	txStore := &Store{q: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("op=store.tx_commit: %w", err)
	}
	return nil
}

// mapSQLiteErr converts driver errors to domain sentinels.
func mapSQLiteErr(op string, err error) error {
	if err == nil {
		return nil
	}
	if err == sql.ErrNoRows {
		return fmt.Errorf("op=%s: %w", op, domain.ErrNotFound)
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("op=%s: %w: %v", op, domain.ErrDuplicate, err)
	case strings.Contains(msg, "CHECK constraint failed"),
		strings.Contains(msg, "FOREIGN KEY constraint failed"),
		strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("op=%s: %w: %v", op, domain.ErrIntegrity, err)
	}
	return fmt.Errorf("op=%s: %w", op, err)
}

func nullStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}
