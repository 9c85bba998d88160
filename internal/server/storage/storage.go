package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync/atomic"

	"resultboard/internal/server/core"

	"github.com/mattn/go-sqlite3"
)

// queryer is satisfied by both *sql.DB and *sql.Tx
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store handles SQLite operations for games, results, users and sessions.
// A Store returned to a WithinTx callback runs every method inside that transaction.
type Store struct {
	db           *sql.DB
	q            queryer
	inTx         bool
	path         string
	healthStatus *atomic.Bool
}

// NewStore opens the database file at path. Call InitDB to apply migrations.
func NewStore(path string, devMode bool) (*Store, error) {
	// Connection parameters apply to every pooled connection
	dsn := path + "?_foreign_keys=on&_busy_timeout=5000&_txlock=immediate"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL lets readers proceed during a write
	if devMode {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	s := &Store{
		db:           db,
		q:            db,
		path:         path,
		healthStatus: &atomic.Bool{},
	}
	s.healthStatus.Store(true)

	return s, nil
}

// IsHealthy returns true if the last storage operation succeeded
func (s *Store) IsHealthy() bool {
	return s.healthStatus.Load()
}

// Ping checks the connection and refreshes the health flag
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		s.healthStatus.Store(false)
		return fmt.Errorf("ping: %w: %w", core.ErrStoreUnavailable, err)
	}
	s.healthStatus.Store(true)
	return nil
}

// WithinTx runs fn with a Store bound to a single transaction.
// The transaction commits when fn returns nil and rolls back otherwise.
func (s *Store) WithinTx(ctx context.Context, fn func(tx *Store) error) error {
	if s.inTx {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return s.unavailable("begin transaction", err)
	}
	defer tx.Rollback()

	txStore := &Store{
		db:           s.db,
		q:            tx,
		inTx:         true,
		path:         s.path,
		healthStatus: s.healthStatus,
	}
	if err := fn(txStore); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return s.unavailable("commit", err)
	}
	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DeleteDB removes the database file
func (s *Store) DeleteDB() error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	// ☣ DESTRUCTIVE: Removes database file
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete database file: %w", err)
	}

	return nil
}

// unavailable wraps a driver failure and marks the store degraded
func (s *Store) unavailable(op string, err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.healthStatus.Store(false)
	return fmt.Errorf("%s: %w: %w", op, core.ErrStoreUnavailable, err)
}

// isUniqueViolation reports a UNIQUE constraint failure
func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// placeholders returns "?, ?, ?" for n arguments
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
