// Package audit keeps a local, append-only log of tool executions.
package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Record is one dispatched tool call.
type Record struct {
	ID         string
	Tool       string
	Status     string // success, error
	ErrorKind  string
	Message    string
	StatusCode int
	DurationMS int64
	ExecutedAt time.Time
}

// Store persists records in SQLite.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// Open opens (or creates) the database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit db: %w", err)
	}
	s, err := New(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an existing database handle and makes sure the table exists.
func New(db *sql.DB) (*Store, error) {
	s := &Store{db: db}
	if err := s.initTables(); err != nil {
		return nil, fmt.Errorf("failed to initialize tables: %w", err)
	}
	return s, nil
}

func (s *Store) initTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS tool_executions (
		id TEXT PRIMARY KEY,
		tool TEXT NOT NULL,
		status TEXT NOT NULL,
		error_kind TEXT,
		message TEXT,
		status_code INTEGER,
		duration_ms INTEGER,
		executed_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_tool_executions_tool ON tool_executions(tool);
	CREATE INDEX IF NOT EXISTS idx_tool_executions_executed_at ON tool_executions(executed_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record appends one execution. A nil store drops the record.
func (s *Store) Record(ctx context.Context, rec Record) error {
	if s == nil {
		return nil
	}
	if rec.ExecutedAt.IsZero() {
		rec.ExecutedAt = time.Now()
	}

	// go-sqlite3 serializes writers anyway; the lock keeps "database is
	// locked" out of concurrent dispatches.
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO tool_executions (id, tool, status, error_kind, message, status_code, duration_ms, executed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, rec.ID, rec.Tool, rec.Status, rec.ErrorKind, rec.Message, rec.StatusCode, rec.DurationMS, rec.ExecutedAt.UTC())
	return err
}

// Recent returns up to limit records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, tool, status, error_kind, message, status_code, duration_ms, executed_at
		FROM tool_executions
		ORDER BY executed_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec        Record
			errorKind  sql.NullString
			message    sql.NullString
			statusCode sql.NullInt64
			durationMS sql.NullInt64
		)
		if err := rows.Scan(&rec.ID, &rec.Tool, &rec.Status, &errorKind, &message, &statusCode, &durationMS, &rec.ExecutedAt); err != nil {
			return nil, err
		}
		rec.ErrorKind = errorKind.String
		rec.Message = message.String
		rec.StatusCode = int(statusCode.Int64)
		rec.DurationMS = durationMS.Int64
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	return s.db.Close()
}
