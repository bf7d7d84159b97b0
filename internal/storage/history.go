// Package storage persists finished agent runs in a local SQLite database.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/Cyclone1070/vics/internal/provider"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned by Get when no run matches the id.
var ErrNotFound = errors.New("run not found")

// AmbiguousIDError is returned by Get when an id prefix matches several runs.
type AmbiguousIDError struct {
	Prefix string
}

func (e *AmbiguousIDError) Error() string {
	return fmt.Sprintf("id prefix %q matches more than one run", e.Prefix)
}

// Record is one finished run of a session. Chat sessions produce one record per task.
type Record struct {
	ID         string
	SessionID  string
	Task       string
	Provider   string
	Model      string
	Workspace  string
	State      string
	Reason     string
	Text       string
	Iterations int
	Transcript []provider.Message
	StartedAt  time.Time
	FinishedAt time.Time
}

// Summary is a Record without its transcript, for listing.
type Summary struct {
	ID         string
	SessionID  string
	Task       string
	Provider   string
	Model      string
	State      string
	Iterations int
	StartedAt  time.Time
}

// HistoryStore reads and writes run records.
type HistoryStore struct {
	db *sql.DB
}

// OpenHistory opens (and creates if needed) the database at path.
func OpenHistory(path string) (*HistoryStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection serialises writers
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &HistoryStore{db: db}
	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return store, nil
}

func (s *HistoryStore) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		session_id TEXT NOT NULL,
		task TEXT NOT NULL,
		provider TEXT NOT NULL,
		model TEXT NOT NULL,
		workspace TEXT NOT NULL DEFAULT '',
		state TEXT NOT NULL,
		reason TEXT NOT NULL DEFAULT '',
		text TEXT NOT NULL DEFAULT '',
		iterations INTEGER NOT NULL,
		transcript TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		finished_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_session ON runs(session_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close releases the database.
func (s *HistoryStore) Close() error {
	return s.db.Close()
}

// Save inserts rec, assigning an id when it has none.
func (s *HistoryStore) Save(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	transcript, err := json.Marshal(rec.Transcript)
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, session_id, task, provider, model, workspace, state, reason, text,
			iterations, transcript, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.SessionID, rec.Task, rec.Provider, rec.Model, rec.Workspace, rec.State, rec.Reason, rec.Text,
		rec.Iterations, string(transcript), rec.StartedAt.UnixMilli(), rec.FinishedAt.UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("failed to save run %s: %w", rec.ID, err)
	}
	return nil
}

// List returns up to limit runs, newest first. A non-positive limit returns all.
func (s *HistoryStore) List(ctx context.Context, limit int) ([]Summary, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, task, provider, model, state, iterations, started_at
		FROM runs ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sum Summary
		var started int64
		if err := rows.Scan(&sum.ID, &sum.SessionID, &sum.Task, &sum.Provider, &sum.Model,
			&sum.State, &sum.Iterations, &started); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		sum.StartedAt = time.UnixMilli(started)
		out = append(out, sum)
	}
	return out, rows.Err()
}

// Get returns the run whose id equals or uniquely starts with id.
func (s *HistoryStore) Get(ctx context.Context, id string) (*Record, error) {
	if id == "" {
		return nil, ErrNotFound
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, task, provider, model, workspace, state, reason, text,
			iterations, transcript, started_at, finished_at
		FROM runs WHERE id = ? OR substr(id, 1, ?) = ? ORDER BY id = ? DESC LIMIT 2`,
		id, len(id), id, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	defer rows.Close()

	var found []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		found = append(found, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(found) == 0:
		return nil, ErrNotFound
	case found[0].ID == id, len(found) == 1:
		return found[0], nil
	default:
		return nil, &AmbiguousIDError{Prefix: id}
	}
}

func scanRecord(rows *sql.Rows) (*Record, error) {
	var rec Record
	var transcript string
	var started, finished int64
	if err := rows.Scan(&rec.ID, &rec.SessionID, &rec.Task, &rec.Provider, &rec.Model, &rec.Workspace,
		&rec.State, &rec.Reason, &rec.Text, &rec.Iterations, &transcript, &started, &finished); err != nil {
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}
	if err := json.Unmarshal([]byte(transcript), &rec.Transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript of %s: %w", rec.ID, err)
	}
	rec.StartedAt = time.UnixMilli(started)
	rec.FinishedAt = time.UnixMilli(finished)
	return &rec, nil
}
