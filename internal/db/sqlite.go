// Package db provides SQLite storage for the estimate cache and run history.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/javiermolinar/rocinante/internal/scheduler"
)

// SQLite backs the estimator's duration cache and the runner's history log.
type SQLite struct {
	db *sql.DB
}

// New creates a new SQLite store and runs migrations.
func New(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// GetEstimate returns the cached duration for a task hash. The third return
// is false on a cache miss.
func (s *SQLite) GetEstimate(ctx context.Context, key string) (int, bool, bool, error) {
	query := `SELECT minutes, fixed FROM estimates WHERE task_hash = ?`

	var (
		minutes int
		fixed   int
	)
	err := s.db.QueryRowContext(ctx, query, key).Scan(&minutes, &fixed)
	if err == sql.ErrNoRows {
		return 0, false, false, nil
	}
	if err != nil {
		return 0, false, false, fmt.Errorf("querying estimate: %w", err)
	}
	return minutes, fixed != 0, true, nil
}

// PutEstimate stores or refreshes the cached duration for a task hash.
func (s *SQLite) PutEstimate(ctx context.Context, key string, minutes int, fixed bool) error {
	query := `
		INSERT INTO estimates (task_hash, minutes, fixed, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(task_hash) DO UPDATE SET
			minutes = excluded.minutes,
			fixed = excluded.fixed,
			updated_at = excluded.updated_at
	`

	fixedInt := 0
	if fixed {
		fixedInt = 1
	}
	if _, err := s.db.ExecContext(ctx, query, key, minutes, fixedInt, time.Now().Format(time.RFC3339)); err != nil {
		return fmt.Errorf("storing estimate: %w", err)
	}
	return nil
}

// RecordRun appends one completed run to the history log.
func (s *SQLite) RecordRun(ctx context.Context, rec scheduler.RunRecord) error {
	query := `
		INSERT INTO runs (started_at, duration_ms, fetched, rescheduled, placed, skipped, last_error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		rec.Started.Format(time.RFC3339),
		rec.Duration.Milliseconds(),
		rec.Fetched,
		rec.Rescheduled,
		rec.Placed,
		rec.Skipped,
		rec.LastError,
	)
	if err != nil {
		return fmt.Errorf("recording run: %w", err)
	}
	return nil
}

// RecentRuns returns the latest runs, newest first.
func (s *SQLite) RecentRuns(ctx context.Context, limit int) ([]scheduler.RunRecord, error) {
	query := `
		SELECT started_at, duration_ms, fetched, rescheduled, placed, skipped, last_error
		FROM runs
		ORDER BY started_at DESC, id DESC
		LIMIT ?
	`

	rows, err := s.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var recs []scheduler.RunRecord
	for rows.Next() {
		var (
			rec        scheduler.RunRecord
			startedAt  string
			durationMS int64
		)
		if err := rows.Scan(&startedAt, &durationMS, &rec.Fetched, &rec.Rescheduled, &rec.Placed, &rec.Skipped, &rec.LastError); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}

		rec.Started, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parsing started at: %w", err)
		}
		rec.Duration = time.Duration(durationMS) * time.Millisecond
		recs = append(recs, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return recs, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}
