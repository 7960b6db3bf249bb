package db

import "fmt"

// migrate runs database migrations.
func (s *SQLite) migrate() error {
	query := `
		CREATE TABLE IF NOT EXISTS estimates (
			task_hash  TEXT PRIMARY KEY,
			minutes    INTEGER NOT NULL,
			fixed      INTEGER NOT NULL DEFAULT 0,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  DATETIME NOT NULL,
			duration_ms INTEGER NOT NULL,
			fetched     INTEGER NOT NULL,
			rescheduled INTEGER NOT NULL,
			placed      INTEGER NOT NULL,
			skipped     INTEGER NOT NULL,
			last_error  TEXT
		);

		CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	`

	if _, err := s.db.Exec(query); err != nil {
		return fmt.Errorf("creating tables: %w", err)
	}

	return nil
}
