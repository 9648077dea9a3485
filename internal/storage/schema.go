package storage

import (
	"context"
	"database/sql"
	"fmt"
)

func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS profile (
			key TEXT PRIMARY KEY,
			level INTEGER DEFAULT 0,
			current_xp INTEGER DEFAULT 0,
			max_xp INTEGER DEFAULT 1000,
			xp_multiplier REAL DEFAULT 1,
			level_grow_rate REAL DEFAULT 0
		);`,
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			kind TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,

			xp_reward INTEGER NOT NULL,
			special_reward TEXT,

			status TEXT DEFAULT 'available',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME,
			due_date DATETIME
		);`,
		// One row per (task, calendar day); the deterministic text id doubles
		// as the idempotency key for same-day resubmissions.
		`CREATE TABLE IF NOT EXISTS confirmations (
			id TEXT PRIMARY KEY,
			task_id INTEGER NOT NULL,
			description TEXT NOT NULL,
			image_ref TEXT,
			status TEXT DEFAULT 'pending',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY(task_id) REFERENCES tasks(id)
		);`,
		`CREATE TABLE IF NOT EXISTS journal_entries (
			id TEXT PRIMARY KEY,
			body TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
		`CREATE INDEX IF NOT EXISTS idx_tasks_status ON tasks(status);`,
		`CREATE INDEX IF NOT EXISTS idx_confirmations_task_id ON confirmations(task_id);`,
		`CREATE INDEX IF NOT EXISTS idx_confirmations_status ON confirmations(status);`,
		`CREATE INDEX IF NOT EXISTS idx_journal_entries_created_at ON journal_entries(created_at);`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	return nil
}
