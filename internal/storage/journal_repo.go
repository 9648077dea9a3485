package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// JournalRepo is append-only from the engine's point of view: entries are
// written once and never updated or deleted here.
type JournalRepo struct {
	db *sql.DB
}

func NewJournalRepo(db *sql.DB) *JournalRepo {
	return &JournalRepo{db: db}
}

func (r *JournalRepo) Append(ctx context.Context, body string) (string, error) {
	id := uuid.NewString()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO journal_entries (id, body, created_at)
		VALUES (?, ?, ?)
	`, id, body, time.Now().UTC())
	if err != nil {
		return "", wrapErr("journal append", err)
	}
	return id, nil
}

// ListRecent returns the newest entries first, capped at limit.
func (r *JournalRepo) ListRecent(ctx context.Context, limit int) ([]JournalEntry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, body, created_at
		FROM journal_entries
		ORDER BY created_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, wrapErr("journal list", err)
	}
	defer rows.Close()

	var out []JournalEntry
	for rows.Next() {
		var e JournalEntry
		if err := rows.Scan(&e.ID, &e.Body, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("journal scan: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("journal rows: %w", err)
	}
	return out, nil
}
