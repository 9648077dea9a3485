package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

type ConfirmationRepo struct {
	db *sql.DB
}

func NewConfirmationRepo(db *sql.DB) *ConfirmationRepo {
	return &ConfirmationRepo{db: db}
}

// Put inserts or overwrites by id. The deterministic id makes a same-day
// resubmission replace the earlier claim instead of stacking a second one.
func (r *ConfirmationRepo) Put(ctx context.Context, c Confirmation) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO confirmations (id, task_id, description, image_ref, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			task_id = excluded.task_id,
			description = excluded.description,
			image_ref = excluded.image_ref,
			status = excluded.status,
			created_at = excluded.created_at
	`, c.ID, c.TaskID, c.Description, c.ImageRef, c.Status, c.CreatedAt)
	if err != nil {
		return wrapErr("confirmation put", err)
	}
	return nil
}

func (r *ConfirmationRepo) Get(ctx context.Context, id string) (*Confirmation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, task_id, description, image_ref, status, created_at
		FROM confirmations
		WHERE id = ?
	`, id)
	return scanConfirmationRow(row)
}

func (r *ConfirmationRepo) UpdateStatus(ctx context.Context, id string, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE confirmations SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return wrapErr("confirmation update status", err)
	}
	return nil
}

func (r *ConfirmationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM confirmations WHERE id = ?`, id)
	if err != nil {
		return wrapErr("confirmation delete", err)
	}
	return nil
}

func (r *ConfirmationRepo) ListByTask(ctx context.Context, taskID int64) ([]Confirmation, error) {
	return r.list(ctx, `
		SELECT id, task_id, description, image_ref, status, created_at
		FROM confirmations
		WHERE task_id = ?
		ORDER BY created_at ASC
	`, taskID)
}

func (r *ConfirmationRepo) ListByStatus(ctx context.Context, status string) ([]Confirmation, error) {
	return r.list(ctx, `
		SELECT id, task_id, description, image_ref, status, created_at
		FROM confirmations
		WHERE status = ?
		ORDER BY created_at ASC
	`, status)
}

// PendingForTask returns the live pending claim for a task, nil when none.
func (r *ConfirmationRepo) PendingForTask(ctx context.Context, taskID int64) (*Confirmation, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, task_id, description, image_ref, status, created_at
		FROM confirmations
		WHERE task_id = ? AND status = 'pending'
		ORDER BY created_at DESC
		LIMIT 1
	`, taskID)
	return scanConfirmationRow(row)
}

// DeleteByTaskTx removes every confirmation for a task inside an open
// transaction; used by the catalog's cascade delete.
func (r *ConfirmationRepo) DeleteByTaskTx(ctx context.Context, tx *sql.Tx, taskID int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM confirmations WHERE task_id = ?`, taskID); err != nil {
		return wrapErr("confirmation delete by task", err)
	}
	return nil
}

func (r *ConfirmationRepo) list(ctx context.Context, query string, args ...any) ([]Confirmation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("confirmation list", err)
	}
	defer rows.Close()

	var out []Confirmation
	for rows.Next() {
		c, err := scanConfirmationRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("confirmation list rows: %w", err)
	}
	return out, nil
}

func scanConfirmationRow(row scanner) (*Confirmation, error) {
	var (
		id        string
		taskID    int64
		desc      string
		imageRef  sql.NullString
		status    string
		createdAt time.Time
	)

	if err := row.Scan(&id, &taskID, &desc, &imageRef, &status, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("confirmation scan: %w", err)
	}

	var ref *string
	if imageRef.Valid {
		v := imageRef.String
		ref = &v
	}

	return &Confirmation{
		ID:          id,
		TaskID:      taskID,
		Description: desc,
		ImageRef:    ref,
		Status:      status,
		CreatedAt:   createdAt,
	}, nil
}
