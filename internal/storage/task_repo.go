package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

type TaskRepo struct {
	db *sql.DB
}

func NewTaskRepo(db *sql.DB) *TaskRepo {
	return &TaskRepo{db: db}
}

type TaskInsert struct {
	Kind          string
	Title         map[string]string
	Description   map[string]string
	XPReward      int
	SpecialReward map[string]string
	Status        string
	DueDate       *time.Time
}

const taskColumns = `id, kind, title, description, xp_reward, special_reward, status, created_at, completed_at, due_date`

func (r *TaskRepo) Insert(ctx context.Context, in TaskInsert) (int64, error) {
	title, err := marshalLocalized(in.Title)
	if err != nil {
		return 0, fmt.Errorf("marshal title: %w", err)
	}
	desc, err := marshalLocalized(in.Description)
	if err != nil {
		return 0, fmt.Errorf("marshal description: %w", err)
	}
	reward, err := marshalLocalized(in.SpecialReward)
	if err != nil {
		return 0, fmt.Errorf("marshal special reward: %w", err)
	}

	res, err := r.db.ExecContext(ctx, `
		INSERT INTO tasks (kind, title, description, xp_reward, special_reward, status, due_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, in.Kind, title, desc, in.XPReward, reward, in.Status, in.DueDate)
	if err != nil {
		return 0, wrapErr("task insert", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("task last insert id: %w", err)
	}
	return id, nil
}

func (r *TaskRepo) Get(ctx context.Context, id int64) (*Task, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+taskColumns+` FROM tasks WHERE id = ?`, id)
	return scanTaskRow(row)
}

func (r *TaskRepo) ListAll(ctx context.Context) ([]Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks ORDER BY id ASC`)
}

// ListAvailable returns tasks with no completion yet: failed tasks stay
// listed so the user can try again (the policy decides whether that try
// can still succeed).
func (r *TaskRepo) ListAvailable(ctx context.Context) ([]Task, error) {
	return r.list(ctx, `SELECT `+taskColumns+` FROM tasks WHERE completed_at IS NULL ORDER BY id ASC`)
}

func (r *TaskRepo) list(ctx context.Context, query string, args ...any) ([]Task, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, wrapErr("task list", err)
	}
	defer rows.Close()

	var out []Task
	for rows.Next() {
		t, err := scanTaskRow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("task list rows: %w", err)
	}
	return out, nil
}

type TaskPatch struct {
	Title         map[string]string
	Description   map[string]string
	XPReward      *int
	SpecialReward map[string]string
	DueDate       *time.Time
	ClearDueDate  bool
}

func (r *TaskRepo) Update(ctx context.Context, id int64, patch TaskPatch) error {
	set := []string{}
	args := []any{}

	if patch.Title != nil {
		v, err := marshalLocalized(patch.Title)
		if err != nil {
			return fmt.Errorf("marshal title: %w", err)
		}
		set = append(set, "title = ?")
		args = append(args, v)
	}
	if patch.Description != nil {
		v, err := marshalLocalized(patch.Description)
		if err != nil {
			return fmt.Errorf("marshal description: %w", err)
		}
		set = append(set, "description = ?")
		args = append(args, v)
	}
	if patch.XPReward != nil {
		set = append(set, "xp_reward = ?")
		args = append(args, *patch.XPReward)
	}
	if patch.SpecialReward != nil {
		v, err := marshalLocalized(patch.SpecialReward)
		if err != nil {
			return fmt.Errorf("marshal special reward: %w", err)
		}
		set = append(set, "special_reward = ?")
		args = append(args, v)
	}
	if patch.ClearDueDate {
		set = append(set, "due_date = NULL")
	} else if patch.DueDate != nil {
		set = append(set, "due_date = ?")
		args = append(args, *patch.DueDate)
	}
	if len(set) == 0 {
		return nil
	}

	args = append(args, id)
	query := "UPDATE tasks SET "
	for i, s := range set {
		if i > 0 {
			query += ", "
		}
		query += s
	}
	query += " WHERE id = ?"

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return wrapErr("task update", err)
	}
	return nil
}

func (r *TaskRepo) UpdateStatus(ctx context.Context, id int64, status string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE tasks SET status = ? WHERE id = ?`, status, id)
	if err != nil {
		return wrapErr("task update status", err)
	}
	return nil
}

func (r *TaskRepo) MarkCompleted(ctx context.Context, id int64, completedAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE tasks SET status = 'completed', completed_at = ? WHERE id = ?
	`, completedAt, id)
	if err != nil {
		return wrapErr("task mark completed", err)
	}
	return nil
}

// DeleteTx removes the task row inside an open transaction so the cascade
// (confirmations first, then the task) commits atomically.
func (r *TaskRepo) DeleteTx(ctx context.Context, tx *sql.Tx, id int64) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id); err != nil {
		return wrapErr("task delete", err)
	}
	return nil
}

func marshalLocalized(m map[string]string) (*string, error) {
	if len(m) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	s := string(data)
	return &s, nil
}

func unmarshalLocalized(raw sql.NullString) (map[string]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var m map[string]string
	if err := json.Unmarshal([]byte(raw.String), &m); err != nil {
		return nil, err
	}
	return m, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskRow(row scanner) (*Task, error) {
	var (
		id          int64
		kind        string
		titleRaw    sql.NullString
		descRaw     sql.NullString
		xpReward    int
		rewardRaw   sql.NullString
		status      string
		createdAt   time.Time
		completedAt sql.NullTime
		dueDate     sql.NullTime
	)

	if err := row.Scan(
		&id, &kind, &titleRaw, &descRaw, &xpReward, &rewardRaw,
		&status, &createdAt, &completedAt, &dueDate,
	); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("task scan: %w", err)
	}

	title, err := unmarshalLocalized(titleRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal title: %w", err)
	}
	desc, err := unmarshalLocalized(descRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal description: %w", err)
	}
	reward, err := unmarshalLocalized(rewardRaw)
	if err != nil {
		return nil, fmt.Errorf("unmarshal special reward: %w", err)
	}

	var comp *time.Time
	if completedAt.Valid {
		v := completedAt.Time
		comp = &v
	}
	var due *time.Time
	if dueDate.Valid {
		v := dueDate.Time
		due = &v
	}

	return &Task{
		ID:            id,
		Kind:          kind,
		Title:         title,
		Description:   desc,
		XPReward:      xpReward,
		SpecialReward: reward,
		Status:        status,
		CreatedAt:     createdAt,
		CompletedAt:   comp,
		DueDate:       due,
	}, nil
}
