package engine

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

type CreateTaskInput struct {
	Kind          TaskKind
	Title         map[string]string
	Description   map[string]string
	XPReward      int
	SpecialReward map[string]string
	DueDate       *time.Time // achievements only
}

func (s *Service) CreateTask(ctx context.Context, in CreateTaskInput) (int64, error) {
	if !in.Kind.IsValid() {
		return 0, ValidationError{Field: "kind", Reason: fmt.Sprintf("invalid task kind: %q", in.Kind)}
	}
	if err := s.validateLocalized("title", in.Title); err != nil {
		return 0, err
	}
	if err := s.validateLocalized("description", in.Description); err != nil {
		return 0, err
	}
	if err := validateReward(in.XPReward, in.SpecialReward); err != nil {
		return 0, err
	}
	if in.Kind == TaskKindQuest && in.DueDate != nil {
		return 0, ValidationError{Field: "dueDate", Reason: "quests expire same-day and cannot carry a due date"}
	}

	var id int64
	err := s.retry(ctx, func() error {
		var err error
		id, err = s.tasks.Insert(ctx, storage.TaskInsert{
			Kind:          string(in.Kind),
			Title:         normalizeLocalized(in.Title),
			Description:   normalizeLocalized(in.Description),
			XPReward:      in.XPReward,
			SpecialReward: normalizeLocalized(in.SpecialReward),
			Status:        string(TaskAvailable),
			DueDate:       in.DueDate,
		})
		return err
	})
	if err != nil {
		return 0, err
	}
	return id, nil
}

type UpdateTaskInput struct {
	Title         map[string]string
	Description   map[string]string
	XPReward      *int
	SpecialReward map[string]string
	DueDate       *time.Time
	ClearDueDate  bool
}

func (s *Service) UpdateTask(ctx context.Context, id int64, in UpdateTaskInput) error {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return NotFoundError{Kind: "task", ID: strconv.FormatInt(id, 10)}
	}

	if in.Title != nil {
		if err := s.validateLocalized("title", in.Title); err != nil {
			return err
		}
	}
	if in.Description != nil {
		if err := s.validateLocalized("description", in.Description); err != nil {
			return err
		}
	}

	// The reward invariant must still hold after the patch lands.
	xp := t.XPReward
	if in.XPReward != nil {
		xp = *in.XPReward
	}
	reward := t.SpecialReward
	if in.SpecialReward != nil {
		reward = in.SpecialReward
	}
	if err := validateReward(xp, reward); err != nil {
		return err
	}
	if TaskKind(t.Kind) == TaskKindQuest && in.DueDate != nil {
		return ValidationError{Field: "dueDate", Reason: "quests expire same-day and cannot carry a due date"}
	}

	return s.retry(ctx, func() error {
		return s.tasks.Update(ctx, id, storage.TaskPatch{
			Title:         normalizeLocalized(in.Title),
			Description:   normalizeLocalized(in.Description),
			XPReward:      in.XPReward,
			SpecialReward: normalizeLocalized(in.SpecialReward),
			DueDate:       in.DueDate,
			ClearDueDate:  in.ClearDueDate,
		})
	})
}

// DeleteTask removes the task, its confirmations, and their images. Rows go
// in one transaction; image deletes are best-effort afterwards.
func (s *Service) DeleteTask(ctx context.Context, id int64) error {
	t, err := s.tasks.Get(ctx, id)
	if err != nil {
		return err
	}
	if t == nil {
		return NotFoundError{Kind: "task", ID: strconv.FormatInt(id, 10)}
	}

	confs, err := s.confirmations.ListByTask(ctx, id)
	if err != nil {
		return err
	}

	err = storage.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.confirmations.DeleteByTaskTx(ctx, tx, id); err != nil {
			return err
		}
		return s.tasks.DeleteTx(ctx, tx, id)
	})
	if err != nil {
		return err
	}

	for _, c := range confs {
		if c.ImageRef == nil {
			continue
		}
		if err := s.blobs.Delete(*c.ImageRef); err != nil {
			s.logger.Warn("orphaned image after task delete",
				zap.Int64("task_id", id),
				zap.String("image_ref", *c.ImageRef),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) ListTasks(ctx context.Context) ([]storage.Task, error) {
	return s.tasks.ListAll(ctx)
}

// ListAvailableTasks returns every task without a completion, including
// failed ones: the user may submit again and let the policy re-decide.
func (s *Service) ListAvailableTasks(ctx context.Context) ([]storage.Task, error) {
	return s.tasks.ListAvailable(ctx)
}

func (s *Service) validateLocalized(field string, m map[string]string) error {
	for _, loc := range s.locales {
		if strings.TrimSpace(m[loc]) == "" {
			return ValidationError{Field: field, Reason: fmt.Sprintf("missing %q text", loc)}
		}
	}
	return nil
}

func validateReward(xp int, special map[string]string) error {
	if xp < 0 {
		return ValidationError{Field: "xpReward", Reason: "must be >= 0"}
	}
	if xp == 0 && !hasAnyText(special) {
		return ValidationError{Field: "specialReward", Reason: "required when xpReward is 0"}
	}
	return nil
}

func hasAnyText(m map[string]string) bool {
	for _, v := range m {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}

func normalizeLocalized(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		k = strings.TrimSpace(strings.ToLower(k))
		v = strings.TrimSpace(v)
		if k == "" || v == "" {
			continue
		}
		out[k] = v
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
