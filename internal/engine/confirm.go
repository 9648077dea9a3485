package engine

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

// SubmitResult reports the outcome of a submission. Warnings carry partial
// failures: the confirmation itself committed, but one of the follow-up
// effects (ledger, journal, task row) did not.
type SubmitResult struct {
	ConfirmationID string
	Status         ConfirmationStatus
	Progression    *ProgressionSummary
	Warnings       []string
}

// SubmitConfirmation records a completion claim for the task. The
// auto-approval policy assigns the initial status; a completed status
// triggers the same side effects as an admin pass.
func (s *Service) SubmitConfirmation(ctx context.Context, taskID int64, description string, imageRef *string) (*SubmitResult, error) {
	task, err := s.tasks.Get(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundError{Kind: "task", ID: strconv.FormatInt(taskID, 10)}
	}
	if TaskStatus(task.Status) == TaskCompleted {
		return nil, InvalidStateError{
			Kind: "task", ID: strconv.FormatInt(taskID, 10),
			State: task.Status, Reason: "already completed",
		}
	}

	now := s.now()
	id := ConfirmationID(s.primaryTitle(task), calendarDate(now, s.loc))

	// At most one live claim per task: a same-day resubmit overwrites via
	// the deterministic id, but a leftover pending claim from an earlier
	// day must be reviewed (or rejected) first.
	if pending, err := s.confirmations.PendingForTask(ctx, taskID); err != nil {
		return nil, err
	} else if pending != nil && pending.ID != id {
		return nil, InvalidStateError{
			Kind: "confirmation", ID: pending.ID,
			State: pending.Status, Reason: "an earlier claim is still awaiting review",
		}
	}

	status := Decide(task, now, s.loc, s.autoApprove)
	conf := storage.Confirmation{
		ID:          id,
		TaskID:      taskID,
		Description: description,
		ImageRef:    imageRef,
		Status:      string(status),
		CreatedAt:   now.UTC(),
	}
	if err := s.retry(ctx, func() error { return s.confirmations.Put(ctx, conf) }); err != nil {
		return nil, err
	}

	res := &SubmitResult{ConfirmationID: id, Status: status}

	switch status {
	case ConfirmationCompleted:
		res.Progression, res.Warnings = s.applyCompletion(ctx, task, id)
	case ConfirmationFailed:
		// Overdue: the claim is kept for audit, the task earns nothing.
		if err := s.tasks.UpdateStatus(ctx, taskID, string(TaskFailed)); err != nil {
			s.logger.Error("task status update failed after overdue submission",
				zap.Int64("task_id", taskID), zap.Error(err))
			res.Warnings = append(res.Warnings, "task status not updated: "+err.Error())
		}
		s.sink.Notify(ctx, "task.failed", map[string]any{
			"task_id":      taskID,
			"confirmation": id,
		})
	default:
		if err := s.tasks.UpdateStatus(ctx, taskID, string(TaskPendingReview)); err != nil {
			s.logger.Error("task status update failed after submission",
				zap.Int64("task_id", taskID), zap.Error(err))
			res.Warnings = append(res.Warnings, "task status not updated: "+err.Error())
		}
		s.sink.Notify(ctx, "confirmation.submitted", map[string]any{
			"task_id":      taskID,
			"confirmation": id,
		})
	}

	return res, nil
}

// ReviewResult mirrors SubmitResult for admin decisions.
type ReviewResult struct {
	TaskID      int64
	Status      ConfirmationStatus
	Progression *ProgressionSummary
	Warnings    []string
}

// ReviewConfirmation resolves a pending claim. Pass converges on the exact
// side effects of auto-approval success and keeps the claim as an audit
// record; reject deletes the claim and its image and frees the task for
// another attempt.
func (s *Service) ReviewConfirmation(ctx context.Context, id string, decision Decision) (*ReviewResult, error) {
	conf, err := s.confirmations.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if conf == nil {
		return nil, NotFoundError{Kind: "confirmation", ID: id}
	}
	if ConfirmationStatus(conf.Status) != ConfirmationPending {
		return nil, InvalidStateError{
			Kind: "confirmation", ID: id,
			State: conf.Status, Reason: "only pending confirmations can be reviewed",
		}
	}

	task, err := s.tasks.Get(ctx, conf.TaskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundError{Kind: "task", ID: strconv.FormatInt(conf.TaskID, 10)}
	}

	res := &ReviewResult{TaskID: conf.TaskID}

	switch decision {
	case DecisionPass:
		if err := s.retry(ctx, func() error {
			return s.confirmations.UpdateStatus(ctx, id, string(ConfirmationCompleted))
		}); err != nil {
			return nil, err
		}
		res.Status = ConfirmationCompleted
		res.Progression, res.Warnings = s.applyCompletion(ctx, task, id)

	case DecisionReject:
		if conf.ImageRef != nil {
			if err := s.blobs.Delete(*conf.ImageRef); err != nil {
				s.logger.Warn("image delete failed on reject",
					zap.String("confirmation", id),
					zap.String("image_ref", *conf.ImageRef),
					zap.Error(err))
				res.Warnings = append(res.Warnings, "image not deleted: "+err.Error())
			}
		}
		if err := s.retry(ctx, func() error { return s.confirmations.Delete(ctx, id) }); err != nil {
			return nil, err
		}
		if err := s.tasks.UpdateStatus(ctx, conf.TaskID, string(TaskAvailable)); err != nil {
			s.logger.Error("task status update failed after reject",
				zap.Int64("task_id", conf.TaskID), zap.Error(err))
			res.Warnings = append(res.Warnings, "task status not updated: "+err.Error())
		}
		res.Status = ConfirmationPending

	default:
		return nil, ValidationError{Field: "decision", Reason: fmt.Sprintf("invalid decision: %q", decision)}
	}

	return res, nil
}

// applyCompletion runs the shared success path: task completedAt, ledger
// XP, journal entry, webhook. The calls are sequenced but independent; a
// failure is logged and carried as a warning, never rolled back. That can
// leave a completed task with no XP granted, which is the documented
// availability-over-atomicity trade-off.
func (s *Service) applyCompletion(ctx context.Context, task *storage.Task, confirmationID string) (*ProgressionSummary, []string) {
	var warnings []string
	title := s.primaryTitle(task)

	if err := s.tasks.MarkCompleted(ctx, task.ID, s.now().UTC()); err != nil {
		s.logger.Error("task completion write failed",
			zap.Int64("task_id", task.ID), zap.Error(err))
		warnings = append(warnings, "task not marked completed: "+err.Error())
	}

	var sum *ProgressionSummary
	if task.XPReward > 0 {
		p, err := s.profiles.GetOrCreateMain(ctx)
		if err == nil {
			updated, advanced := Advance(*p, task.XPReward, s.growMaxXP)
			err = s.retry(ctx, func() error { return s.profiles.Update(ctx, &updated) })
			if err == nil {
				sum = &advanced
			}
		}
		if err != nil {
			s.logger.Error("xp grant failed after completion",
				zap.Int64("task_id", task.ID),
				zap.Int("xp", task.XPReward),
				zap.Error(err))
			warnings = append(warnings, "xp not granted: "+err.Error())
		}
	}

	body := fmt.Sprintf("Completed %q", title)
	if sum != nil {
		body += fmt.Sprintf(" (+%d XP)", sum.EffectiveXP)
		if sum.LeveledUp {
			body += fmt.Sprintf(", reached level %d", sum.NewLevel)
		}
	}
	if hasAnyText(task.SpecialReward) {
		body += fmt.Sprintf(". Reward: %s", firstText(task.SpecialReward, s.locales))
	}
	body += "."
	if _, err := s.journal.Append(ctx, body); err != nil {
		s.logger.Error("journal append failed after completion",
			zap.Int64("task_id", task.ID), zap.Error(err))
		warnings = append(warnings, "journal entry not written: "+err.Error())
	}

	payload := map[string]any{
		"task_id":      task.ID,
		"confirmation": confirmationID,
		"title":        title,
	}
	if sum != nil {
		payload["xp"] = sum.EffectiveXP
		payload["level"] = sum.NewLevel
	}
	s.sink.Notify(ctx, "task.completed", payload)
	if sum != nil && sum.LeveledUp {
		s.sink.Notify(ctx, "profile.levelup", map[string]any{
			"level": sum.NewLevel,
			"from":  sum.OldLevel,
		})
	}

	return sum, warnings
}

func firstText(m map[string]string, locales []string) string {
	for _, loc := range locales {
		if v := m[loc]; v != "" {
			return v
		}
	}
	for _, v := range m {
		if v != "" {
			return v
		}
	}
	return ""
}
