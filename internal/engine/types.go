package engine

import (
	"fmt"
	"strings"
)

type TaskKind string

const (
	TaskKindQuest       TaskKind = "quest"
	TaskKindAchievement TaskKind = "achievement"
)

func (k TaskKind) IsValid() bool {
	switch k {
	case TaskKindQuest, TaskKindAchievement:
		return true
	default:
		return false
	}
}

func ParseTaskKind(input string) (TaskKind, error) {
	k := TaskKind(strings.TrimSpace(strings.ToLower(input)))
	if !k.IsValid() {
		return "", fmt.Errorf("invalid task kind: %q", input)
	}
	return k, nil
}

// TaskStatus is explicit on the task row, so the UI never has to join
// confirmations back onto tasks to know where a task stands.
type TaskStatus string

const (
	TaskAvailable     TaskStatus = "available"
	TaskPendingReview TaskStatus = "pending_review"
	TaskCompleted     TaskStatus = "completed"
	TaskFailed        TaskStatus = "failed"
)

func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskAvailable, TaskPendingReview, TaskCompleted, TaskFailed:
		return true
	default:
		return false
	}
}

type ConfirmationStatus string

const (
	ConfirmationPending   ConfirmationStatus = "pending"
	ConfirmationCompleted ConfirmationStatus = "completed"
	ConfirmationFailed    ConfirmationStatus = "failed"
)

func (s ConfirmationStatus) IsValid() bool {
	switch s {
	case ConfirmationPending, ConfirmationCompleted, ConfirmationFailed:
		return true
	default:
		return false
	}
}

// Terminal reports whether the status admits no further transition.
// Only pending confirmations can be passed or rejected.
func (s ConfirmationStatus) Terminal() bool {
	return s == ConfirmationCompleted || s == ConfirmationFailed
}

type Decision string

const (
	DecisionPass   Decision = "pass"
	DecisionReject Decision = "reject"
)

func ParseDecision(input string) (Decision, error) {
	d := Decision(strings.TrimSpace(strings.ToLower(input)))
	switch d {
	case DecisionPass, DecisionReject:
		return d, nil
	default:
		return "", fmt.Errorf("invalid decision: %q", input)
	}
}
