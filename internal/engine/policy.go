package engine

import (
	"time"

	"github.com/lariod12/meosjourney-sub000/internal/storage"
)

// calendarDate truncates t to its calendar day in loc. All overdue checks
// compare days in the fixed reference zone, never wall-clock hours.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// Overdue reports whether a submission made at now can no longer succeed:
// a quest created on an earlier day, or an achievement past its due date.
// An achievement without a due date is never overdue.
func Overdue(task *storage.Task, now time.Time, loc *time.Location) bool {
	today := calendarDate(now, loc)
	switch TaskKind(task.Kind) {
	case TaskKindAchievement:
		if task.DueDate == nil {
			return false
		}
		return calendarDate(*task.DueDate, loc).Before(today)
	default:
		return calendarDate(task.CreatedAt, loc).Before(today)
	}
}

// Decide assigns a confirmation's initial status at submission time. It is
// pure: no I/O, no clock reads, fully reproducible from its arguments.
// Overdue is evaluated only here, at the moment of a new submission; there
// is no background sweep that fails tasks by the mere passage of time.
func Decide(task *storage.Task, now time.Time, loc *time.Location, autoApprove bool) ConfirmationStatus {
	if !autoApprove {
		return ConfirmationPending
	}
	if Overdue(task, now, loc) {
		return ConfirmationFailed
	}
	return ConfirmationCompleted
}
