package schedule

import (
	"time"

	"github.com/gardenkeep/gardenkeep-go/internal/model"
)

// Suppression windows in days per recurrence type. A task actioned more
// recently than its window stays hidden until the window elapses.
const (
	suppressOnce        = 30
	suppressWeekly      = 7
	suppressFortnightly = 14
	suppressMonthly     = 28
	suppressDefault     = 14 // Unrecognized recurrence types
)

// suppressionDays returns the suppression window for a recurrence type.
func suppressionDays(recurrence model.RecurrenceType) int {
	switch recurrence {
	case model.OncePerWindow:
		return suppressOnce
	case model.WeeklyInWindow:
		return suppressWeekly
	case model.FortnightlyInWindow:
		return suppressFortnightly
	case model.MonthlyInWindow:
		return suppressMonthly
	default:
		return suppressDefault
	}
}

// IsSuppressed reports whether a task should be hidden given its most
// recent action record. A nil record never suppresses.
//
// A snoozed record suppresses only while refTime is before the snooze
// deadline; once past, the task reactivates immediately regardless of the
// recurrence window that would otherwise apply from the record's creation
// time. Done and skipped records suppress for the recurrence window.
func IsSuppressed(task *model.CareTask, last *model.ActionRecord, refTime time.Time) bool {
	if last == nil {
		return false
	}

	if last.Action == model.ActionSnoozed {
		return last.SnoozeUntil != nil && refTime.Before(*last.SnoozeUntil)
	}

	daysSince := int(refTime.Sub(last.CreatedAt).Hours() / 24)
	return daysSince < suppressionDays(task.Recurrence)
}
