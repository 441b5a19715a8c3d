package scheduling

import (
	"time"

	"github.com/mzajac/examflow/internal/app/models"
)

// BuildHistoryEntry creates one immutable audit record from the term state
// immediately before and after a transition. The date and time fields are
// populated only when the slot actually moved. Returns nil when the change
// carries no semantic difference (same status, same slot) — such a record is
// never written.
func BuildHistoryEntry(before, after *models.ExamTerm, actorID int64, at time.Time, comment *string) *models.ExamTermHistory {
	statusChanged := before.Status != after.Status
	slotChanged := !before.SameSlot(after.Date, after.StartMinute, after.EndMinute)
	if !statusChanged && !slotChanged {
		return nil
	}

	entry := &models.ExamTermHistory{
		ExamTermID:     after.ID,
		ChangedBy:      actorID,
		ChangedAt:      at,
		PreviousStatus: before.Status,
		NewStatus:      after.Status,
		Comment:        comment,
	}

	if slotChanged {
		prevDate, newDate := before.Date, after.Date
		prevStart, newStart := before.StartMinute, after.StartMinute
		prevEnd, newEnd := before.EndMinute, after.EndMinute
		entry.PreviousDate = &prevDate
		entry.NewDate = &newDate
		entry.PreviousStart = &prevStart
		entry.NewStart = &newStart
		entry.PreviousEnd = &prevEnd
		entry.NewEnd = &newEnd
	}

	return entry
}
