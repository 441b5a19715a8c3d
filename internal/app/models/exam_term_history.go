package models

import "time"

// ExamTermHistory is one immutable audit record per accepted term transition,
// based on the 'exam_term_history' table. The Previous*/New* date and time
// fields are populated only when the slot actually moved; a pure status
// change leaves them nil. Records are never edited or removed.
type ExamTermHistory struct {
	ID              int64      `json:"id" db:"id"`
	ExamTermID      int64      `json:"examTermId" db:"exam_term_id"`
	ChangedBy       int64      `json:"changedBy" db:"changed_by"`
	ChangedAt       time.Time  `json:"changedAt" db:"changed_at"`
	PreviousStatus  TermStatus `json:"previousStatus" db:"previous_status"`
	NewStatus       TermStatus `json:"newStatus" db:"new_status"`
	PreviousDate    *time.Time `json:"previousDate,omitempty" db:"previous_date"`
	NewDate         *time.Time `json:"newDate,omitempty" db:"new_date"`
	PreviousStart   *int       `json:"previousStart,omitempty" db:"previous_start"`
	NewStart        *int       `json:"newStart,omitempty" db:"new_start"`
	PreviousEnd     *int       `json:"previousEnd,omitempty" db:"previous_end"`
	NewEnd          *int       `json:"newEnd,omitempty" db:"new_end"`
	Comment         *string    `json:"comment,omitempty" db:"comment"`
}
