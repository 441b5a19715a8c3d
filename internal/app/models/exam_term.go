package models

import "time"

// ExamTerm is a scheduled or proposed exam slot based on the 'exam_terms'
// table. Date is date-only; StartMinute and EndMinute are minutes since
// midnight, so the occupied interval on Date is [StartMinute, EndMinute).
// Version is an optimistic-lock counter bumped on every accepted transition.
type ExamTerm struct {
	ID              int64      `json:"id" db:"id"`
	CourseID        int64      `json:"courseId" db:"course_id"`
	SessionID       int64      `json:"sessionId" db:"session_id"`
	GroupID         int64      `json:"groupId" db:"group_id"`
	RoomID          *int64     `json:"roomId,omitempty" db:"room_id"` // nil = no room assigned yet
	CreatedBy       int64      `json:"createdBy" db:"created_by"`
	Date            time.Time  `json:"date" db:"date"`
	StartMinute     int        `json:"startMinute" db:"start_minute"`
	EndMinute       int        `json:"endMinute" db:"end_minute"`
	TermType        TermType   `json:"termType" db:"term_type"`
	Status          TermStatus `json:"status" db:"status"`
	RejectionReason *string    `json:"rejectionReason,omitempty" db:"rejection_reason"`
	Version         int        `json:"version" db:"version"`
	CreatedAt       time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt       time.Time  `json:"updatedAt" db:"updated_at"`
}

// SameSlot reports whether other occupies exactly the same date and time
// window as t. Used for idempotency checks on replayed requests.
func (t *ExamTerm) SameSlot(date time.Time, startMinute, endMinute int) bool {
	return t.Date.Equal(date) && t.StartMinute == startMinute && t.EndMinute == endMinute
}
