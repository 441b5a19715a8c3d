package models

import "time"

// ExamSession is a bounded calendar window that owns exam terms and gates
// their valid date range. StartDate and EndDate are date-only values
// (midnight UTC); the range is inclusive on both ends.
type ExamSession struct {
	ID           int64     `json:"id" db:"id"`
	Name         string    `json:"name" db:"name" example:"Winter 2025"`
	AcademicYear string    `json:"academicYear" db:"academic_year" example:"2024/2025"`
	StartDate    time.Time `json:"startDate" db:"start_date"`
	EndDate      time.Time `json:"endDate" db:"end_date"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Contains reports whether date falls within the session bounds, inclusive.
func (s *ExamSession) Contains(date time.Time) bool {
	d := date.Truncate(24 * time.Hour)
	return !d.Before(s.StartDate) && !d.After(s.EndDate)
}
