package dto

import (
	"time"

	"github.com/mzajac/examflow/internal/app/models"
)

// CreateSessionRequest represents the request to create an exam session.
// Dates use YYYY-MM-DD; the range is inclusive on both ends.
type CreateSessionRequest struct {
	Name         string `json:"name" binding:"required,max=100" example:"Winter 2025"`
	AcademicYear string `json:"academicYear" binding:"required,max=20" example:"2024/2025"`
	StartDate    string `json:"startDate" binding:"required" example:"2025-06-10"`
	EndDate      string `json:"endDate" binding:"required" example:"2025-06-30"`
}

// UpdateSessionRequest represents the request to update an exam session.
// Bounds are frozen once the session owns any terms.
type UpdateSessionRequest struct {
	Name         string `json:"name" binding:"required,max=100"`
	AcademicYear string `json:"academicYear" binding:"required,max=20"`
	StartDate    string `json:"startDate" binding:"required" example:"2025-06-10"`
	EndDate      string `json:"endDate" binding:"required" example:"2025-06-30"`
}

// SessionResponse represents an exam session
type SessionResponse struct {
	ID           int64  `json:"id"`
	Name         string `json:"name"`
	AcademicYear string `json:"academicYear"`
	StartDate    string `json:"startDate" example:"2025-06-10"`
	EndDate      string `json:"endDate" example:"2025-06-30"`
	CreatedAt    string `json:"createdAt"`
}

// SessionListResponse represents a list of exam sessions
type SessionListResponse struct {
	Sessions []SessionResponse `json:"sessions"`
}

// FromExamSession converts a models.ExamSession to a SessionResponse
func FromExamSession(session *models.ExamSession) SessionResponse {
	if session == nil {
		return SessionResponse{}
	}
	return SessionResponse{
		ID:           session.ID,
		Name:         session.Name,
		AcademicYear: session.AcademicYear,
		StartDate:    session.StartDate.Format(dateLayout),
		EndDate:      session.EndDate.Format(dateLayout),
		CreatedAt:    session.CreatedAt.Format(time.RFC3339),
	}
}

// FromExamSessions converts a slice of sessions
func FromExamSessions(sessions []*models.ExamSession) []SessionResponse {
	responses := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, FromExamSession(s))
	}
	return responses
}
