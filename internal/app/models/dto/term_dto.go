package dto

import (
	"fmt"
	"time"

	"github.com/mzajac/examflow/internal/app/models"
)

// ProposeTermRequest represents the request to propose a new exam term.
// Date uses YYYY-MM-DD; StartTime and EndTime use HH:MM (24h).
type ProposeTermRequest struct {
	CourseID  int64   `json:"courseId" binding:"required,min=1"`
	SessionID int64   `json:"sessionId" binding:"required,min=1"`
	GroupID   int64   `json:"groupId" binding:"required,min=1"`
	RoomID    *int64  `json:"roomId" binding:"omitempty,min=1"`
	Date      string  `json:"date" binding:"required" example:"2025-06-17"`
	StartTime string  `json:"startTime" binding:"required" example:"10:00"`
	EndTime   string  `json:"endTime" binding:"required" example:"11:30"`
	TermType  string  `json:"termType" binding:"required,oneof=FIRST_ATTEMPT RETAKE COMMISSION"`
	Comment   *string `json:"comment" binding:"omitempty,max=500"`
}

// RescheduleSlot represents the replacement slot of a reschedule decision
type RescheduleSlot struct {
	RoomID    *int64 `json:"roomId" binding:"omitempty,min=1"`
	Date      string `json:"date" binding:"required" example:"2025-06-19"`
	StartTime string `json:"startTime" binding:"required" example:"09:00"`
	EndTime   string `json:"endTime" binding:"required" example:"10:30"`
}

// RespondToProposalRequest represents the counter-party's decision on a
// pending proposal
type RespondToProposalRequest struct {
	Decision string          `json:"decision" binding:"required,oneof=ACCEPT REJECT RESCHEDULE"`
	Reason   *string         `json:"reason" binding:"omitempty,max=500"`
	NewSlot  *RescheduleSlot `json:"newSlot" binding:"omitempty"`
	Comment  *string         `json:"comment" binding:"omitempty,max=500"`
}

// RejectTermRequest represents the request to reject a term
type RejectTermRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// ConflictResponse describes why a term landed in CONFLICT status
type ConflictResponse struct {
	Dimensions string  `json:"dimensions" example:"room,lecturer"`
	TermIDs    []int64 `json:"termIds"`
}

// TermResponse represents an exam term
type TermResponse struct {
	ID              int64   `json:"id"`
	CourseID        int64   `json:"courseId"`
	SessionID       int64   `json:"sessionId"`
	GroupID         int64   `json:"groupId"`
	RoomID          *int64  `json:"roomId,omitempty"`
	CreatedBy       int64   `json:"createdBy"`
	Date            string  `json:"date" example:"2025-06-17"`
	StartTime       string  `json:"startTime" example:"10:00"`
	EndTime         string  `json:"endTime" example:"11:30"`
	TermType        string  `json:"termType"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejectionReason,omitempty"`
	Version         int     `json:"version"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

// TermOutcomeResponse pairs a term with the conflict summary when the
// operation landed it in CONFLICT status
type TermOutcomeResponse struct {
	Term     TermResponse      `json:"term"`
	Conflict *ConflictResponse `json:"conflict,omitempty"`
}

// TermListResponse represents a paginated list of exam terms
type TermListResponse struct {
	Terms      []TermResponse `json:"terms"`
	Pagination PaginationInfo `json:"pagination"`
}

// HistoryEntryResponse represents one audit record of a term
type HistoryEntryResponse struct {
	ID             int64   `json:"id"`
	ExamTermID     int64   `json:"examTermId"`
	ChangedBy      int64   `json:"changedBy"`
	ChangedAt      string  `json:"changedAt"`
	PreviousStatus string  `json:"previousStatus"`
	NewStatus      string  `json:"newStatus"`
	PreviousDate   *string `json:"previousDate,omitempty"`
	NewDate        *string `json:"newDate,omitempty"`
	PreviousStart  *string `json:"previousStart,omitempty"`
	NewStart       *string `json:"newStart,omitempty"`
	PreviousEnd    *string `json:"previousEnd,omitempty"`
	NewEnd         *string `json:"newEnd,omitempty"`
	Comment        *string `json:"comment,omitempty"`
}

// TermHistoryResponse represents a term's full audit trail
type TermHistoryResponse struct {
	TermID  int64                  `json:"termId"`
	Entries []HistoryEntryResponse `json:"entries"`
}

const dateLayout = "2006-01-02"

func formatMinute(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// FromExamTerm converts a models.ExamTerm to a TermResponse
func FromExamTerm(term *models.ExamTerm) TermResponse {
	if term == nil {
		return TermResponse{}
	}
	return TermResponse{
		ID:              term.ID,
		CourseID:        term.CourseID,
		SessionID:       term.SessionID,
		GroupID:         term.GroupID,
		RoomID:          term.RoomID,
		CreatedBy:       term.CreatedBy,
		Date:            term.Date.Format(dateLayout),
		StartTime:       formatMinute(term.StartMinute),
		EndTime:         formatMinute(term.EndMinute),
		TermType:        string(term.TermType),
		Status:          string(term.Status),
		RejectionReason: term.RejectionReason,
		Version:         term.Version,
		CreatedAt:       term.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       term.UpdatedAt.Format(time.RFC3339),
	}
}

// FromExamTerms converts a slice of terms
func FromExamTerms(terms []*models.ExamTerm) []TermResponse {
	responses := make([]TermResponse, 0, len(terms))
	for _, t := range terms {
		responses = append(responses, FromExamTerm(t))
	}
	return responses
}

// FromHistoryEntry converts a models.ExamTermHistory to a HistoryEntryResponse
func FromHistoryEntry(entry *models.ExamTermHistory) HistoryEntryResponse {
	if entry == nil {
		return HistoryEntryResponse{}
	}
	return HistoryEntryResponse{
		ID:             entry.ID,
		ExamTermID:     entry.ExamTermID,
		ChangedBy:      entry.ChangedBy,
		ChangedAt:      entry.ChangedAt.Format(time.RFC3339),
		PreviousStatus: string(entry.PreviousStatus),
		NewStatus:      string(entry.NewStatus),
		PreviousDate:   formatDatePtr(entry.PreviousDate),
		NewDate:        formatDatePtr(entry.NewDate),
		PreviousStart:  formatMinutePtr(entry.PreviousStart),
		NewStart:       formatMinutePtr(entry.NewStart),
		PreviousEnd:    formatMinutePtr(entry.PreviousEnd),
		NewEnd:         formatMinutePtr(entry.NewEnd),
		Comment:        entry.Comment,
	}
}

// FromHistoryEntries converts a term's audit trail
func FromHistoryEntries(termID int64, entries []*models.ExamTermHistory) TermHistoryResponse {
	out := make([]HistoryEntryResponse, 0, len(entries))
	for _, e := range entries {
		out = append(out, FromHistoryEntry(e))
	}
	return TermHistoryResponse{TermID: termID, Entries: out}
}

func formatDatePtr(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatMinutePtr(m *int) *string {
	if m == nil {
		return nil
	}
	s := formatMinute(*m)
	return &s
}
