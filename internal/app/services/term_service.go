package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/scheduling"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
	"github.com/mzajac/examflow/internal/pkg/logger"
)

// TermStore is the persistence surface the engine needs for exam terms.
type TermStore interface {
	Create(ctx context.Context, term *models.ExamTerm) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.ExamTerm, error)
	ListBySession(ctx context.Context, sessionID int64, status *models.TermStatus, offset uint64, limit int) ([]*models.ExamTerm, error)
	CountBySession(ctx context.Context, sessionID int64, status *models.TermStatus) (int64, error)
	ListActiveSlots(ctx context.Context, sessionID int64) ([]scheduling.TermSlot, error)
	Update(ctx context.Context, term *models.ExamTerm, expectedVersion int) error
}

// SessionStore looks up and locks exam sessions.
type SessionStore interface {
	GetByID(ctx context.Context, id int64) (*models.ExamSession, error)
	LockForScheduling(ctx context.Context, id int64) error
}

// HistoryStore appends and reads the audit trail.
type HistoryStore interface {
	Append(ctx context.Context, entry *models.ExamTermHistory) (int64, error)
	ListByTerm(ctx context.Context, termID int64) ([]*models.ExamTermHistory, error)
}

// CourseStore resolves the lecturer collision key of a term's course.
type CourseStore interface {
	GetByID(ctx context.Context, id int64) (*models.Course, error)
}

// RoomStore verifies referenced rooms exist.
type RoomStore interface {
	GetByID(ctx context.Context, id int64) (*models.Room, error)
}

// Authorizer verifies the actor's relationship proof for a course/group pair.
type Authorizer interface {
	AssertCanActFor(ctx context.Context, actor models.Actor, courseID, groupID int64) error
}

// TxRunner runs a function within one all-or-nothing commit.
type TxRunner interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ProposeTermInput is a candidate exam slot.
type ProposeTermInput struct {
	CourseID    int64
	SessionID   int64
	GroupID     int64
	RoomID      *int64
	Date        time.Time
	StartMinute int
	EndMinute   int
	TermType    models.TermType
	Comment     *string
}

// SlotInput is the replacement slot of a reschedule decision.
type SlotInput struct {
	RoomID      *int64
	Date        time.Time
	StartMinute int
	EndMinute   int
}

// DecisionType enumerates the counter-party's possible responses.
type DecisionType string

const (
	DecisionAccept     DecisionType = "ACCEPT"
	DecisionReject     DecisionType = "REJECT"
	DecisionReschedule DecisionType = "RESCHEDULE"
)

// Decision is the counter-party's response to a pending proposal.
type Decision struct {
	Type    DecisionType
	Reason  *string    // required for REJECT
	NewSlot *SlotInput // required for RESCHEDULE
	Comment *string
}

// ConflictInfo describes a conflict outcome: the combination of matching
// dimensions and the ids of the terms collided with.
type ConflictInfo struct {
	Dimensions string  `json:"dimensions"`
	TermIDs    []int64 `json:"termIds"`
}

// TermOutcome is the result of a scheduling operation. Conflict is non-nil
// when the operation landed the term in CONFLICT status; that is a committed,
// valid outcome, not an error.
type TermOutcome struct {
	Term     *models.ExamTerm
	Conflict *ConflictInfo
}

// TermService is the scheduling and approval engine for exam terms.
type TermService interface {
	ProposeTerm(ctx context.Context, input ProposeTermInput, actor models.Actor) (*TermOutcome, error)
	RespondToProposal(ctx context.Context, termID int64, actor models.Actor, decision Decision) (*TermOutcome, error)
	Finalize(ctx context.Context, termID int64, actor models.Actor) (*models.ExamTerm, error)
	Reject(ctx context.Context, termID int64, actor models.Actor, reason string) (*models.ExamTerm, error)
	GetTerm(ctx context.Context, termID int64) (*models.ExamTerm, error)
	ListTerms(ctx context.Context, sessionID int64, status *models.TermStatus, page, size int) ([]*models.ExamTerm, int64, error)
	GetHistory(ctx context.Context, termID int64) ([]*models.ExamTermHistory, error)
}

// termServiceImpl implements the TermService interface
type termServiceImpl struct {
	terms     TermStore
	sessions  SessionStore
	history   HistoryStore
	courses   CourseStore
	rooms     RoomStore
	authz     Authorizer
	tx        TxRunner
	validator *scheduling.Validator
	now       func() time.Time
}

// NewTermService creates a new term service instance. now is injectable for
// tests and defaults to time.Now.
func NewTermService(
	terms TermStore,
	sessions SessionStore,
	history HistoryStore,
	courses CourseStore,
	rooms RoomStore,
	authz Authorizer,
	tx TxRunner,
	validator *scheduling.Validator,
	now func() time.Time,
) TermService {
	if now == nil {
		now = time.Now
	}
	return &termServiceImpl{
		terms:     terms,
		sessions:  sessions,
		history:   history,
		courses:   courses,
		rooms:     rooms,
		authz:     authz,
		tx:        tx,
		validator: validator,
		now:       now,
	}
}

// ProposeTerm validates a candidate slot and creates the term in the status
// the state machine assigns: the role's proposal status, or CONFLICT when the
// slot already overlaps an approved or finalized term. Nothing is persisted
// when validation fails.
func (s *termServiceImpl) ProposeTerm(ctx context.Context, input ProposeTermInput, actor models.Actor) (*TermOutcome, error) {
	if err := s.authz.AssertCanActFor(ctx, actor, input.CourseID, input.GroupID); err != nil {
		return nil, err
	}

	course, err := s.courses.GetByID(ctx, input.CourseID)
	if err != nil {
		return nil, err
	}
	if input.RoomID != nil {
		if _, err := s.rooms.GetByID(ctx, *input.RoomID); err != nil {
			return nil, err
		}
	}

	session, err := s.sessions.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, err
	}

	candidate := scheduling.TermSlot{
		Date:       input.Date,
		StartMin:   input.StartMinute,
		EndMin:     input.EndMinute,
		RoomID:     input.RoomID,
		GroupID:    input.GroupID,
		LecturerID: course.LecturerID,
	}

	if violated := s.validator.Validate(candidate, session); len(violated) > 0 {
		return nil, apperrors.NewValidationError(scheduling.RuleIdentifiers(violated))
	}

	var outcome *TermOutcome
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.LockForScheduling(ctx, input.SessionID); err != nil {
			return err
		}

		siblings, err := s.terms.ListActiveSlots(ctx, input.SessionID)
		if err != nil {
			return err
		}
		conflicts := scheduling.DetectConflicts(candidate, siblings)

		// At proposal time only confirmed bookings block the slot; two
		// pending proposals may coexist until one side accepts.
		blocking := filterConfirmed(conflicts)

		status, err := scheduling.Decide(models.StatusDraft, actor.Role, scheduling.ActionPropose, len(blocking) > 0)
		if err != nil {
			return err
		}

		now := s.now()
		term := &models.ExamTerm{
			CourseID:    input.CourseID,
			SessionID:   input.SessionID,
			GroupID:     input.GroupID,
			RoomID:      input.RoomID,
			CreatedBy:   actor.ID,
			Date:        input.Date,
			StartMinute: input.StartMinute,
			EndMinute:   input.EndMinute,
			TermType:    input.TermType,
			Status:      status,
			Version:     1,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		id, err := s.terms.Create(ctx, term)
		if err != nil {
			return err
		}
		term.ID = id

		before := *term
		before.Status = models.StatusDraft
		comment := input.Comment
		var info *ConflictInfo
		if status == models.StatusConflict {
			info = conflictInfo(blocking)
			comment = conflictComment(info, input.Comment)
		}
		if entry := scheduling.BuildHistoryEntry(&before, term, actor.ID, now, comment); entry != nil {
			if _, err := s.history.Append(ctx, entry); err != nil {
				return err
			}
		}

		outcome = &TermOutcome{Term: term, Conflict: info}
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("termID", outcome.Term.ID).Str("status", string(outcome.Term.Status)).
		Int64("actorID", actor.ID).Msg("Exam term proposed")
	return outcome, nil
}

// RespondToProposal applies the counter-party's decision to a pending
// proposal. Accept lands in APPROVED unless the detector reports an overlap
// with a confirmed sibling, in which case the term lands in CONFLICT.
// Reschedule mirrors the original proposal step with the replacement slot.
func (s *termServiceImpl) RespondToProposal(ctx context.Context, termID int64, actor models.Actor, decision Decision) (*TermOutcome, error) {
	term, err := s.terms.GetByID(ctx, termID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertCanActFor(ctx, actor, term.CourseID, term.GroupID); err != nil {
		return nil, err
	}

	switch decision.Type {
	case DecisionAccept, DecisionReschedule:
	case DecisionReject:
		if decision.Reason == nil || strings.TrimSpace(*decision.Reason) == "" {
			return nil, apperrors.ErrRejectionReasonRequired
		}
		rejected, err := s.Reject(ctx, termID, actor, *decision.Reason)
		if err != nil {
			return nil, err
		}
		return &TermOutcome{Term: rejected}, nil
	default:
		return nil, apperrors.NewBadRequestError(fmt.Sprintf("unknown decision type %q", decision.Type))
	}

	course, err := s.courses.GetByID(ctx, term.CourseID)
	if err != nil {
		return nil, err
	}

	var outcome *TermOutcome
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.LockForScheduling(ctx, term.SessionID); err != nil {
			return err
		}

		// Reload under the session lock; the snapshot read outside may be stale.
		current, err := s.terms.GetByID(ctx, termID)
		if err != nil {
			return err
		}

		switch decision.Type {
		case DecisionAccept:
			outcome, err = s.accept(ctx, current, course, actor, decision.Comment)
		case DecisionReschedule:
			outcome, err = s.reschedule(ctx, current, course, actor, decision)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("termID", termID).Str("decision", string(decision.Type)).
		Str("status", string(outcome.Term.Status)).Int64("actorID", actor.ID).
		Msg("Proposal response applied")
	return outcome, nil
}

// accept runs inside the session-locked transaction.
func (s *termServiceImpl) accept(ctx context.Context, term *models.ExamTerm, course *models.Course, actor models.Actor, comment *string) (*TermOutcome, error) {
	// Replay tolerance: accepting an already approved term changes nothing.
	if term.Status == models.StatusApproved {
		return &TermOutcome{Term: term}, nil
	}

	siblings, err := s.terms.ListActiveSlots(ctx, term.SessionID)
	if err != nil {
		return nil, err
	}
	candidate := slotOf(term, course.LecturerID)
	conflicts := scheduling.DetectConflicts(candidate, siblings)

	// Acceptance, like proposal, is blocked only by confirmed bookings: of
	// two overlapping pending proposals, the first one accepted wins the
	// slot and the other collides with it afterwards.
	blocking := filterConfirmed(conflicts)

	status, err := scheduling.Decide(term.Status, actor.Role, scheduling.ActionAccept, len(blocking) > 0)
	if err != nil {
		return nil, err
	}

	updated := *term
	updated.Status = status

	var info *ConflictInfo
	if status == models.StatusConflict {
		info = conflictInfo(blocking)
		comment = conflictComment(info, comment)
	}

	if err := s.commitTransition(ctx, term, &updated, actor, comment); err != nil {
		return nil, err
	}
	return &TermOutcome{Term: &updated, Conflict: info}, nil
}

// reschedule runs inside the session-locked transaction.
func (s *termServiceImpl) reschedule(ctx context.Context, term *models.ExamTerm, course *models.Course, actor models.Actor, decision Decision) (*TermOutcome, error) {
	if decision.NewSlot == nil {
		return nil, apperrors.NewBadRequestError("reschedule requires a new slot")
	}
	slot := decision.NewSlot

	if slot.RoomID != nil {
		if _, err := s.rooms.GetByID(ctx, *slot.RoomID); err != nil {
			return nil, err
		}
	}

	session, err := s.sessions.GetByID(ctx, term.SessionID)
	if err != nil {
		return nil, err
	}

	candidate := scheduling.TermSlot{
		TermID:     term.ID,
		Date:       slot.Date,
		StartMin:   slot.StartMinute,
		EndMin:     slot.EndMinute,
		RoomID:     slot.RoomID,
		GroupID:    term.GroupID,
		LecturerID: course.LecturerID,
	}

	if violated := s.validator.Validate(candidate, session); len(violated) > 0 {
		return nil, apperrors.NewValidationError(scheduling.RuleIdentifiers(violated))
	}

	siblings, err := s.terms.ListActiveSlots(ctx, term.SessionID)
	if err != nil {
		return nil, err
	}
	conflicts := scheduling.DetectConflicts(candidate, siblings)
	blocking := filterConfirmed(conflicts)

	status, err := scheduling.Decide(term.Status, actor.Role, scheduling.ActionReschedule, len(blocking) > 0)
	if err != nil {
		return nil, err
	}

	// Replay tolerance: the same slot and room already proposed by the
	// same side.
	if status == term.Status && term.SameSlot(slot.Date, slot.StartMinute, slot.EndMinute) && sameRoom(term.RoomID, slot.RoomID) {
		return &TermOutcome{Term: term}, nil
	}

	updated := *term
	updated.Status = status
	updated.RoomID = slot.RoomID
	updated.Date = slot.Date
	updated.StartMinute = slot.StartMinute
	updated.EndMinute = slot.EndMinute

	comment := decision.Comment
	var info *ConflictInfo
	if status == models.StatusConflict {
		info = conflictInfo(blocking)
		comment = conflictComment(info, comment)
	}

	if err := s.commitTransition(ctx, term, &updated, actor, comment); err != nil {
		return nil, err
	}
	return &TermOutcome{Term: &updated, Conflict: info}, nil
}

// Finalize transitions an approved term into its immutable final state.
// Finalizing an already finalized term is a tolerated replay: the current
// term is returned and no history is written.
func (s *termServiceImpl) Finalize(ctx context.Context, termID int64, actor models.Actor) (*models.ExamTerm, error) {
	term, err := s.terms.GetByID(ctx, termID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertCanActFor(ctx, actor, term.CourseID, term.GroupID); err != nil {
		return nil, err
	}

	var result *models.ExamTerm
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.LockForScheduling(ctx, term.SessionID); err != nil {
			return err
		}

		current, err := s.terms.GetByID(ctx, termID)
		if err != nil {
			return err
		}
		if current.Status == models.StatusFinalized {
			result = current
			return nil
		}

		status, err := scheduling.Decide(current.Status, actor.Role, scheduling.ActionFinalize, false)
		if err != nil {
			return err
		}

		updated := *current
		updated.Status = status
		if err := s.commitTransition(ctx, current, &updated, actor, nil); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("termID", termID).Int64("actorID", actor.ID).Msg("Exam term finalized")
	return result, nil
}

// Reject transitions any non-terminal term to REJECTED with a mandatory
// reason. Rejecting an already rejected term is a tolerated replay.
func (s *termServiceImpl) Reject(ctx context.Context, termID int64, actor models.Actor, reason string) (*models.ExamTerm, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, apperrors.ErrRejectionReasonRequired
	}

	term, err := s.terms.GetByID(ctx, termID)
	if err != nil {
		return nil, err
	}
	if err := s.authz.AssertCanActFor(ctx, actor, term.CourseID, term.GroupID); err != nil {
		return nil, err
	}

	var result *models.ExamTerm
	err = s.tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.sessions.LockForScheduling(ctx, term.SessionID); err != nil {
			return err
		}

		current, err := s.terms.GetByID(ctx, termID)
		if err != nil {
			return err
		}
		if current.Status == models.StatusRejected {
			result = current
			return nil
		}

		status, err := scheduling.Decide(current.Status, actor.Role, scheduling.ActionReject, false)
		if err != nil {
			return err
		}

		updated := *current
		updated.Status = status
		updated.RejectionReason = &reason
		if err := s.commitTransition(ctx, current, &updated, actor, &reason); err != nil {
			return err
		}
		result = &updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Info().Int64("termID", termID).Int64("actorID", actor.ID).Str("reason", reason).Msg("Exam term rejected")
	return result, nil
}

// GetTerm retrieves a single term by id.
func (s *termServiceImpl) GetTerm(ctx context.Context, termID int64) (*models.ExamTerm, error) {
	return s.terms.GetByID(ctx, termID)
}

// ListTerms retrieves a page of a session's terms, optionally filtered by status.
func (s *termServiceImpl) ListTerms(ctx context.Context, sessionID int64, status *models.TermStatus, page, size int) ([]*models.ExamTerm, int64, error) {
	if _, err := s.sessions.GetByID(ctx, sessionID); err != nil {
		return nil, 0, err
	}

	offset := uint64((page - 1) * size)
	terms, err := s.terms.ListBySession(ctx, sessionID, status, offset, size)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.terms.CountBySession(ctx, sessionID, status)
	if err != nil {
		return nil, 0, err
	}
	return terms, total, nil
}

// GetHistory returns the term's audit trail in chronological order.
func (s *termServiceImpl) GetHistory(ctx context.Context, termID int64) ([]*models.ExamTermHistory, error) {
	if _, err := s.terms.GetByID(ctx, termID); err != nil {
		return nil, err
	}
	return s.history.ListByTerm(ctx, termID)
}

// commitTransition persists a term transition and its audit record as part
// of the surrounding transaction. The optimistic version check turns a
// concurrent change into ErrConcurrentModification.
func (s *termServiceImpl) commitTransition(ctx context.Context, before, after *models.ExamTerm, actor models.Actor, comment *string) error {
	if err := s.terms.Update(ctx, after, before.Version); err != nil {
		return err
	}
	after.UpdatedAt = s.now()

	if entry := scheduling.BuildHistoryEntry(before, after, actor.ID, s.now(), comment); entry != nil {
		if _, err := s.history.Append(ctx, entry); err != nil {
			return err
		}
	}
	return nil
}

// slotOf builds the detector snapshot of a persisted term.
func slotOf(term *models.ExamTerm, lecturerID int64) scheduling.TermSlot {
	return scheduling.TermSlot{
		TermID:     term.ID,
		Date:       term.Date,
		StartMin:   term.StartMinute,
		EndMin:     term.EndMinute,
		RoomID:     term.RoomID,
		GroupID:    term.GroupID,
		LecturerID: lecturerID,
		Status:     term.Status,
	}
}

// sameRoom reports whether two optional room assignments are equal.
func sameRoom(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// filterConfirmed keeps only conflicts against approved or finalized terms.
func filterConfirmed(conflicts []scheduling.Conflict) []scheduling.Conflict {
	var confirmed []scheduling.Conflict
	for _, c := range conflicts {
		if c.Other.Status == models.StatusApproved || c.Other.Status == models.StatusFinalized {
			confirmed = append(confirmed, c)
		}
	}
	return confirmed
}

// conflictInfo folds a conflict list into its user-facing summary.
func conflictInfo(conflicts []scheduling.Conflict) *ConflictInfo {
	ids := make([]int64, 0, len(conflicts))
	for _, c := range conflicts {
		ids = append(ids, c.Other.TermID)
	}
	return &ConflictInfo{
		Dimensions: scheduling.CombinedDimensions(conflicts).Label(),
		TermIDs:    ids,
	}
}

// conflictComment prefixes the stored history comment with the conflict label.
func conflictComment(info *ConflictInfo, comment *string) *string {
	msg := "conflict on: " + info.Dimensions
	if comment != nil && *comment != "" {
		msg = msg + "; " + *comment
	}
	return &msg
}

// IsRetryable reports whether the caller should retry the whole operation.
func IsRetryable(err error) bool {
	return errors.Is(err, apperrors.ErrConcurrentModification)
}
