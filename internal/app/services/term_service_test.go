package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/app/scheduling"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

// fakeStore is an in-memory stand-in for every persistence interface the
// term service depends on.
type fakeStore struct {
	terms    map[int64]*models.ExamTerm
	courses  map[int64]*models.Course
	rooms    map[int64]*models.Room
	sessions map[int64]*models.ExamSession
	history  []*models.ExamTermHistory
	nextID   int64
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		terms:    make(map[int64]*models.ExamTerm),
		courses:  make(map[int64]*models.Course),
		rooms:    make(map[int64]*models.Room),
		sessions: make(map[int64]*models.ExamSession),
		nextID:   1,
	}
}

func (f *fakeStore) Create(ctx context.Context, term *models.ExamTerm) (int64, error) {
	id := f.nextID
	f.nextID++
	stored := *term
	stored.ID = id
	f.terms[id] = &stored
	return id, nil
}

func (f *fakeStore) GetByID(ctx context.Context, id int64) (*models.ExamTerm, error) {
	term, ok := f.terms[id]
	if !ok {
		return nil, apperrors.ErrTermNotFound
	}
	cp := *term
	return &cp, nil
}

func (f *fakeStore) ListBySession(ctx context.Context, sessionID int64, status *models.TermStatus, offset uint64, limit int) ([]*models.ExamTerm, error) {
	var out []*models.ExamTerm
	for _, term := range f.terms {
		if term.SessionID != sessionID {
			continue
		}
		if status != nil && term.Status != *status {
			continue
		}
		cp := *term
		out = append(out, &cp)
	}
	return out, nil
}

func (f *fakeStore) CountBySession(ctx context.Context, sessionID int64, status *models.TermStatus) (int64, error) {
	terms, _ := f.ListBySession(ctx, sessionID, status, 0, 0)
	return int64(len(terms)), nil
}

func (f *fakeStore) ListActiveSlots(ctx context.Context, sessionID int64) ([]scheduling.TermSlot, error) {
	var slots []scheduling.TermSlot
	for _, term := range f.terms {
		if term.SessionID != sessionID || term.Status == models.StatusRejected {
			continue
		}
		course, ok := f.courses[term.CourseID]
		if !ok {
			return nil, apperrors.ErrCourseNotFound
		}
		slots = append(slots, scheduling.TermSlot{
			TermID:     term.ID,
			Date:       term.Date,
			StartMin:   term.StartMinute,
			EndMin:     term.EndMinute,
			RoomID:     term.RoomID,
			GroupID:    term.GroupID,
			LecturerID: course.LecturerID,
			Status:     term.Status,
		})
	}
	return slots, nil
}

func (f *fakeStore) Update(ctx context.Context, term *models.ExamTerm, expectedVersion int) error {
	stored, ok := f.terms[term.ID]
	if !ok {
		return apperrors.ErrTermNotFound
	}
	if stored.Version != expectedVersion {
		return apperrors.ErrConcurrentModification
	}
	cp := *term
	cp.Version = expectedVersion + 1
	f.terms[term.ID] = &cp
	term.Version = cp.Version
	return nil
}

func (f *fakeStore) ExistsForSession(ctx context.Context, sessionID int64) (bool, error) {
	for _, term := range f.terms {
		if term.SessionID == sessionID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) LockForScheduling(ctx context.Context, id int64) error {
	if _, ok := f.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id int64) (*models.ExamSession, error) {
	session, ok := f.sessions[id]
	if !ok {
		return nil, apperrors.ErrSessionNotFound
	}
	cp := *session
	return &cp, nil
}

func (f *fakeStore) Append(ctx context.Context, entry *models.ExamTermHistory) (int64, error) {
	cp := *entry
	cp.ID = int64(len(f.history) + 1)
	f.history = append(f.history, &cp)
	return cp.ID, nil
}

func (f *fakeStore) ListByTerm(ctx context.Context, termID int64) ([]*models.ExamTermHistory, error) {
	var out []*models.ExamTermHistory
	for _, entry := range f.history {
		if entry.ExamTermID == termID {
			cp := *entry
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	course, ok := f.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	cp := *course
	return &cp, nil
}

func (f *fakeStore) GetRoom(ctx context.Context, id int64) (*models.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return nil, apperrors.ErrRoomNotFound
	}
	cp := *room
	return &cp, nil
}

// Adapters narrow fakeStore onto the service's single-method lookup
// interfaces that would otherwise collide on GetByID.
type sessionStoreAdapter struct{ *fakeStore }

func (a sessionStoreAdapter) GetByID(ctx context.Context, id int64) (*models.ExamSession, error) {
	return a.GetSession(ctx, id)
}

type courseStoreAdapter struct{ *fakeStore }

func (a courseStoreAdapter) GetByID(ctx context.Context, id int64) (*models.Course, error) {
	return a.GetCourse(ctx, id)
}

type roomStoreAdapter struct{ *fakeStore }

func (a roomStoreAdapter) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	return a.GetRoom(ctx, id)
}

// fakeAuthorizer grants everything unless err is set.
type fakeAuthorizer struct{ err error }

func (f fakeAuthorizer) AssertCanActFor(ctx context.Context, actor models.Actor, courseID, groupID int64) error {
	return f.err
}

// passthroughTx runs the function without a real transaction.
type passthroughTx struct{}

func (passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

var (
	lecturer = models.Actor{ID: 100, Role: models.RoleLecturer}
	starosta = models.Actor{ID: 200, Role: models.RoleStarosta}
	dean     = models.Actor{ID: 300, Role: models.RoleDeanOffice}
)

func fixedClock() time.Time {
	return time.Date(2025, time.June, 15, 9, 0, 0, 0, time.UTC)
}

func june(d int) time.Time {
	return time.Date(2025, time.June, d, 0, 0, 0, 0, time.UTC)
}

func newFixture(t *testing.T) (*fakeStore, TermService) {
	t.Helper()
	store := newFakeStore()
	store.sessions[1] = &models.ExamSession{ID: 1, Name: "Summer Session", StartDate: june(10), EndDate: june(30)}
	store.courses[1] = &models.Course{ID: 1, Code: "INF-301", Name: "Operating Systems", LecturerID: lecturer.ID}
	store.courses[2] = &models.Course{ID: 2, Code: "INF-302", Name: "Databases", LecturerID: 101}
	store.rooms[1] = &models.Room{ID: 1, Name: "A1", Building: "Main", Capacity: 120}
	store.rooms[2] = &models.Room{ID: 2, Name: "B204", Building: "Informatics", Capacity: 40}

	svc := NewTermService(
		store,
		sessionStoreAdapter{store},
		store,
		courseStoreAdapter{store},
		roomStoreAdapter{store},
		fakeAuthorizer{},
		passthroughTx{},
		scheduling.NewValidator(90, fixedClock),
		fixedClock,
	)
	return store, svc
}

func proposal(courseID, groupID int64, room *int64, date time.Time, start, end int) ProposeTermInput {
	return ProposeTermInput{
		CourseID:    courseID,
		SessionID:   1,
		GroupID:     groupID,
		RoomID:      room,
		Date:        date,
		StartMinute: start,
		EndMinute:   end,
		TermType:    models.TermTypeFirstAttempt,
	}
}

func ptr[T any](v T) *T { return &v }

func TestProposeTerm_Lecturer(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	require.NotNil(t, outcome.Term)
	assert.Nil(t, outcome.Conflict)

	assert.Equal(t, models.StatusProposedByLecturer, outcome.Term.Status)
	assert.Equal(t, 1, outcome.Term.Version)
	assert.Equal(t, lecturer.ID, outcome.Term.CreatedBy)

	require.Len(t, store.history, 1)
	assert.Equal(t, models.StatusDraft, store.history[0].PreviousStatus)
	assert.Equal(t, models.StatusProposedByLecturer, store.history[0].NewStatus)
}

func TestProposeTerm_Starosta(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), starosta)
	require.NoError(t, err)
	assert.Equal(t, models.StatusProposedByStudent, outcome.Term.Status)
}

func TestProposeTerm_ValidationRejected(t *testing.T) {
	store, svc := newFixture(t)

	// 60 minutes instead of the configured 90, and a date outside the session.
	_, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(5), 600, 660), lecturer)
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)

	var custom *apperrors.CustomError
	require.ErrorAs(t, err, &custom)
	assert.ElementsMatch(t,
		[]string{"WRONG_EXAM_DURATION", "DATE_OUTSIDE_SESSION", "DATE_IN_PAST"},
		custom.Details["violatedRules"])

	assert.Empty(t, store.terms, "nothing may be persisted on validation failure")
	assert.Empty(t, store.history)
}

func TestProposeTerm_ConflictWithConfirmedTerm(t *testing.T) {
	store, svc := newFixture(t)

	// An approved sibling occupies room 1 at the same time.
	first, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), first.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)

	// Different course and group, same room and window.
	outcome, err := svc.ProposeTerm(context.Background(), proposal(2, 20, ptr(int64(1)), june(17), 600, 690), models.Actor{ID: 101, Role: models.RoleLecturer})
	require.NoError(t, err, "a conflict outcome is committed, not an error")

	assert.Equal(t, models.StatusConflict, outcome.Term.Status)
	require.NotNil(t, outcome.Conflict)
	assert.Equal(t, "room", outcome.Conflict.Dimensions)
	assert.Equal(t, []int64{first.Term.ID}, outcome.Conflict.TermIDs)

	// The stored term is in CONFLICT and the audit comment names the dimensions.
	stored := store.terms[outcome.Term.ID]
	assert.Equal(t, models.StatusConflict, stored.Status)
	last := store.history[len(store.history)-1]
	require.NotNil(t, last.Comment)
	assert.Contains(t, *last.Comment, "conflict on: room")
}

func TestProposeTerm_PendingSiblingsCoexist(t *testing.T) {
	_, svc := newFixture(t)

	first, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	require.Equal(t, models.StatusProposedByLecturer, first.Term.Status)

	// Same slot, but the sibling is only proposed, not confirmed.
	second, err := svc.ProposeTerm(context.Background(), proposal(2, 20, ptr(int64(1)), june(17), 600, 690), models.Actor{ID: 101, Role: models.RoleLecturer})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProposedByLecturer, second.Term.Status)
	assert.Nil(t, second.Conflict)
}

func TestRespondToProposal_Accept(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)

	accepted, err := svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, accepted.Term.Status)
	assert.Equal(t, 2, accepted.Term.Version)

	require.Len(t, store.history, 2)
	assert.Equal(t, models.StatusProposedByLecturer, store.history[1].PreviousStatus)
	assert.Equal(t, models.StatusApproved, store.history[1].NewStatus)
}

func TestRespondToProposal_ProposerCannotAccept(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, lecturer, Decision{Type: DecisionAccept})
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestRespondToProposal_AcceptDetectsLateConflict(t *testing.T) {
	_, svc := newFixture(t)

	// Two pending proposals on the same slot.
	first, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	second, err := svc.ProposeTerm(context.Background(), proposal(2, 20, ptr(int64(1)), june(17), 600, 690), models.Actor{ID: 101, Role: models.RoleLecturer})
	require.NoError(t, err)

	// The first acceptance wins the slot; the pending overlap does not
	// block it.
	accepted, err := svc.RespondToProposal(context.Background(), first.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	require.Equal(t, models.StatusApproved, accepted.Term.Status)
	require.Nil(t, accepted.Conflict)

	// Accepting the second collides with the now-approved first term.
	collided, err := svc.RespondToProposal(context.Background(), second.Term.ID, models.Actor{ID: 201, Role: models.RoleStarosta}, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConflict, collided.Term.Status)
	require.NotNil(t, collided.Conflict)
	assert.Equal(t, "room", collided.Conflict.Dimensions)
}

func TestRespondToProposal_AcceptIsIdempotent(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	historyLen := len(store.history)

	replayed, err := svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, replayed.Term.Status)
	assert.Len(t, store.history, historyLen, "a replayed accept writes no history")
}

func TestRespondToProposal_RejectRequiresReason(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionReject})
	assert.ErrorIs(t, err, apperrors.ErrRejectionReasonRequired)

	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionReject, Reason: ptr("  ")})
	assert.ErrorIs(t, err, apperrors.ErrRejectionReasonRequired)
}

func TestRespondToProposal_Reject(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	rejected, err := svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionReject, Reason: ptr("collides with lab classes")})
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, rejected.Term.Status)
	require.NotNil(t, rejected.Term.RejectionReason)
	assert.Equal(t, "collides with lab classes", *rejected.Term.RejectionReason)

	last := store.history[len(store.history)-1]
	assert.Equal(t, models.StatusRejected, last.NewStatus)
	require.NotNil(t, last.Comment)
	assert.Equal(t, "collides with lab classes", *last.Comment)
}

func TestRespondToProposal_Reschedule(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)

	moved, err := svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{
		Type:    DecisionReschedule,
		NewSlot: &SlotInput{RoomID: ptr(int64(2)), Date: june(19), StartMinute: 540, EndMinute: 630},
	})
	require.NoError(t, err)

	// The proposal flips to the responder's side with the replacement slot.
	assert.Equal(t, models.StatusProposedByStudent, moved.Term.Status)
	assert.Equal(t, june(19), moved.Term.Date)
	assert.Equal(t, 540, moved.Term.StartMinute)
	assert.Equal(t, 630, moved.Term.EndMinute)
	require.NotNil(t, moved.Term.RoomID)
	assert.Equal(t, int64(2), *moved.Term.RoomID)

	last := store.history[len(store.history)-1]
	require.NotNil(t, last.PreviousDate)
	assert.Equal(t, june(17), *last.PreviousDate)
	assert.Equal(t, june(19), *last.NewDate)
}

func TestRespondToProposal_RescheduleNeedsSlot(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionReschedule})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestRespondToProposal_RescheduleValidatesSlot(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{
		Type:    DecisionReschedule,
		NewSlot: &SlotInput{Date: june(19), StartMinute: 600, EndMinute: 630},
	})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestRespondToProposal_UnknownDecision(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: "POSTPONE"})
	assert.ErrorIs(t, err, apperrors.ErrBadRequest)
}

func TestFinalize(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)

	final, err := svc.Finalize(context.Background(), outcome.Term.ID, dean)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinalized, final.Status)

	// Replay: same result, no extra history.
	historyLen := len(store.history)
	replayed, err := svc.Finalize(context.Background(), outcome.Term.ID, dean)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFinalized, replayed.Status)
	assert.Len(t, store.history, historyLen)
}

func TestFinalize_RequiresApproved(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), outcome.Term.ID, dean)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestFinalize_DeanOnly(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)

	_, err = svc.Finalize(context.Background(), outcome.Term.ID, lecturer)
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestReject_IsIdempotent(t *testing.T) {
	store, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.Reject(context.Background(), outcome.Term.ID, starosta, "clashes")
	require.NoError(t, err)
	historyLen := len(store.history)

	replayed, err := svc.Reject(context.Background(), outcome.Term.ID, starosta, "clashes")
	require.NoError(t, err)
	assert.Equal(t, models.StatusRejected, replayed.Status)
	assert.Len(t, store.history, historyLen)
}

func TestReject_FinalizedIsImmutable(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), outcome.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	_, err = svc.Finalize(context.Background(), outcome.Term.ID, dean)
	require.NoError(t, err)

	_, err = svc.Reject(context.Background(), outcome.Term.ID, dean, "too late")
	assert.ErrorIs(t, err, apperrors.ErrIllegalTransition)
}

func TestConflictResolution_RescheduleFrees(t *testing.T) {
	_, svc := newFixture(t)

	first, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), first.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)

	other := models.Actor{ID: 101, Role: models.RoleLecturer}
	collided, err := svc.ProposeTerm(context.Background(), proposal(2, 20, ptr(int64(1)), june(17), 600, 690), other)
	require.NoError(t, err)
	require.Equal(t, models.StatusConflict, collided.Term.Status)

	// Moving the conflicted term to a free slot re-enters the proposal flow.
	moved, err := svc.RespondToProposal(context.Background(), collided.Term.ID, other, Decision{
		Type:    DecisionReschedule,
		NewSlot: &SlotInput{RoomID: ptr(int64(2)), Date: june(18), StartMinute: 600, EndMinute: 690},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusProposedByLecturer, moved.Term.Status)
	assert.Nil(t, moved.Conflict)
}

func TestRespondToProposal_RescheduleRoomOnlyChangeIsApplied(t *testing.T) {
	store, svc := newFixture(t)

	// An approved term occupies group 10 on June 17.
	first, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), first.Term.ID, starosta, Decision{Type: DecisionAccept})
	require.NoError(t, err)

	// A second proposal for the same group collides on the group dimension
	// regardless of room.
	other := models.Actor{ID: 101, Role: models.RoleLecturer}
	collided, err := svc.ProposeTerm(context.Background(), proposal(2, 10, ptr(int64(2)), june(17), 600, 690), other)
	require.NoError(t, err)
	require.Equal(t, models.StatusConflict, collided.Term.Status)

	// Changing only the room keeps the group collision, but the room change
	// must be applied and the conflict reported, not swallowed as a replay.
	moved, err := svc.RespondToProposal(context.Background(), collided.Term.ID, other, Decision{
		Type:    DecisionReschedule,
		NewSlot: &SlotInput{RoomID: nil, Date: june(17), StartMinute: 600, EndMinute: 690},
	})
	require.NoError(t, err)
	assert.Equal(t, models.StatusConflict, moved.Term.Status)
	require.NotNil(t, moved.Conflict)
	assert.Equal(t, "group", moved.Conflict.Dimensions)
	assert.Equal(t, []int64{first.Term.ID}, moved.Conflict.TermIDs)
	assert.Nil(t, store.terms[collided.Term.ID].RoomID)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(apperrors.ErrConcurrentModification))
	assert.True(t, IsRetryable(fmt.Errorf("wrapped: %w", apperrors.ErrConcurrentModification)))
	assert.False(t, IsRetryable(apperrors.ErrIllegalTransition))
	assert.False(t, IsRetryable(nil))
}

// staleTermStore serves reads from one store and writes against another, so
// every Update sees a version mismatch.
type staleTermStore struct {
	reads  *fakeStore
	writes *fakeStore
}

func (s staleTermStore) Create(ctx context.Context, term *models.ExamTerm) (int64, error) {
	return s.writes.Create(ctx, term)
}

func (s staleTermStore) GetByID(ctx context.Context, id int64) (*models.ExamTerm, error) {
	return s.reads.GetByID(ctx, id)
}

func (s staleTermStore) ListBySession(ctx context.Context, sessionID int64, status *models.TermStatus, offset uint64, limit int) ([]*models.ExamTerm, error) {
	return s.reads.ListBySession(ctx, sessionID, status, offset, limit)
}

func (s staleTermStore) CountBySession(ctx context.Context, sessionID int64, status *models.TermStatus) (int64, error) {
	return s.reads.CountBySession(ctx, sessionID, status)
}

func (s staleTermStore) ListActiveSlots(ctx context.Context, sessionID int64) ([]scheduling.TermSlot, error) {
	return s.reads.ListActiveSlots(ctx, sessionID)
}

func (s staleTermStore) Update(ctx context.Context, term *models.ExamTerm, expectedVersion int) error {
	return s.writes.Update(ctx, term, expectedVersion)
}

func TestCommitTransition_StaleVersion(t *testing.T) {
	reads := newFakeStore()
	writes := newFakeStore()
	reads.sessions[1] = &models.ExamSession{ID: 1, Name: "Summer Session", StartDate: june(10), EndDate: june(30)}
	reads.courses[1] = &models.Course{ID: 1, Code: "INF-301", Name: "Operating Systems", LecturerID: lecturer.ID}

	// The read replica serves version 1 while the write side already holds
	// version 2, so the optimistic check must fail.
	term := &models.ExamTerm{ID: 1, CourseID: 1, SessionID: 1, GroupID: 10,
		Date: june(17), StartMinute: 600, EndMinute: 690,
		TermType: models.TermTypeFirstAttempt, Status: models.StatusProposedByLecturer, Version: 1}
	readCopy := *term
	reads.terms[1] = &readCopy
	writeCopy := *term
	writeCopy.Version = 2
	writes.terms[1] = &writeCopy

	svc := NewTermService(
		staleTermStore{reads, writes},
		sessionStoreAdapter{reads},
		reads,
		courseStoreAdapter{reads},
		roomStoreAdapter{reads},
		fakeAuthorizer{},
		passthroughTx{},
		scheduling.NewValidator(90, fixedClock),
		fixedClock,
	)

	_, err := svc.RespondToProposal(context.Background(), 1, starosta, Decision{Type: DecisionAccept})
	assert.ErrorIs(t, err, apperrors.ErrConcurrentModification)
	assert.True(t, IsRetryable(err))
}

func TestAuthorizationFailurePropagates(t *testing.T) {
	store := newFakeStore()
	store.sessions[1] = &models.ExamSession{ID: 1, Name: "Summer Session", StartDate: june(10), EndDate: june(30)}
	store.courses[1] = &models.Course{ID: 1, Code: "INF-301", LecturerID: lecturer.ID}

	denied := fmt.Errorf("%w: actor 999 is not the lecturer of course 1", apperrors.ErrPermissionDenied)
	svc := NewTermService(
		store,
		sessionStoreAdapter{store},
		store,
		courseStoreAdapter{store},
		roomStoreAdapter{store},
		fakeAuthorizer{err: denied},
		passthroughTx{},
		scheduling.NewValidator(90, fixedClock),
		fixedClock,
	)

	_, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), models.Actor{ID: 999, Role: models.RoleLecturer})
	assert.ErrorIs(t, err, apperrors.ErrPermissionDenied)
	assert.Empty(t, store.terms)
}

func TestGetHistory_ChronologicalTrail(t *testing.T) {
	_, svc := newFixture(t)

	outcome, err := svc.ProposeTerm(context.Background(), proposal(1, 10, ptr(int64(1)), june(17), 600, 690), lecturer)
	require.NoError(t, err)
	termID := outcome.Term.ID

	_, err = svc.RespondToProposal(context.Background(), termID, starosta, Decision{
		Type:    DecisionReschedule,
		NewSlot: &SlotInput{RoomID: ptr(int64(1)), Date: june(19), StartMinute: 600, EndMinute: 690},
	})
	require.NoError(t, err)
	_, err = svc.RespondToProposal(context.Background(), termID, lecturer, Decision{Type: DecisionAccept})
	require.NoError(t, err)
	_, err = svc.Finalize(context.Background(), termID, dean)
	require.NoError(t, err)

	entries, err := svc.GetHistory(context.Background(), termID)
	require.NoError(t, err)
	require.Len(t, entries, 4)

	statuses := make([]models.TermStatus, 0, len(entries))
	for _, e := range entries {
		statuses = append(statuses, e.NewStatus)
	}
	assert.Equal(t, []models.TermStatus{
		models.StatusProposedByLecturer,
		models.StatusProposedByStudent,
		models.StatusApproved,
		models.StatusFinalized,
	}, statuses)
}

func TestGetHistory_UnknownTerm(t *testing.T) {
	_, svc := newFixture(t)

	_, err := svc.GetHistory(context.Background(), 404)
	assert.ErrorIs(t, err, apperrors.ErrTermNotFound)
}

func TestListTerms(t *testing.T) {
	_, svc := newFixture(t)

	_, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	require.NoError(t, err)
	_, err = svc.ProposeTerm(context.Background(), proposal(2, 20, nil, june(18), 600, 690), models.Actor{ID: 101, Role: models.RoleLecturer})
	require.NoError(t, err)

	terms, total, err := svc.ListTerms(context.Background(), 1, nil, 1, 20)
	require.NoError(t, err)
	assert.Len(t, terms, 2)
	assert.Equal(t, int64(2), total)

	status := models.StatusProposedByLecturer
	filtered, count, err := svc.ListTerms(context.Background(), 1, &status, 1, 20)
	require.NoError(t, err)
	assert.Len(t, filtered, 2)
	assert.Equal(t, int64(2), count)

	_, _, err = svc.ListTerms(context.Background(), 99, nil, 1, 20)
	assert.ErrorIs(t, err, apperrors.ErrSessionNotFound)
}

var errBoom = errors.New("boom")

// failingTx verifies that a failure inside the transactional section
// surfaces unchanged.
type failingTx struct{}

func (failingTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	return errBoom
}

func TestProposeTerm_TxFailureSurfaces(t *testing.T) {
	store := newFakeStore()
	store.sessions[1] = &models.ExamSession{ID: 1, Name: "Summer Session", StartDate: june(10), EndDate: june(30)}
	store.courses[1] = &models.Course{ID: 1, Code: "INF-301", LecturerID: lecturer.ID}

	svc := NewTermService(
		store,
		sessionStoreAdapter{store},
		store,
		courseStoreAdapter{store},
		roomStoreAdapter{store},
		fakeAuthorizer{},
		failingTx{},
		scheduling.NewValidator(90, fixedClock),
		fixedClock,
	)

	_, err := svc.ProposeTerm(context.Background(), proposal(1, 10, nil, june(17), 600, 690), lecturer)
	assert.ErrorIs(t, err, errBoom)
}
