package scheduling

import (
	"fmt"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

// Action is a requested operation on an exam term.
type Action string

const (
	ActionPropose    Action = "PROPOSE"
	ActionAccept     Action = "ACCEPT"
	ActionFinalize   Action = "FINALIZE"
	ActionReject     Action = "REJECT"
	ActionReschedule Action = "RESCHEDULE"
)

// transitionKey identifies one row of the transition table.
type transitionKey struct {
	from   models.TermStatus
	role   models.RoleType
	action Action
}

// transitionTable enumerates every legal (status, role, action) combination
// and its target status. Anything absent from the table is an illegal
// transition, which keeps totality mechanically checkable.
var transitionTable = map[transitionKey]models.TermStatus{
	// Proposals from a draft term.
	{models.StatusDraft, models.RoleLecturer, ActionPropose}: models.StatusProposedByLecturer,
	{models.StatusDraft, models.RoleStarosta, ActionPropose}: models.StatusProposedByStudent,

	// The counter-party accepts the proposed slot.
	{models.StatusProposedByLecturer, models.RoleStarosta, ActionAccept}: models.StatusApproved,
	{models.StatusProposedByStudent, models.RoleLecturer, ActionAccept}:  models.StatusApproved,

	// Dean's office finalizes an approved term.
	{models.StatusApproved, models.RoleDeanOffice, ActionFinalize}: models.StatusFinalized,

	// Rescheduling re-enters the proposing side's state, mirroring the
	// original proposal step. The counter-party can counter-propose a new
	// slot instead of accepting, either side can move an approved term, and
	// the proposer can move a conflicted term to a free slot. A dean-office
	// edit re-enters the lecturer side.
	{models.StatusProposedByLecturer, models.RoleStarosta, ActionReschedule}: models.StatusProposedByStudent,
	{models.StatusProposedByStudent, models.RoleLecturer, ActionReschedule}:  models.StatusProposedByLecturer,
	{models.StatusApproved, models.RoleLecturer, ActionReschedule}:           models.StatusProposedByLecturer,
	{models.StatusApproved, models.RoleStarosta, ActionReschedule}:           models.StatusProposedByStudent,
	{models.StatusApproved, models.RoleDeanOffice, ActionReschedule}:         models.StatusProposedByLecturer,
	{models.StatusConflict, models.RoleLecturer, ActionReschedule}:           models.StatusProposedByLecturer,
	{models.StatusConflict, models.RoleStarosta, ActionReschedule}:           models.StatusProposedByStudent,
}

// allRoles is used to expand the reject rows below.
var allRoles = []models.RoleType{models.RoleLecturer, models.RoleStarosta, models.RoleDeanOffice}

// init expands "any authorized actor rejects any non-terminal term" into
// explicit table rows so that terminal states stay unreachable.
func init() {
	nonTerminal := []models.TermStatus{
		models.StatusDraft,
		models.StatusProposedByLecturer,
		models.StatusProposedByStudent,
		models.StatusConflict,
		models.StatusApproved,
	}
	for _, from := range nonTerminal {
		for _, role := range allRoles {
			transitionTable[transitionKey{from, role, ActionReject}] = models.StatusRejected
		}
	}
}

// Decide computes the target status for (current, role, action). When the
// conflict detector reported an overlap, a transition that would land in a
// proposed or approved state lands in CONFLICT instead, regardless of the
// requested target. An absent table row returns ErrIllegalTransition and
// the caller must leave the term unchanged.
func Decide(current models.TermStatus, role models.RoleType, action Action, hasConflict bool) (models.TermStatus, error) {
	target, ok := transitionTable[transitionKey{current, role, action}]
	if !ok {
		return current, fmt.Errorf("%w: %s is not allowed for role %s in status %s",
			apperrors.ErrIllegalTransition, action, role, current)
	}
	if hasConflict && conflictReroutes(target) {
		return models.StatusConflict, nil
	}
	return target, nil
}

// conflictReroutes reports whether an overlap diverts the transition into
// CONFLICT. Rejections and finalizations are never rerouted; the latter can
// only start from an already conflict-free approval.
func conflictReroutes(target models.TermStatus) bool {
	switch target {
	case models.StatusApproved, models.StatusProposedByLecturer, models.StatusProposedByStudent:
		return true
	}
	return false
}
