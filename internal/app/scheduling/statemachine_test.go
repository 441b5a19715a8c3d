package scheduling

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzajac/examflow/internal/app/models"
	"github.com/mzajac/examflow/internal/pkg/apperrors"
)

func TestDecide_AllowedTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   models.TermStatus
		role   models.RoleType
		action Action
		want   models.TermStatus
	}{
		{"lecturer proposes", models.StatusDraft, models.RoleLecturer, ActionPropose, models.StatusProposedByLecturer},
		{"starosta proposes", models.StatusDraft, models.RoleStarosta, ActionPropose, models.StatusProposedByStudent},
		{"starosta accepts lecturer proposal", models.StatusProposedByLecturer, models.RoleStarosta, ActionAccept, models.StatusApproved},
		{"lecturer accepts student proposal", models.StatusProposedByStudent, models.RoleLecturer, ActionAccept, models.StatusApproved},
		{"dean finalizes", models.StatusApproved, models.RoleDeanOffice, ActionFinalize, models.StatusFinalized},
		{"starosta counter-proposes", models.StatusProposedByLecturer, models.RoleStarosta, ActionReschedule, models.StatusProposedByStudent},
		{"lecturer counter-proposes", models.StatusProposedByStudent, models.RoleLecturer, ActionReschedule, models.StatusProposedByLecturer},
		{"lecturer moves approved term", models.StatusApproved, models.RoleLecturer, ActionReschedule, models.StatusProposedByLecturer},
		{"starosta moves approved term", models.StatusApproved, models.RoleStarosta, ActionReschedule, models.StatusProposedByStudent},
		{"dean moves approved term", models.StatusApproved, models.RoleDeanOffice, ActionReschedule, models.StatusProposedByLecturer},
		{"lecturer resolves conflict", models.StatusConflict, models.RoleLecturer, ActionReschedule, models.StatusProposedByLecturer},
		{"starosta resolves conflict", models.StatusConflict, models.RoleStarosta, ActionReschedule, models.StatusProposedByStudent},
		{"lecturer rejects", models.StatusProposedByStudent, models.RoleLecturer, ActionReject, models.StatusRejected},
		{"starosta rejects", models.StatusProposedByLecturer, models.RoleStarosta, ActionReject, models.StatusRejected},
		{"dean rejects approved", models.StatusApproved, models.RoleDeanOffice, ActionReject, models.StatusRejected},
		{"dean rejects conflicted", models.StatusConflict, models.RoleDeanOffice, ActionReject, models.StatusRejected},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(tt.from, tt.role, tt.action, false)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecide_IllegalTransitions(t *testing.T) {
	tests := []struct {
		name   string
		from   models.TermStatus
		role   models.RoleType
		action Action
	}{
		{"dean cannot propose", models.StatusDraft, models.RoleDeanOffice, ActionPropose},
		{"lecturer cannot accept own proposal", models.StatusProposedByLecturer, models.RoleLecturer, ActionAccept},
		{"starosta cannot accept own proposal", models.StatusProposedByStudent, models.RoleStarosta, ActionAccept},
		{"dean cannot accept", models.StatusProposedByLecturer, models.RoleDeanOffice, ActionAccept},
		{"finalize needs approved", models.StatusProposedByLecturer, models.RoleDeanOffice, ActionFinalize},
		{"only dean finalizes", models.StatusApproved, models.RoleLecturer, ActionFinalize},
		{"conflict cannot be accepted", models.StatusConflict, models.RoleStarosta, ActionAccept},
		{"dean cannot reschedule conflict", models.StatusConflict, models.RoleDeanOffice, ActionReschedule},
		{"propose needs draft", models.StatusApproved, models.RoleLecturer, ActionPropose},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(tt.from, tt.role, tt.action, false)
			require.ErrorIs(t, err, apperrors.ErrIllegalTransition)
			assert.Equal(t, tt.from, got, "status must remain unchanged")
		})
	}
}

func TestDecide_TerminalStatesAreFrozen(t *testing.T) {
	terminal := []models.TermStatus{models.StatusFinalized, models.StatusRejected}
	actions := []Action{ActionPropose, ActionAccept, ActionFinalize, ActionReject, ActionReschedule}
	roles := []models.RoleType{models.RoleLecturer, models.RoleStarosta, models.RoleDeanOffice}

	for _, from := range terminal {
		for _, role := range roles {
			for _, action := range actions {
				_, err := Decide(from, role, action, false)
				assert.ErrorIs(t, err, apperrors.ErrIllegalTransition,
					"%s by %s from %s must be illegal", action, role, from)
			}
		}
	}
}

func TestDecide_ConflictRerouting(t *testing.T) {
	tests := []struct {
		name   string
		from   models.TermStatus
		role   models.RoleType
		action Action
		want   models.TermStatus
	}{
		{"accept with overlap lands in conflict", models.StatusProposedByLecturer, models.RoleStarosta, ActionAccept, models.StatusConflict},
		{"propose with overlap lands in conflict", models.StatusDraft, models.RoleLecturer, ActionPropose, models.StatusConflict},
		{"reschedule onto occupied slot lands in conflict", models.StatusConflict, models.RoleStarosta, ActionReschedule, models.StatusConflict},
		{"reject ignores overlap", models.StatusProposedByLecturer, models.RoleStarosta, ActionReject, models.StatusRejected},
		{"finalize ignores overlap", models.StatusApproved, models.RoleDeanOffice, ActionFinalize, models.StatusFinalized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decide(tt.from, tt.role, tt.action, true)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// Every table row must target a defined status and never resurrect a term
// out of a terminal state.
func TestTransitionTable_Integrity(t *testing.T) {
	valid := map[models.TermStatus]bool{
		models.StatusDraft:              true,
		models.StatusProposedByLecturer: true,
		models.StatusProposedByStudent:  true,
		models.StatusConflict:           true,
		models.StatusApproved:           true,
		models.StatusFinalized:          true,
		models.StatusRejected:           true,
	}

	for key, target := range transitionTable {
		assert.True(t, valid[target], "row %+v targets unknown status %s", key, target)
		assert.False(t, key.from.IsTerminal(), "row %+v starts from a terminal status", key)
	}
}
