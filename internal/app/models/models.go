package models

// RoleType defines the user role type
type RoleType string

const (
	RoleLecturer   RoleType = "LECTURER"
	RoleStarosta   RoleType = "STAROSTA"
	RoleDeanOffice RoleType = "DEAN_OFFICE"
)

// TermType distinguishes the kind of exam a term schedules.
type TermType string

const (
	TermTypeFirstAttempt TermType = "FIRST_ATTEMPT"
	TermTypeRetake       TermType = "RETAKE"
	TermTypeCommission   TermType = "COMMISSION"
)

// TermStatus is the approval state of an exam term.
type TermStatus string

const (
	StatusDraft              TermStatus = "DRAFT"
	StatusProposedByLecturer TermStatus = "PROPOSED_BY_LECTURER"
	StatusProposedByStudent  TermStatus = "PROPOSED_BY_STUDENT"
	StatusConflict           TermStatus = "CONFLICT"
	StatusApproved           TermStatus = "APPROVED"
	StatusFinalized          TermStatus = "FINALIZED"
	StatusRejected           TermStatus = "REJECTED"
)

// IsTerminal reports whether no further transitions are accepted from s.
func (s TermStatus) IsTerminal() bool {
	return s == StatusFinalized || s == StatusRejected
}

// IsProposed reports whether s is one of the two pending-proposal states.
func (s TermStatus) IsProposed() bool {
	return s == StatusProposedByLecturer || s == StatusProposedByStudent
}

// Actor identifies the authenticated user performing a scheduling operation.
// The relationship proof (course lecturer, group starosta, dean's office) is
// resolved separately; the engine treats the actor as pre-authenticated.
type Actor struct {
	ID   int64
	Role RoleType
}
