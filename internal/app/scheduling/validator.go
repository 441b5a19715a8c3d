package scheduling

import (
	"time"

	"github.com/mzajac/examflow/internal/app/models"
)

// Rule is the stable identifier of one validation rule. Callers map each
// identifier to a user-facing message.
type Rule string

const (
	// RuleEndBeforeStart fires when the end time is not strictly after the start.
	RuleEndBeforeStart Rule = "END_TIME_BEFORE_START_TIME"
	// RuleWrongDuration fires when end-start differs from the fixed exam length.
	RuleWrongDuration Rule = "WRONG_EXAM_DURATION"
	// RuleOutsideSession fires when the date falls outside the owning session.
	RuleOutsideSession Rule = "DATE_OUTSIDE_SESSION"
	// RuleDateInPast fires when the date is strictly before today.
	RuleDateInPast Rule = "DATE_IN_PAST"
)

// DefaultExamDurationMinutes is the fixed length every exam slot must have.
const DefaultExamDurationMinutes = 90

// Validator checks candidate term slots against session bounds and the
// time-window rules. Now is injectable for tests; the zero value is not
// usable, construct with NewValidator.
type Validator struct {
	durationMinutes int
	now             func() time.Time
}

// NewValidator creates a Validator with the configured exam duration.
// Passing durationMinutes <= 0 falls back to the 90-minute default.
func NewValidator(durationMinutes int, now func() time.Time) *Validator {
	if durationMinutes <= 0 {
		durationMinutes = DefaultExamDurationMinutes
	}
	if now == nil {
		now = time.Now
	}
	return &Validator{durationMinutes: durationMinutes, now: now}
}

// Validate returns the identifiers of every violated rule, in rule order.
// An empty result means the candidate is valid. Rules are independently
// checkable and all of them are evaluated; nothing short-circuits, so the
// caller can render one message per violation.
func (v *Validator) Validate(candidate TermSlot, session *models.ExamSession) []Rule {
	var violated []Rule

	if candidate.EndMin <= candidate.StartMin {
		violated = append(violated, RuleEndBeforeStart)
	}
	if candidate.EndMin-candidate.StartMin != v.durationMinutes {
		violated = append(violated, RuleWrongDuration)
	}
	if session != nil && !session.Contains(candidate.Date) {
		violated = append(violated, RuleOutsideSession)
	}
	if dateOnly(candidate.Date).Before(dateOnly(v.now())) {
		violated = append(violated, RuleDateInPast)
	}

	return violated
}

// RuleIdentifiers converts a violation list to plain strings for error details.
func RuleIdentifiers(rules []Rule) []string {
	ids := make([]string, len(rules))
	for i, r := range rules {
		ids[i] = string(r)
	}
	return ids
}

// dateOnly strips the time-of-day component in UTC.
func dateOnly(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
