package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mzajac/examflow/internal/app/models"
)

func sessionJune() *models.ExamSession {
	return &models.ExamSession{
		ID:        1,
		Name:      "Summer Session",
		StartDate: day(10),
		EndDate:   day(30),
	}
}

// fixedNow pins "today" to June 15 so the past-date rule is deterministic.
func fixedNow() time.Time {
	return time.Date(2025, time.June, 15, 9, 30, 0, 0, time.UTC)
}

func TestValidator_ValidSlot(t *testing.T) {
	v := NewValidator(90, fixedNow)
	candidate := slot(0, day(17), 600, 690, roomID(1), 10, 100)

	assert.Empty(t, v.Validate(candidate, sessionJune()))
}

func TestValidator_Rules(t *testing.T) {
	v := NewValidator(90, fixedNow)

	tests := []struct {
		name     string
		modify   func(*TermSlot)
		violated []Rule
	}{
		{
			"end before start",
			func(s *TermSlot) { s.StartMin = 690; s.EndMin = 600 },
			[]Rule{RuleEndBeforeStart, RuleWrongDuration},
		},
		{
			"end equals start",
			func(s *TermSlot) { s.EndMin = s.StartMin },
			[]Rule{RuleEndBeforeStart, RuleWrongDuration},
		},
		{
			"wrong duration",
			func(s *TermSlot) { s.EndMin = s.StartMin + 60 },
			[]Rule{RuleWrongDuration},
		},
		{
			"before session start",
			func(s *TermSlot) { s.Date = day(9) },
			[]Rule{RuleOutsideSession, RuleDateInPast},
		},
		{
			"after session end",
			func(s *TermSlot) { s.Date = time.Date(2025, time.July, 1, 0, 0, 0, 0, time.UTC) },
			[]Rule{RuleOutsideSession},
		},
		{
			"date in past within session",
			func(s *TermSlot) { s.Date = day(12) },
			[]Rule{RuleDateInPast},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := slot(0, day(17), 600, 690, roomID(1), 10, 100)
			tt.modify(&candidate)
			assert.Equal(t, tt.violated, v.Validate(candidate, sessionJune()))
		})
	}
}

func TestValidator_SessionBoundsInclusive(t *testing.T) {
	v := NewValidator(90, func() time.Time { return day(1) })

	first := slot(0, day(10), 600, 690, roomID(1), 10, 100)
	assert.Empty(t, v.Validate(first, sessionJune()))

	last := slot(0, day(30), 600, 690, roomID(1), 10, 100)
	assert.Empty(t, v.Validate(last, sessionJune()))
}

func TestValidator_TodayIsNotPast(t *testing.T) {
	v := NewValidator(90, fixedNow)
	candidate := slot(0, day(15), 600, 690, roomID(1), 10, 100)

	assert.Empty(t, v.Validate(candidate, sessionJune()))
}

func TestValidator_ConfiguredDuration(t *testing.T) {
	v := NewValidator(120, fixedNow)

	twoHours := slot(0, day(17), 600, 720, roomID(1), 10, 100)
	assert.Empty(t, v.Validate(twoHours, sessionJune()))

	ninety := slot(0, day(17), 600, 690, roomID(1), 10, 100)
	assert.Equal(t, []Rule{RuleWrongDuration}, v.Validate(ninety, sessionJune()))
}

func TestValidator_DefaultDurationFallback(t *testing.T) {
	v := NewValidator(0, fixedNow)
	candidate := slot(0, day(17), 600, 690, roomID(1), 10, 100)

	assert.Empty(t, v.Validate(candidate, sessionJune()))
}

func TestRuleIdentifiers(t *testing.T) {
	ids := RuleIdentifiers([]Rule{RuleEndBeforeStart, RuleDateInPast})
	assert.Equal(t, []string{"END_TIME_BEFORE_START_TIME", "DATE_IN_PAST"}, ids)
}
