package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mzajac/examflow/internal/app/models"
)

func termFixture() models.ExamTerm {
	return models.ExamTerm{
		ID:          7,
		Date:        day(17),
		StartMinute: 600,
		EndMinute:   690,
		Status:      models.StatusProposedByLecturer,
	}
}

func TestBuildHistoryEntry_StatusChangeOnly(t *testing.T) {
	before := termFixture()
	after := before
	after.Status = models.StatusApproved

	at := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
	entry := BuildHistoryEntry(&before, &after, 42, at, nil)

	require.NotNil(t, entry)
	assert.Equal(t, int64(7), entry.ExamTermID)
	assert.Equal(t, int64(42), entry.ChangedBy)
	assert.Equal(t, at, entry.ChangedAt)
	assert.Equal(t, models.StatusProposedByLecturer, entry.PreviousStatus)
	assert.Equal(t, models.StatusApproved, entry.NewStatus)

	// A pure status change carries no slot delta.
	assert.Nil(t, entry.PreviousDate)
	assert.Nil(t, entry.NewDate)
	assert.Nil(t, entry.PreviousStart)
	assert.Nil(t, entry.NewStart)
	assert.Nil(t, entry.PreviousEnd)
	assert.Nil(t, entry.NewEnd)
}

func TestBuildHistoryEntry_SlotMoved(t *testing.T) {
	before := termFixture()
	after := before
	after.Status = models.StatusProposedByStudent
	after.Date = day(19)
	after.StartMinute = 540
	after.EndMinute = 630

	comment := "room unavailable"
	entry := BuildHistoryEntry(&before, &after, 42, time.Now(), &comment)

	require.NotNil(t, entry)
	require.NotNil(t, entry.PreviousDate)
	assert.Equal(t, day(17), *entry.PreviousDate)
	assert.Equal(t, day(19), *entry.NewDate)
	assert.Equal(t, 600, *entry.PreviousStart)
	assert.Equal(t, 540, *entry.NewStart)
	assert.Equal(t, 690, *entry.PreviousEnd)
	assert.Equal(t, 630, *entry.NewEnd)
	require.NotNil(t, entry.Comment)
	assert.Equal(t, "room unavailable", *entry.Comment)
}

func TestBuildHistoryEntry_NoSemanticChange(t *testing.T) {
	before := termFixture()
	after := before

	assert.Nil(t, BuildHistoryEntry(&before, &after, 42, time.Now(), nil))
}
