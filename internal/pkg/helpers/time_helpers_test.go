package helpers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	parsed, err := ParseDate("2025-06-17")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC), parsed)

	for _, input := range []string{"", "17-06-2025", "2025/06/17", "2025-13-01", "yesterday"} {
		_, err := ParseDate(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatDate(t *testing.T) {
	assert.Equal(t, "2025-06-17", FormatDate(time.Date(2025, time.June, 17, 15, 30, 0, 0, time.UTC)))
}

func TestDateOnly(t *testing.T) {
	warsaw, err := time.LoadLocation("Europe/Warsaw")
	require.NoError(t, err)

	// 23:30 CEST is 21:30 UTC; the date component follows UTC.
	local := time.Date(2025, time.June, 17, 23, 30, 0, 0, warsaw)
	assert.Equal(t, time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC), DateOnly(local))

	midnight := time.Date(2025, time.June, 17, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, midnight, DateOnly(midnight))
}

func TestParseMinuteOfDay(t *testing.T) {
	cases := []struct {
		input string
		want  int
	}{
		{"00:00", 0},
		{"09:05", 545},
		{"10:00", 600},
		{"23:59", 1439},
	}
	for _, tc := range cases {
		got, err := ParseMinuteOfDay(tc.input)
		require.NoError(t, err, "input %q", tc.input)
		assert.Equal(t, tc.want, got, "input %q", tc.input)
	}

	for _, input := range []string{"", "noon", "24:00", "10:60", "-1:30", "10"} {
		_, err := ParseMinuteOfDay(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestFormatMinuteOfDay(t *testing.T) {
	assert.Equal(t, "00:00", FormatMinuteOfDay(0))
	assert.Equal(t, "09:05", FormatMinuteOfDay(545))
	assert.Equal(t, "23:59", FormatMinuteOfDay(1439))
}

func TestParseDuration(t *testing.T) {
	assert.Equal(t, time.Hour, ParseDuration("1h", time.Minute))
	assert.Equal(t, time.Minute, ParseDuration("not-a-duration", time.Minute))
}

func TestCalculateOffsetLimit(t *testing.T) {
	offset, limit := CalculateOffsetLimit(3, 20)
	assert.Equal(t, uint64(40), offset)
	assert.Equal(t, 20, limit)

	// Out-of-range inputs fall back to defaults.
	offset, limit = CalculateOffsetLimit(0, 500)
	assert.Equal(t, uint64(0), offset)
	assert.Equal(t, DefaultPageSize, limit)
}

func TestNewPaginationInfo(t *testing.T) {
	info := NewPaginationInfo(45, 2, 20)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 3, info.TotalPages)
	assert.Equal(t, 20, info.PageSize)
	assert.Equal(t, int64(45), info.TotalItems)

	empty := NewPaginationInfo(0, 1, 20)
	assert.Equal(t, 1, empty.TotalPages)

	clamped := NewPaginationInfo(10, 9, 20)
	assert.Equal(t, 1, clamped.CurrentPage)
}
