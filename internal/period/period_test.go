package period

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitara/internal/models"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDay(s)
	require.NoError(t, err)
	return d
}

func TestResolveDailyIsIdentity(t *testing.T) {
	start := day(t, "2024-02-25")
	for i := 0; i < 400; i++ {
		d := start.AddDate(0, 0, i)
		key, err := Resolve(models.FrequencyDaily, d)
		require.NoError(t, err)
		assert.Equal(t, d.Format("2006-01-02"), key)
	}
}

func TestResolveWeeklyStartsOnMonday(t *testing.T) {
	tests := []struct {
		day  string
		want string
	}{
		{"2025-08-18", "2025-08-18"}, // Monday
		{"2025-08-20", "2025-08-18"},
		{"2025-08-24", "2025-08-18"}, // Sunday belongs to the preceding Monday
		{"2025-08-25", "2025-08-25"},
		{"2025-01-01", "2024-12-30"}, // crosses the year boundary
		{"2024-03-01", "2024-02-26"}, // leap year
	}

	for _, tt := range tests {
		t.Run(tt.day, func(t *testing.T) {
			key, err := Resolve(models.FrequencyWeekly, day(t, tt.day))
			require.NoError(t, err)
			assert.Equal(t, tt.want, key)
		})
	}
}

func TestResolveWeeklySameKeyAllWeek(t *testing.T) {
	monday := day(t, "2025-08-18")
	for i := 0; i < 7; i++ {
		key, err := Resolve(models.FrequencyWeekly, monday.AddDate(0, 0, i))
		require.NoError(t, err)
		assert.Equal(t, "2025-08-18", key, "offset %d", i)
	}
	next, err := Resolve(models.FrequencyWeekly, monday.AddDate(0, 0, 7))
	require.NoError(t, err)
	assert.Equal(t, "2025-08-25", next)
}

func TestResolveMonthly(t *testing.T) {
	key, err := Resolve(models.FrequencyMonthly, day(t, "2025-08-31"))
	require.NoError(t, err)
	assert.Equal(t, "2025-08-01", key)

	key, err = Resolve(models.FrequencyMonthly, day(t, "2024-02-29"))
	require.NoError(t, err)
	assert.Equal(t, "2024-02-01", key)
}

func TestResolveUsesCalendarDateOfLocation(t *testing.T) {
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	// 2025-08-24 23:30 UTC is already Monday 2025-08-25 in Tokyo.
	instant := time.Date(2025, 8, 24, 23, 30, 0, 0, time.UTC)
	key, err := Resolve(models.FrequencyWeekly, instant.In(tokyo))
	require.NoError(t, err)
	assert.Equal(t, "2025-08-25", key)

	key, err = Resolve(models.FrequencyWeekly, instant)
	require.NoError(t, err)
	assert.Equal(t, "2025-08-18", key)
}

func TestResolveRejectsUnknownFrequency(t *testing.T) {
	_, err := Resolve(models.Frequency("yearly"), day(t, "2025-08-18"))
	require.ErrorIs(t, err, models.ErrInvalidFrequency)
	assert.Contains(t, err.Error(), "yearly")
}

func TestPrevious(t *testing.T) {
	tests := []struct {
		freq models.Frequency
		key  string
		want string
	}{
		{models.FrequencyDaily, "2025-03-01", "2025-02-28"},
		{models.FrequencyWeekly, "2025-08-18", "2025-08-11"},
		{models.FrequencyWeekly, "2025-08-21", "2025-08-11"},
		{models.FrequencyMonthly, "2025-03-01", "2025-02-01"},
		{models.FrequencyMonthly, "2025-01-01", "2024-12-01"},
	}
	for _, tt := range tests {
		got, err := Previous(tt.freq, tt.key)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "%s %s", tt.freq, tt.key)
	}

	_, err := Previous(models.FrequencyDaily, "not-a-date")
	assert.Error(t, err)
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 15, DaysBetween(day(t, "2025-08-10"), day(t, "2025-08-25")))
	assert.Equal(t, 0, DaysBetween(day(t, "2025-08-25"), day(t, "2025-08-25")))
	assert.Equal(t, -1, DaysBetween(day(t, "2025-08-25"), day(t, "2025-08-24")))

	// DST transitions never shift the count.
	ny, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	from := time.Date(2025, 3, 8, 12, 0, 0, 0, ny)
	to := time.Date(2025, 3, 10, 0, 30, 0, 0, ny)
	assert.Equal(t, 2, DaysBetween(from, to))
}

func TestToday(t *testing.T) {
	now := time.Date(2025, 8, 24, 23, 30, 0, 0, time.UTC)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)

	assert.Equal(t, "2025-08-25", FormatDay(Today(tokyo, now)))
	assert.Equal(t, "2025-08-24", FormatDay(Today(time.UTC, now)))
}

func TestContains(t *testing.T) {
	ok, err := Contains(models.FrequencyMonthly, "2025-08-01", day(t, "2025-08-17"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = Contains(models.FrequencyMonthly, "2025-08-01", day(t, "2025-09-01"))
	require.NoError(t, err)
	assert.False(t, ok)
}
