// Package period maps a habit frequency and a calendar day onto the canonical
// period key that completions are stored under.
//
// Keys are YYYY-MM-DD strings: the day itself for daily habits, the Monday that
// starts the ISO week for weekly habits and the first of the month for monthly
// habits. Because the format is fixed-width, lexicographic order of keys matches
// chronological order.
package period

import (
	"fmt"
	"time"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/models"
)

// Resolve returns the period key for the period of freq that contains day.
// The calendar date is read in day's own location.
func Resolve(freq models.Frequency, day time.Time) (string, error) {
	start, err := Start(freq, day)
	if err != nil {
		return "", err
	}
	return start.Format(constants.DateFormat), nil
}

// Start returns the first day of the period containing day as a UTC civil date.
func Start(freq models.Frequency, day time.Time) (time.Time, error) {
	d := civil(day)
	switch freq {
	case models.FrequencyDaily:
		return d, nil
	case models.FrequencyWeekly:
		// Monday = 0 ... Sunday = 6
		offset := (int(d.Weekday()) + 6) % 7
		return d.AddDate(0, 0, -offset), nil
	case models.FrequencyMonthly:
		return time.Date(d.Year(), d.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", models.ErrInvalidFrequency, string(freq))
	}
}

// Previous returns the key of the period immediately before the one containing key.
func Previous(freq models.Frequency, key string) (string, error) {
	d, err := ParseDay(key)
	if err != nil {
		return "", err
	}
	start, err := Start(freq, d)
	if err != nil {
		return "", err
	}

	var prev time.Time
	switch freq {
	case models.FrequencyDaily:
		prev = start.AddDate(0, 0, -1)
	case models.FrequencyWeekly:
		prev = start.AddDate(0, 0, -7)
	case models.FrequencyMonthly:
		prev = start.AddDate(0, -1, 0)
	}
	return prev.Format(constants.DateFormat), nil
}

// Contains reports whether day falls in the period identified by key.
func Contains(freq models.Frequency, key string, day time.Time) (bool, error) {
	k, err := Resolve(freq, day)
	if err != nil {
		return false, err
	}
	return k == key, nil
}

// ParseDay parses a YYYY-MM-DD string into a UTC civil date.
func ParseDay(s string) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD): %w", s, err)
	}
	return t, nil
}

// FormatDay formats the calendar date of t (in t's location) as YYYY-MM-DD.
func FormatDay(t time.Time) string {
	return civil(t).Format(constants.DateFormat)
}

// DaysBetween returns the number of calendar days from `from` to `to`.
// It is negative when to is before from.
func DaysBetween(from, to time.Time) int {
	return int(civil(to).Sub(civil(from)) / (24 * time.Hour))
}

// Today returns the current calendar date in loc as a UTC civil date.
func Today(loc *time.Location, now time.Time) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return civil(now.In(loc))
}

func civil(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
