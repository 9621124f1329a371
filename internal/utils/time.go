package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/models"
)

// LoadLocation loads a timezone location from an IANA timezone name.
// If the timezone is "Local" or empty, it returns the system's local timezone.
func LoadLocation(timezone string) (*time.Location, error) {
	if timezone == "" || timezone == "Local" {
		return time.Local, nil
	}
	return time.LoadLocation(timezone)
}

// LocationFromSettings returns the user's configured location.
func LocationFromSettings(settings models.Settings) (*time.Location, error) {
	loc, err := LoadLocation(settings.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", settings.Timezone, err)
	}
	return loc, nil
}

// NowInTimezone returns the current time in the specified timezone.
func NowInTimezone(timezone string) (time.Time, error) {
	loc, err := LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timezone %q: %w", timezone, err)
	}
	return time.Now().In(loc), nil
}

// GetTodayInTimezone returns today's date string (YYYY-MM-DD) in the specified timezone.
// "Today" is the user's calendar day, not the system's.
func GetTodayInTimezone(timezone string) (string, error) {
	now, err := NowInTimezone(timezone)
	if err != nil {
		return "", err
	}
	return now.Format(constants.DateFormat), nil
}

// ParseDateInLocation parses a date string (YYYY-MM-DD) in the specified timezone.
func ParseDateInLocation(dateStr string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(constants.DateFormat, dateStr)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}

// ParseDayFlag resolves the --date value accepted by mark, unmark and note.
// Besides YYYY-MM-DD it accepts "today", "yesterday" and a negative day
// offset such as "-3". An empty value means today.
func ParseDayFlag(value string, now time.Time) (time.Time, error) {
	loc := now.Location()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, loc)

	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "today":
		return today, nil
	case "yesterday":
		return today.AddDate(0, 0, -1), nil
	}

	if strings.HasPrefix(v, "-") {
		n, err := strconv.Atoi(v)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid day offset %q", value)
		}
		return today.AddDate(0, 0, n), nil
	}

	day, err := ParseDateInLocation(v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q (expected YYYY-MM-DD, today, yesterday or -N)", value)
	}
	if day.After(today) {
		return time.Time{}, fmt.Errorf("date %s is in the future", v)
	}
	return day, nil
}

// ValidateTimezone reports whether timezone is "Local", empty or a valid IANA name.
func ValidateTimezone(timezone string) bool {
	_, err := LoadLocation(timezone)
	return err == nil
}
