package utils

import (
	"testing"
	"time"

	"github.com/julianstephens/habitara/internal/models"
)

func TestLoadLocation(t *testing.T) {
	tests := []struct {
		name     string
		timezone string
		wantErr  bool
	}{
		{name: "empty string returns local", timezone: ""},
		{name: "Local returns local", timezone: "Local"},
		{name: "valid timezone UTC", timezone: "UTC"},
		{name: "valid timezone America/New_York", timezone: "America/New_York"},
		{name: "valid timezone Asia/Tokyo", timezone: "Asia/Tokyo"},
		{name: "invalid timezone", timezone: "Invalid/Timezone", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loc, err := LoadLocation(tt.timezone)
			if (err != nil) != tt.wantErr {
				t.Errorf("LoadLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && loc == nil {
				t.Errorf("LoadLocation() returned nil location without error")
			}
		})
	}
}

func TestLocationFromSettings(t *testing.T) {
	loc, err := LocationFromSettings(models.Settings{Timezone: "Europe/London"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loc.String() != "Europe/London" {
		t.Errorf("location = %v, want Europe/London", loc)
	}

	if _, err := LocationFromSettings(models.Settings{Timezone: "Mars/Olympus"}); err == nil {
		t.Error("expected error for unknown timezone")
	}
}

func TestNowInTimezone(t *testing.T) {
	now, err := NowInTimezone("America/New_York")
	if err != nil {
		t.Fatalf("NowInTimezone() error = %v", err)
	}
	if now.IsZero() {
		t.Errorf("NowInTimezone() returned zero time")
	}
	if now.Location().String() != "America/New_York" {
		t.Errorf("NowInTimezone() location = %v, want America/New_York", now.Location())
	}

	if _, err := NowInTimezone("Invalid/Timezone"); err == nil {
		t.Error("expected error for invalid timezone")
	}
}

func TestGetTodayInTimezone(t *testing.T) {
	got, err := GetTodayInTimezone("UTC")
	if err != nil {
		t.Fatalf("GetTodayInTimezone() error = %v", err)
	}
	if _, err := time.Parse("2006-01-02", got); err != nil {
		t.Errorf("GetTodayInTimezone() = %q, not a YYYY-MM-DD day", got)
	}
}

func TestParseDateInLocation(t *testing.T) {
	est, _ := time.LoadLocation("America/New_York")

	tests := []struct {
		name    string
		dateStr string
		want    string
		wantErr bool
	}{
		{name: "valid date", dateStr: "2025-12-31", want: "2025-12-31"},
		{name: "leap day", dateStr: "2024-02-29", want: "2024-02-29"},
		{name: "invalid format", dateStr: "2026/01/15", wantErr: true},
		{name: "invalid date", dateStr: "2026-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDateInLocation(tt.dateStr, est)
			if (err != nil) != tt.wantErr {
				t.Errorf("ParseDateInLocation() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if tt.wantErr {
				return
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDateInLocation() = %v, want %v", got, tt.want)
			}
			if got.Hour() != 0 || got.Location() != est {
				t.Errorf("ParseDateInLocation() = %v, want midnight in %v", got, est)
			}
		})
	}
}

func TestParseDayFlag(t *testing.T) {
	tokyo, _ := time.LoadLocation("Asia/Tokyo")
	// 23:30 in Tokyo is still the previous day in UTC
	now := time.Date(2025, time.August, 20, 23, 30, 0, 0, tokyo)

	tests := []struct {
		name    string
		value   string
		want    string
		wantErr bool
	}{
		{name: "empty is today", value: "", want: "2025-08-20"},
		{name: "today", value: "today", want: "2025-08-20"},
		{name: "yesterday", value: "Yesterday", want: "2025-08-19"},
		{name: "offset", value: "-7", want: "2025-08-13"},
		{name: "explicit day", value: "2025-08-01", want: "2025-08-01"},
		{name: "future day", value: "2025-08-21", wantErr: true},
		{name: "bad offset", value: "-x", wantErr: true},
		{name: "garbage", value: "soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDayFlag(tt.value, now)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDayFlag(%q) error = %v, wantErr %v", tt.value, err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}
			if got.Format("2006-01-02") != tt.want {
				t.Errorf("ParseDayFlag(%q) = %s, want %s", tt.value, got.Format("2006-01-02"), tt.want)
			}
		})
	}
}

func TestValidateTimezone(t *testing.T) {
	tests := []struct {
		timezone string
		want     bool
	}{
		{"", true},
		{"Local", true},
		{"UTC", true},
		{"Europe/London", true},
		{"Invalid/Timezone", false},
		{"not-a-timezone", false},
	}

	for _, tt := range tests {
		t.Run(tt.timezone, func(t *testing.T) {
			if got := ValidateTimezone(tt.timezone); got != tt.want {
				t.Errorf("ValidateTimezone(%q) = %v, want %v", tt.timezone, got, tt.want)
			}
		})
	}
}
