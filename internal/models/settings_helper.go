package models

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/habitara/internal/constants"
)

// MapToSettings converts a map of key-value pairs to a Settings struct.
// Keys that are absent keep their default values.
func MapToSettings(data map[string]string) (Settings, error) {
	settings := DefaultSettings()

	for key, value := range data {
		switch key {
		case constants.SettingTimezone:
			settings.Timezone = value
		case constants.SettingHistoryDays:
			n, err := strconv.Atoi(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing history_days: %w", err)
			}
			settings.HistoryDays = n
		case constants.SettingCascadeDelete:
			b, err := strconv.ParseBool(value)
			if err != nil {
				return Settings{}, fmt.Errorf("parsing cascade_delete: %w", err)
			}
			settings.CascadeDelete = b
		}
	}
	ApplyDefaultSettings(&settings)
	return settings, nil
}

// SettingsToMap converts a Settings struct to a map of key-value pairs.
func SettingsToMap(settings Settings) map[string]string {
	return map[string]string{
		constants.SettingTimezone:      settings.Timezone,
		constants.SettingHistoryDays:   strconv.Itoa(settings.HistoryDays),
		constants.SettingCascadeDelete: strconv.FormatBool(settings.CascadeDelete),
	}
}

// DefaultSettings returns the settings a fresh store is initialized with.
func DefaultSettings() Settings {
	return Settings{
		Timezone:      constants.DefaultTimezone,
		HistoryDays:   constants.DefaultHistoryDays,
		CascadeDelete: constants.DefaultCascadeDelete,
	}
}

// ApplyDefaultSettings applies default values to missing settings.
func ApplyDefaultSettings(settings *Settings) {
	if settings.Timezone == "" {
		settings.Timezone = constants.DefaultTimezone
	}
	if settings.HistoryDays <= 0 {
		settings.HistoryDays = constants.DefaultHistoryDays
	}
	if settings.HistoryDays > constants.MaxHistoryDays {
		settings.HistoryDays = constants.MaxHistoryDays
	}
}
