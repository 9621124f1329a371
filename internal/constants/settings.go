package constants

const (
	SettingTimezone      = "timezone"
	SettingHistoryDays   = "history_days"
	SettingCascadeDelete = "cascade_delete"

	// Default Settings Values
	DefaultTimezone      = "Local" // Use system local timezone by default
	DefaultHistoryDays   = 14
	DefaultCascadeDelete = true
	MaxHistoryDays       = 366
)
