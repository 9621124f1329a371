package models

// Settings represents application-wide settings
type Settings struct {
	Timezone      string `json:"timezone"`       // IANA timezone name (e.g. "America/New_York", or "Local" for system timezone)
	HistoryDays   int    `json:"history_days"`   // number of days shown by the history view
	CascadeDelete bool   `json:"cascade_delete"` // whether deleting a habit also deletes its completions
}
