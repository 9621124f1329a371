package constants

const (
	// DisplayDateFormat is the short, human readable day used in listings
	DisplayDateFormat = "Mon Jan 2"

	// HistoryDateFormat is the weekday + month/day column in history output
	HistoryDateFormat = "Mon 01/02"
)
