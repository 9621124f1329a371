package models

// HabitCompletion records that a habit was satisfied for one period.
// A missing record means "not completed"; un-marking deletes the record.
type HabitCompletion struct {
	ID          string    `json:"id" yaml:"id"`
	HabitID     string    `json:"habit_id" yaml:"habit_id"`
	Date        string    `json:"date" yaml:"date"` // period key, YYYY-MM-DD
	Completed   bool      `json:"completed" yaml:"completed"`
	Frequency   Frequency `json:"frequency" yaml:"frequency"`
	CompletedAt int64     `json:"completed_at" yaml:"completed_at"` // epoch milliseconds
	Details     string    `json:"details,omitempty" yaml:"details,omitempty"`
}

// CompletionID builds the composite key {habitID}_{periodKey}.
func CompletionID(habitID, periodKey string) string {
	return habitID + "_" + periodKey
}

// Stats are the derived per-habit numbers shown next to a habit.
type Stats struct {
	Streak           int    `json:"streak" yaml:"streak"`
	TotalCompletions int    `json:"total_completions" yaml:"total_completions"`
	PeriodCompleted  bool   `json:"period_completed" yaml:"period_completed"`
	LastCompleted    string `json:"last_completed,omitempty" yaml:"last_completed,omitempty"`
}
