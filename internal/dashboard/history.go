package dashboard

import (
	"time"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
)

// HistoryDay lists what was satisfied on one calendar day.
type HistoryDay struct {
	Day       time.Time
	Key       string
	Completed []models.Habit
	// Active is the number of active habits the day is measured against.
	Active int
}

// History walks back days calendar days from today, newest first. A habit is
// listed on a day when the period containing that day is satisfied, so a
// weekly habit shows on every day of a completed week. Only active habits
// are considered; completions of deleted habits are ignored.
func History(habits []models.Habit, completions map[string]models.HabitCompletion, today time.Time, days int) ([]HistoryDay, error) {
	if days <= 0 {
		return []HistoryDay{}, nil
	}

	start := period.Today(today.Location(), today)
	active := ActiveCount(habits)
	out := make([]HistoryDay, 0, days)
	for i := 0; i < days; i++ {
		d := start.AddDate(0, 0, -i)
		row := HistoryDay{Day: d, Key: period.FormatDay(d), Active: active}
		for _, h := range habits {
			if !h.Active {
				continue
			}
			ok, err := PeriodSatisfied(h, d, completions)
			if err != nil {
				return nil, err
			}
			if ok {
				row.Completed = append(row.Completed, h)
			}
		}
		out = append(out, row)
	}
	return out, nil
}
