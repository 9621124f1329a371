// Package dashboard derives the display views from a habit and completion
// snapshot. Every function is pure; callers re-run them when a new
// snapshot arrives.
package dashboard

import (
	"time"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
)

// ProjectDay maps every active habit to the completion satisfying it on day,
// or nil when the period containing day has none. Weekly and monthly habits
// report their period's record on each day of the period.
func ProjectDay(day time.Time, habits []models.Habit, completions map[string]models.HabitCompletion) (map[string]*models.HabitCompletion, error) {
	out := make(map[string]*models.HabitCompletion, len(habits))
	for _, h := range habits {
		if !h.Active {
			continue
		}
		c, err := lookup(h, day, completions)
		if err != nil {
			return nil, err
		}
		out[h.ID] = c
	}
	return out, nil
}

// PeriodSatisfied reports whether habit has a completion for the period
// containing day.
func PeriodSatisfied(habit models.Habit, day time.Time, completions map[string]models.HabitCompletion) (bool, error) {
	c, err := lookup(habit, day, completions)
	if err != nil {
		return false, err
	}
	return c != nil, nil
}

func lookup(h models.Habit, day time.Time, completions map[string]models.HabitCompletion) (*models.HabitCompletion, error) {
	key, err := period.Resolve(h.Frequency, day)
	if err != nil {
		return nil, err
	}
	c, ok := completions[models.CompletionID(h.ID, key)]
	if !ok || !c.Completed {
		return nil, nil
	}
	return &c, nil
}
