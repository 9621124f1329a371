// Package stats derives per-habit statistics (streak, total completions and
// whether the current period is satisfied) from raw completion records.
package stats

import (
	"sort"
	"time"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
)

// Aggregator computes stats relative to a user's timezone. The location is
// only used to turn a habit's creation timestamp into a calendar date.
type Aggregator struct {
	Location *time.Location
}

func New(loc *time.Location) *Aggregator {
	if loc == nil {
		loc = time.Local
	}
	return &Aggregator{Location: loc}
}

// Compute returns the stats for habit given completion records, which may
// include records of other habits. A nil habit (deleted while computing)
// yields zero stats and no error.
func (a *Aggregator) Compute(habit *models.Habit, completions []models.HabitCompletion, today time.Time) (models.Stats, error) {
	if habit == nil {
		return models.Stats{}, nil
	}

	var keys []string
	for _, c := range completions {
		if c.HabitID == habit.ID && c.Completed {
			keys = append(keys, c.Date)
		}
	}
	return a.compute(*habit, keys, today)
}

// ComputeAll computes stats for every habit in one pass over completions.
// Completions whose habit no longer exists are ignored.
func (a *Aggregator) ComputeAll(habits []models.Habit, completions map[string]models.HabitCompletion, today time.Time) (map[string]models.Stats, error) {
	byHabit := make(map[string][]string, len(habits))
	for _, c := range completions {
		if c.Completed {
			byHabit[c.HabitID] = append(byHabit[c.HabitID], c.Date)
		}
	}

	out := make(map[string]models.Stats, len(habits))
	for _, h := range habits {
		s, err := a.compute(h, byHabit[h.ID], today)
		if err != nil {
			return nil, err
		}
		out[h.ID] = s
	}
	return out, nil
}

func (a *Aggregator) compute(habit models.Habit, keys []string, today time.Time) (models.Stats, error) {
	strategy, err := StrategyFor(habit.Goal, habit.Frequency)
	if err != nil {
		return models.Stats{}, err
	}

	// lexicographic order of YYYY-MM-DD keys is chronological
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))

	streak, err := strategy.ComputeStreak(keys, habit.CreatedTime(a.Location), today)
	if err != nil {
		return models.Stats{}, err
	}

	current, err := period.Resolve(habit.Frequency, today)
	if err != nil {
		return models.Stats{}, err
	}

	stats := models.Stats{
		Streak:           streak,
		TotalCompletions: len(keys),
	}
	if len(keys) > 0 {
		stats.LastCompleted = keys[0]
	}
	for _, k := range keys {
		if k == current {
			stats.PeriodCompleted = true
			break
		}
	}
	return stats, nil
}
