package stats

import (
	"fmt"
	"sort"
	"time"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
)

// StreakStrategy computes the current streak of one habit from the period keys
// of its completed records.
type StreakStrategy interface {
	ComputeStreak(keys []string, createdAt time.Time, today time.Time) (int, error)
}

// StrategyFor selects the streak semantics for a habit's goal.
func StrategyFor(goal models.Goal, freq models.Frequency) (StreakStrategy, error) {
	if !freq.Valid() {
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidFrequency, string(freq))
	}
	switch goal {
	case models.GoalAchieve:
		return AchieveStrategy{Frequency: freq}, nil
	case models.GoalAvoid:
		return AvoidStrategy{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", models.ErrInvalidGoal, string(goal))
	}
}

// AchieveStrategy counts consecutive satisfied periods ending at the current
// period, or at the previous one when the current period is still open.
//
// Daily habits walk calendar days. Weekly and monthly habits walk period keys,
// since their records are stored under the period start rather than the day
// they were marked.
type AchieveStrategy struct {
	Frequency models.Frequency
}

func (s AchieveStrategy) ComputeStreak(keys []string, _ time.Time, today time.Time) (int, error) {
	done := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		done[k] = struct{}{}
	}

	if s.Frequency == models.FrequencyDaily {
		return dayWalk(done, today), nil
	}
	return periodWalk(s.Frequency, done, today)
}

func dayWalk(done map[string]struct{}, today time.Time) int {
	cursor := today
	if !has(done, period.FormatDay(cursor)) {
		cursor = cursor.AddDate(0, 0, -1)
		if !has(done, period.FormatDay(cursor)) {
			return 0
		}
	}

	streak := 0
	for has(done, period.FormatDay(cursor)) {
		streak++
		cursor = cursor.AddDate(0, 0, -1)
	}
	return streak
}

func periodWalk(freq models.Frequency, done map[string]struct{}, today time.Time) (int, error) {
	cursor, err := period.Resolve(freq, today)
	if err != nil {
		return 0, err
	}
	if !has(done, cursor) {
		if cursor, err = period.Previous(freq, cursor); err != nil {
			return 0, err
		}
		if !has(done, cursor) {
			return 0, nil
		}
	}

	streak := 0
	for has(done, cursor) {
		streak++
		if cursor, err = period.Previous(freq, cursor); err != nil {
			return 0, err
		}
	}
	return streak, nil
}

// AvoidStrategy reports the number of days since the most recent relapse, or
// since the habit was created when it has never been marked. Never negative.
type AvoidStrategy struct{}

func (AvoidStrategy) ComputeStreak(keys []string, createdAt time.Time, today time.Time) (int, error) {
	sorted := append([]string(nil), keys...)
	sort.Sort(sort.Reverse(sort.StringSlice(sorted)))

	since := createdAt
	for _, k := range sorted {
		d, err := period.ParseDay(k)
		if err != nil {
			continue
		}
		since = d
		break
	}

	days := period.DaysBetween(since, today)
	if days < 0 {
		days = 0
	}
	return days, nil
}

func has(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
