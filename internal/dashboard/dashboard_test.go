package dashboard

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitara/internal/models"
)

func mustDay(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return d
}

func done(habit models.Habit, key string) models.HabitCompletion {
	return models.HabitCompletion{
		ID:        models.CompletionID(habit.ID, key),
		HabitID:   habit.ID,
		Date:      key,
		Completed: true,
		Frequency: habit.Frequency,
	}
}

func index(cs ...models.HabitCompletion) map[string]models.HabitCompletion {
	m := make(map[string]models.HabitCompletion, len(cs))
	for _, c := range cs {
		m[c.ID] = c
	}
	return m
}

func TestGroup(t *testing.T) {
	habits := []models.Habit{
		{ID: "a", Frequency: models.FrequencyDaily, Active: true},
		{ID: "b", Frequency: models.FrequencyWeekly, Active: true},
		{ID: "c", Frequency: models.FrequencyDaily, Active: false},
	}

	g := Group(habits)
	assert.Equal(t, []models.Habit{habits[0]}, g.Daily)
	assert.Equal(t, []models.Habit{habits[1]}, g.Weekly)
	assert.Empty(t, g.Monthly)
	assert.Equal(t, []models.Habit{habits[2]}, g.Archived)
	assert.Equal(t, []models.Habit{habits[0], habits[1]}, g.Active)

	for _, freq := range models.Frequencies {
		for _, h := range g.ByFrequency(freq) {
			assert.True(t, h.Active, "archived habit %s in %s group", h.ID, freq)
		}
	}
	assert.Equal(t, 2, ActiveCount(habits))
}

func TestGroupPreservesOrder(t *testing.T) {
	habits := []models.Habit{
		{ID: "m2", Frequency: models.FrequencyMonthly, Active: true},
		{ID: "m1", Frequency: models.FrequencyMonthly, Active: true},
	}
	g := Group(habits)
	require.Len(t, g.Monthly, 2)
	assert.Equal(t, "m2", g.Monthly[0].ID)
	assert.Equal(t, "m1", g.Monthly[1].ID)
}

func TestProjectDayWeeklyHabit(t *testing.T) {
	weekly := models.Habit{ID: "w", Frequency: models.FrequencyWeekly, Active: true}
	completions := index(done(weekly, "2025-08-18"))

	for d := mustDay(t, "2025-08-18"); !d.After(mustDay(t, "2025-08-24")); d = d.AddDate(0, 0, 1) {
		view, err := ProjectDay(d, []models.Habit{weekly}, completions)
		require.NoError(t, err)
		assert.NotNil(t, view["w"], "expected satisfied on %s", d.Format("2006-01-02"))
	}

	view, err := ProjectDay(mustDay(t, "2025-08-25"), []models.Habit{weekly}, completions)
	require.NoError(t, err)
	assert.Contains(t, view, "w")
	assert.Nil(t, view["w"])
}

func TestProjectDaySkipsArchivedAndUncompleted(t *testing.T) {
	daily := models.Habit{ID: "d", Frequency: models.FrequencyDaily, Active: true}
	archived := models.Habit{ID: "x", Frequency: models.FrequencyDaily, Active: false}
	stale := done(daily, "2025-08-20")
	stale.Completed = false

	view, err := ProjectDay(mustDay(t, "2025-08-20"), []models.Habit{daily, archived},
		index(stale, done(archived, "2025-08-20")))
	require.NoError(t, err)
	assert.NotContains(t, view, "x")
	assert.Nil(t, view["d"])
}

func TestProjectDayInvalidFrequency(t *testing.T) {
	_, err := ProjectDay(mustDay(t, "2025-08-20"),
		[]models.Habit{{ID: "bad", Frequency: "hourly", Active: true}}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidFrequency)
}

func TestPeriodSatisfiedMonthly(t *testing.T) {
	monthly := models.Habit{ID: "m", Frequency: models.FrequencyMonthly, Active: true}
	completions := index(done(monthly, "2025-08-01"))

	ok, err := PeriodSatisfied(monthly, mustDay(t, "2025-08-31"), completions)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = PeriodSatisfied(monthly, mustDay(t, "2025-09-01"), completions)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHistory(t *testing.T) {
	daily := models.Habit{ID: "d", Name: "Read", Frequency: models.FrequencyDaily, Active: true}
	weekly := models.Habit{ID: "w", Name: "Review", Frequency: models.FrequencyWeekly, Active: true}
	archived := models.Habit{ID: "x", Frequency: models.FrequencyDaily, Active: false}
	completions := index(
		done(daily, "2025-08-20"),
		done(weekly, "2025-08-18"),
		done(archived, "2025-08-19"),
		// orphan from a deleted habit
		models.HabitCompletion{ID: "gone_2025-08-19", HabitID: "gone", Date: "2025-08-19", Completed: true},
	)

	rows, err := History([]models.Habit{daily, weekly, archived}, completions, mustDay(t, "2025-08-20"), 4)
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "2025-08-20", rows[0].Key)
	assert.Equal(t, []models.Habit{daily, weekly}, rows[0].Completed)
	assert.Equal(t, 2, rows[0].Active)

	assert.Equal(t, "2025-08-19", rows[1].Key)
	assert.Equal(t, []models.Habit{weekly}, rows[1].Completed)

	assert.Equal(t, "2025-08-18", rows[2].Key)
	assert.Equal(t, []models.Habit{weekly}, rows[2].Completed)

	// Sunday of the previous week
	assert.Equal(t, "2025-08-17", rows[3].Key)
	assert.Empty(t, rows[3].Completed)
}

func TestHistoryZeroDays(t *testing.T) {
	rows, err := History(nil, nil, mustDay(t, "2025-08-20"), 0)
	require.NoError(t, err)
	assert.Empty(t, rows)
}
