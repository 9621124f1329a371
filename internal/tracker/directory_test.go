package tracker

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage/memory"
)

func TestCreateHabitDefaults(t *testing.T) {
	s := openSession(t, memory.New())

	h, err := s.CreateHabit(context.Background(), models.Habit{Name: "Journal", Frequency: models.FrequencyMonthly})
	require.NoError(t, err)
	assert.NotEmpty(t, h.ID)
	assert.True(t, h.Active)
	assert.Equal(t, models.GoalAchieve, h.Goal)
	assert.Equal(t, fixedNow.UnixMilli(), h.CreatedAt)
}

func TestCreateHabitRejectsBadEnumerations(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())

	_, err := s.CreateHabit(ctx, models.Habit{Name: "x", Frequency: "hourly"})
	assert.ErrorIs(t, err, models.ErrInvalidFrequency)

	_, err = s.CreateHabit(ctx, models.Habit{Name: "x", Frequency: models.FrequencyDaily, Goal: "maybe"})
	assert.ErrorIs(t, err, models.ErrInvalidGoal)

	assert.Empty(t, s.Habits())
}

func TestHabitsSortedByCreation(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())

	_, err := s.CreateHabit(ctx, models.Habit{Name: "Later", Frequency: models.FrequencyDaily, CreatedAt: 2000})
	require.NoError(t, err)
	_, err = s.CreateHabit(ctx, models.Habit{Name: "Earlier", Frequency: models.FrequencyDaily, CreatedAt: 1000})
	require.NoError(t, err)

	habits := s.Habits()
	require.Len(t, habits, 2)
	assert.Equal(t, "Earlier", habits[0].Name)
	assert.Equal(t, "Later", habits[1].Name)
}

func TestUpdateAndArchive(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Smoke", models.FrequencyDaily)

	goal := models.GoalAvoid
	require.NoError(t, s.UpdateHabit(ctx, h.ID, models.HabitPatch{Goal: &goal}))
	require.NoError(t, s.SetActive(ctx, h.ID, false))

	got, ok := s.FindHabit(h.ID)
	require.True(t, ok)
	assert.Equal(t, models.GoalAvoid, got.Goal)
	assert.False(t, got.Active)

	assert.ErrorIs(t, s.SetActive(ctx, "ghost", true), models.ErrHabitNotFound)

	bad := models.Frequency("yearly")
	assert.ErrorIs(t, s.UpdateHabit(ctx, h.ID, models.HabitPatch{Frequency: &bad}), models.ErrInvalidFrequency)
}

func TestFrequencyChangeDoesNotRekey(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Review", models.FrequencyDaily)
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))

	weekly := models.FrequencyWeekly
	require.NoError(t, s.UpdateHabit(ctx, h.ID, models.HabitPatch{Frequency: &weekly}))

	completions := s.Completions()
	assert.Contains(t, completions, h.ID+"_2025-08-20")
	assert.NotContains(t, completions, h.ID+"_2025-08-18")
}

func TestFindHabitByName(t *testing.T) {
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Drink Water", models.FrequencyDaily)

	got, ok := s.FindHabit(" drink water ")
	require.True(t, ok)
	assert.Equal(t, h.ID, got.ID)

	_, ok = s.FindHabit("nothing")
	assert.False(t, ok)
}

func TestDeleteHabit(t *testing.T) {
	tests := []struct {
		name      string
		cascade   bool
		removed   int
		remaining int
	}{
		{"cascade", true, 2, 0},
		{"orphans kept", false, 0, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := memory.New()
			s := openSession(t, store, WithCascadeDelete(tt.cascade))
			h := addHabit(t, s, "Run", models.FrequencyDaily)
			require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-19"), true))
			require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))

			removed, err := s.DeleteHabit(ctx, h.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.removed, removed)
			assert.Empty(t, s.Habits())
			assert.Len(t, s.Completions(), tt.remaining)

			stored, err := store.ForUser("alice").ListCompletions(ctx)
			require.NoError(t, err)
			assert.Len(t, stored, tt.remaining)

			_, err = s.DeleteHabit(ctx, h.ID)
			assert.ErrorIs(t, err, models.ErrHabitNotFound)
		})
	}
}

func TestSnapshotIsolation(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Read", models.FrequencyDaily)

	snap := s.Snapshot()
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))

	assert.Empty(t, snap.Completions, "published snapshots must not change")

	copied := s.Completions()
	delete(copied, h.ID+"_2025-08-20")
	assert.Len(t, s.Completions(), 1)
}
