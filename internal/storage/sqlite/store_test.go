package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
)

func setupTestSQLiteStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "habitara.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestInitWritesDefaultSettings(t *testing.T) {
	store := setupTestSQLiteStore(t)

	settings, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if settings != models.DefaultSettings() {
		t.Errorf("expected default settings, got %+v", settings)
	}

	settings.HistoryDays = 30
	settings.CascadeDelete = false
	settings.Timezone = "America/New_York"
	if err := store.SaveSettings(settings); err != nil {
		t.Fatalf("SaveSettings failed: %v", err)
	}
	got, err := store.GetSettings()
	if err != nil {
		t.Fatalf("GetSettings failed: %v", err)
	}
	if got != settings {
		t.Errorf("expected %+v, got %+v", settings, got)
	}
}

func TestLoadRequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	if err := store.Load(); err == nil {
		t.Error("expected error loading uninitialized store")
	}
}

func TestHabitLifecycle(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)
	u := store.ForUser("alice")

	created, err := u.CreateHabit(ctx, models.Habit{
		Name:      "Read",
		Frequency: models.FrequencyDaily,
		Active:    true,
		CreatedAt: 1000,
	})
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("expected generated id")
	}
	if created.Goal != models.GoalAchieve {
		t.Errorf("expected default goal achieve, got %s", created.Goal)
	}

	name := "Read books"
	active := false
	updated, err := u.UpdateHabit(ctx, created.ID, models.HabitPatch{Name: &name, Active: &active})
	if err != nil {
		t.Fatalf("UpdateHabit failed: %v", err)
	}
	if updated.Name != name || updated.Active {
		t.Errorf("patch not applied: %+v", updated)
	}

	habits, err := u.ListHabits(ctx)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(habits) != 1 || habits[0] != updated {
		t.Errorf("expected stored habit %+v, got %+v", updated, habits)
	}

	if _, err := u.UpdateHabit(ctx, "nope", models.HabitPatch{Name: &name}); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUsersArePartitioned(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)

	if _, err := store.ForUser("alice").CreateHabit(ctx, models.Habit{ID: "h1", Name: "Run", Frequency: models.FrequencyDaily, Active: true}); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	if err := store.ForUser("alice").UpsertCompletion(ctx, models.HabitCompletion{ID: "h1_2024-03-14", HabitID: "h1", Date: "2024-03-14", Completed: true, Frequency: models.FrequencyDaily}); err != nil {
		t.Fatalf("UpsertCompletion failed: %v", err)
	}

	bob := store.ForUser("bob")
	habits, err := bob.ListHabits(ctx)
	if err != nil {
		t.Fatalf("ListHabits failed: %v", err)
	}
	if len(habits) != 0 {
		t.Errorf("expected no habits for bob, got %d", len(habits))
	}
	completions, err := bob.ListCompletions(ctx)
	if err != nil {
		t.Fatalf("ListCompletions failed: %v", err)
	}
	if len(completions) != 0 {
		t.Errorf("expected no completions for bob, got %d", len(completions))
	}

	// Same habit id under another user is a distinct record.
	if _, err := bob.CreateHabit(ctx, models.Habit{ID: "h1", Name: "Swim", Frequency: models.FrequencyWeekly, Active: true}); err != nil {
		t.Fatalf("CreateHabit for bob failed: %v", err)
	}
}

func TestCompletionUpsertPatchDelete(t *testing.T) {
	ctx := context.Background()
	store := setupTestSQLiteStore(t)
	u := store.ForUser("alice")

	c := models.HabitCompletion{
		ID:          models.CompletionID("h1", "2024-03-11"),
		HabitID:     "h1",
		Date:        "2024-03-11",
		Completed:   true,
		Frequency:   models.FrequencyWeekly,
		CompletedAt: 1710400000000,
		Details:     "first",
	}
	if err := u.UpsertCompletion(ctx, c); err != nil {
		t.Fatalf("UpsertCompletion failed: %v", err)
	}
	c.CompletedAt++
	if err := u.UpsertCompletion(ctx, c); err != nil {
		t.Fatalf("second UpsertCompletion failed: %v", err)
	}

	if err := u.PatchCompletionDetails(ctx, c.ID, "felt great"); err != nil {
		t.Fatalf("PatchCompletionDetails failed: %v", err)
	}
	if err := u.PatchCompletionDetails(ctx, "h1_2024-03-18", "x"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing completion, got %v", err)
	}

	byHabit, err := u.ListCompletionsByField(ctx, storage.CompletionFieldHabitID, "h1")
	if err != nil {
		t.Fatalf("ListCompletionsByField failed: %v", err)
	}
	if len(byHabit) != 1 {
		t.Fatalf("expected 1 completion, got %d", len(byHabit))
	}
	if byHabit[0].Details != "felt great" || byHabit[0].CompletedAt != c.CompletedAt {
		t.Errorf("unexpected stored completion: %+v", byHabit[0])
	}

	if _, err := u.ListCompletionsByField(ctx, "details", "x"); err == nil {
		t.Error("expected error for unsupported field")
	}

	if err := u.DeleteCompletion(ctx, c.ID); err != nil {
		t.Fatalf("DeleteCompletion failed: %v", err)
	}
	if err := u.DeleteCompletion(ctx, c.ID); err != nil {
		t.Errorf("deleting a missing completion should not fail: %v", err)
	}
	all, err := u.ListCompletions(ctx)
	if err != nil {
		t.Fatalf("ListCompletions failed: %v", err)
	}
	if len(all) != 0 {
		t.Errorf("expected no completions, got %d", len(all))
	}
}

func TestDeleteHabitCascade(t *testing.T) {
	tests := []struct {
		name      string
		cascade   bool
		removed   int
		remaining int
	}{
		{"cascade", true, 2, 1},
		{"keep orphans", false, 0, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := setupTestSQLiteStore(t)
			u := store.ForUser("alice")

			for _, id := range []string{"h1", "h2"} {
				if _, err := u.CreateHabit(ctx, models.Habit{ID: id, Name: id, Frequency: models.FrequencyDaily, Active: true}); err != nil {
					t.Fatalf("CreateHabit failed: %v", err)
				}
			}
			for _, c := range []struct{ habit, day string }{{"h1", "2024-03-13"}, {"h1", "2024-03-14"}, {"h2", "2024-03-14"}} {
				err := u.UpsertCompletion(ctx, models.HabitCompletion{
					ID: models.CompletionID(c.habit, c.day), HabitID: c.habit, Date: c.day,
					Completed: true, Frequency: models.FrequencyDaily,
				})
				if err != nil {
					t.Fatalf("UpsertCompletion failed: %v", err)
				}
			}

			removed, err := u.DeleteHabit(ctx, "h1", tt.cascade)
			if err != nil {
				t.Fatalf("DeleteHabit failed: %v", err)
			}
			if removed != tt.removed {
				t.Errorf("expected %d removed, got %d", tt.removed, removed)
			}
			all, err := u.ListCompletions(ctx)
			if err != nil {
				t.Fatalf("ListCompletions failed: %v", err)
			}
			if len(all) != tt.remaining {
				t.Errorf("expected %d remaining completions, got %d", tt.remaining, len(all))
			}

			if _, err := u.DeleteHabit(ctx, "h1", tt.cascade); !errors.Is(err, storage.ErrNotFound) {
				t.Errorf("expected ErrNotFound on second delete, got %v", err)
			}
		})
	}
}

func TestWatchSignalsOnWrite(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := setupTestSQLiteStore(t)

	changes, err := store.Watch(ctx)
	if err != nil {
		t.Fatalf("Watch failed: %v", err)
	}

	if _, err := store.ForUser("alice").CreateHabit(ctx, models.Habit{Name: "Stretch", Frequency: models.FrequencyDaily, Active: true}); err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}

	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("expected change notification")
	}

	cancel()
	for range changes {
	}
}
