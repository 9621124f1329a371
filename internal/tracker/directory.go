package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
)

// Habits returns the directory ordered by CreatedAt, then ID.
func (s *Session) Habits() []models.Habit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Habit, len(s.habits))
	copy(out, s.habits)
	return out
}

func (s *Session) habit(id string) (models.Habit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if h.ID == id {
			return h, true
		}
	}
	return models.Habit{}, false
}

// FindHabit looks a habit up by exact ID, then by case-insensitive name.
func (s *Session) FindHabit(nameOrID string) (models.Habit, bool) {
	if h, ok := s.habit(nameOrID); ok {
		return h, true
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, h := range s.habits {
		if strings.EqualFold(h.Name, strings.TrimSpace(nameOrID)) {
			return h, true
		}
	}
	return models.Habit{}, false
}

// CreateHabit stores a new active habit. Goal defaults to achieve and
// CreatedAt to now; the store assigns the ID.
func (s *Session) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if s.isClosed() {
		return models.Habit{}, ErrSessionClosed
	}
	if !habit.Frequency.Valid() {
		return models.Habit{}, fmt.Errorf("%w: %q", models.ErrInvalidFrequency, habit.Frequency)
	}
	habit.ApplyDefaults(s.now())
	if !habit.Goal.Valid() {
		return models.Habit{}, fmt.Errorf("%w: %q", models.ErrInvalidGoal, habit.Goal)
	}
	habit.Active = true

	created, err := s.store.CreateHabit(ctx, habit)
	if err != nil {
		return models.Habit{}, storeErr("create habit", err)
	}

	s.mutate(func(h []models.Habit, _ map[string]models.HabitCompletion) []models.Habit {
		h = append(h, created)
		sortHabits(h)
		return h
	})
	logger.Info("Habit created", "id", created.ID, "name", created.Name, "frequency", created.Frequency)
	return created, nil
}

// UpdateHabit applies patch. Changing the frequency does not re-key
// completions already recorded under the old period scheme.
func (s *Session) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	if patch.Frequency != nil && !patch.Frequency.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidFrequency, *patch.Frequency)
	}
	if patch.Goal != nil && !patch.Goal.Valid() {
		return fmt.Errorf("%w: %q", models.ErrInvalidGoal, *patch.Goal)
	}
	if _, ok := s.habit(id); !ok {
		return models.ErrHabitNotFound
	}

	updated, err := s.store.UpdateHabit(ctx, id, patch)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return models.ErrHabitNotFound
		}
		return storeErr("update habit "+id, err)
	}

	s.mutate(func(h []models.Habit, _ map[string]models.HabitCompletion) []models.Habit {
		for i := range h {
			if h[i].ID == id {
				h[i] = updated
			}
		}
		return h
	})
	if patch.Frequency != nil {
		logger.Debug("Habit frequency changed; existing completions keep their keys", "id", id, "frequency", *patch.Frequency)
	}
	return nil
}

// SetActive archives (false) or restores (true) a habit.
func (s *Session) SetActive(ctx context.Context, id string, active bool) error {
	return s.UpdateHabit(ctx, id, models.HabitPatch{Active: &active})
}

// DeleteHabit removes the habit and, when cascading, its completions in the
// same store transaction. It returns how many completions were removed.
func (s *Session) DeleteHabit(ctx context.Context, id string) (int, error) {
	if s.isClosed() {
		return 0, ErrSessionClosed
	}
	if _, ok := s.habit(id); !ok {
		return 0, models.ErrHabitNotFound
	}

	removed, err := s.store.DeleteHabit(ctx, id, s.cascade)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, models.ErrHabitNotFound
		}
		return 0, storeErr("delete habit "+id, err)
	}

	cascade := s.cascade
	s.mutate(func(h []models.Habit, c map[string]models.HabitCompletion) []models.Habit {
		kept := h[:0]
		for _, habit := range h {
			if habit.ID != id {
				kept = append(kept, habit)
			}
		}
		if cascade {
			for key, completion := range c {
				if completion.HabitID == id {
					delete(c, key)
				}
			}
		}
		return kept
	})
	logger.Info("Habit deleted", "id", id, "cascade", cascade, "completions_removed", removed)
	return removed, nil
}
