package tracker

import (
	"context"
	"errors"
	"time"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
	"github.com/julianstephens/habitara/internal/storage"
)

// Completions returns a copy of every completion the user has recorded.
func (s *Session) Completions() map[string]models.HabitCompletion {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]models.HabitCompletion, len(s.completions))
	for k, v := range s.completions {
		out[k] = v
	}
	return out
}

// completionKey resolves the habit and the record id for the period holding day.
func (s *Session) completionKey(habitID string, day time.Time) (models.Habit, string, string, error) {
	habit, ok := s.habit(habitID)
	if !ok {
		return models.Habit{}, "", "", models.ErrHabitNotFound
	}
	key, err := period.Resolve(habit.Frequency, day)
	if err != nil {
		return models.Habit{}, "", "", err
	}
	return habit, key, models.CompletionID(habit.ID, key), nil
}

// ToggleCompletion marks (set) or clears the habit for the period containing
// day. Re-marking keeps any details already attached to the period.
func (s *Session) ToggleCompletion(ctx context.Context, habitID string, day time.Time, set bool) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	habit, key, id, err := s.completionKey(habitID, day)
	if err != nil {
		return err
	}

	if !set {
		if err := s.store.DeleteCompletion(ctx, id); err != nil {
			return storeErr("delete completion "+id, err)
		}
		s.mutate(func(h []models.Habit, c map[string]models.HabitCompletion) []models.Habit {
			delete(c, id)
			return h
		})
		return nil
	}

	record := models.HabitCompletion{
		ID:          id,
		HabitID:     habit.ID,
		Date:        key,
		Completed:   true,
		Frequency:   habit.Frequency,
		CompletedAt: s.now().UnixMilli(),
	}
	s.mu.RLock()
	if existing, ok := s.completions[id]; ok {
		record.Details = existing.Details
	}
	s.mu.RUnlock()

	if err := s.store.UpsertCompletion(ctx, record); err != nil {
		return storeErr("upsert completion "+id, err)
	}
	s.mutate(func(h []models.Habit, c map[string]models.HabitCompletion) []models.Habit {
		c[id] = record
		return h
	})
	return nil
}

// UpdateCompletionDetails replaces the note on an existing completion. It
// never creates one.
func (s *Session) UpdateCompletionDetails(ctx context.Context, habitID string, day time.Time, details string) error {
	if s.isClosed() {
		return ErrSessionClosed
	}
	_, _, id, err := s.completionKey(habitID, day)
	if err != nil {
		return err
	}

	s.mu.RLock()
	_, ok := s.completions[id]
	s.mu.RUnlock()
	if !ok {
		return models.ErrCompletionNotFound
	}

	if err := s.store.PatchCompletionDetails(ctx, id, details); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			// Removed elsewhere since our last refresh.
			s.mutate(func(h []models.Habit, c map[string]models.HabitCompletion) []models.Habit {
				delete(c, id)
				return h
			})
			return models.ErrCompletionNotFound
		}
		return storeErr("patch completion "+id, err)
	}

	s.mutate(func(h []models.Habit, c map[string]models.HabitCompletion) []models.Habit {
		if existing, ok := c[id]; ok {
			existing.Details = details
			c[id] = existing
		}
		return h
	})
	return nil
}
