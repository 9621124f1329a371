package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
)

const (
	habitColumns      = "id, name, frequency, goal, active, created_at, details, emoji, ask_details"
	completionColumns = "id, habit_id, date, completed, frequency, completed_at, details"
)

type userStore struct {
	store  *Store
	userID string
}

func (u *userStore) db() (*sql.DB, error) {
	if u.store.db == nil {
		return nil, fmt.Errorf("postgres store is not open")
	}
	return u.store.db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, goal string
	if err := row.Scan(&h.ID, &h.Name, &frequency, &goal, &h.Active, &h.CreatedAt, &h.Details, &h.Emoji, &h.AskDetails); err != nil {
		return models.Habit{}, err
	}
	h.Frequency = models.Frequency(frequency)
	h.Goal = models.Goal(goal)
	return h, nil
}

func scanCompletion(row rowScanner) (models.HabitCompletion, error) {
	var c models.HabitCompletion
	var frequency string
	if err := row.Scan(&c.ID, &c.HabitID, &c.Date, &c.Completed, &frequency, &c.CompletedAt, &c.Details); err != nil {
		return models.HabitCompletion{}, err
	}
	c.Frequency = models.Frequency(frequency)
	return c, nil
}

func (u *userStore) ListHabits(ctx context.Context) ([]models.Habit, error) {
	db, err := u.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id = $1 ORDER BY created_at, id", u.userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	habits := []models.Habit{}
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (u *userStore) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	db, err := u.db()
	if err != nil {
		return models.Habit{}, err
	}
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	habit.ApplyDefaults(time.Now())

	_, err = db.ExecContext(ctx, `
		INSERT INTO habits (user_id, `+habitColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.userID, habit.ID, habit.Name, string(habit.Frequency), string(habit.Goal),
		habit.Active, habit.CreatedAt, habit.Details, habit.Emoji, habit.AskDetails)
	if err != nil {
		return models.Habit{}, err
	}
	return habit, nil
}

func (u *userStore) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (models.Habit, error) {
	db, err := u.db()
	if err != nil {
		return models.Habit{}, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return models.Habit{}, err
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id = $1 AND id = $2 FOR UPDATE", u.userID, id)
	current, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	if err != nil {
		return models.Habit{}, err
	}
	h := patch.Apply(current)

	_, err = tx.ExecContext(ctx, `
		UPDATE habits SET
			name = $1, frequency = $2, goal = $3, active = $4, details = $5, emoji = $6, ask_details = $7
		WHERE user_id = $8 AND id = $9`,
		h.Name, string(h.Frequency), string(h.Goal), h.Active, h.Details, h.Emoji, h.AskDetails,
		u.userID, id)
	if err != nil {
		return models.Habit{}, err
	}

	if err := tx.Commit(); err != nil {
		return models.Habit{}, err
	}
	return h, nil
}

func (u *userStore) DeleteHabit(ctx context.Context, id string, cascade bool) (int, error) {
	db, err := u.db()
	if err != nil {
		return 0, err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE user_id = $1 AND id = $2", u.userID, id)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, storage.ErrNotFound
	}

	removed := int64(0)
	if cascade {
		result, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE user_id = $1 AND habit_id = $2", u.userID, id)
		if err != nil {
			return 0, err
		}
		if removed, err = result.RowsAffected(); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return int(removed), nil
}

func (u *userStore) ListCompletions(ctx context.Context) ([]models.HabitCompletion, error) {
	return u.queryCompletions(ctx,
		"SELECT "+completionColumns+" FROM completions WHERE user_id = $1 ORDER BY id", u.userID)
}

func (u *userStore) ListCompletionsByField(ctx context.Context, field, value string) ([]models.HabitCompletion, error) {
	if err := storage.ValidateCompletionField(field); err != nil {
		return nil, err
	}
	return u.queryCompletions(ctx,
		"SELECT "+completionColumns+" FROM completions WHERE user_id = $1 AND "+field+" = $2 ORDER BY id",
		u.userID, value)
}

func (u *userStore) queryCompletions(ctx context.Context, query string, args ...any) ([]models.HabitCompletion, error) {
	db, err := u.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	completions := []models.HabitCompletion{}
	for rows.Next() {
		c, err := scanCompletion(rows)
		if err != nil {
			return nil, err
		}
		completions = append(completions, c)
	}
	return completions, rows.Err()
}

func (u *userStore) UpsertCompletion(ctx context.Context, c models.HabitCompletion) error {
	db, err := u.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO completions (user_id, `+completionColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, id) DO UPDATE SET
			habit_id = EXCLUDED.habit_id,
			date = EXCLUDED.date,
			completed = EXCLUDED.completed,
			frequency = EXCLUDED.frequency,
			completed_at = EXCLUDED.completed_at,
			details = EXCLUDED.details`,
		u.userID, c.ID, c.HabitID, c.Date, c.Completed, string(c.Frequency), c.CompletedAt, c.Details)
	return err
}

func (u *userStore) PatchCompletionDetails(ctx context.Context, id, details string) error {
	db, err := u.db()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		"UPDATE completions SET details = $1 WHERE user_id = $2 AND id = $3", details, u.userID, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func (u *userStore) DeleteCompletion(ctx context.Context, id string) error {
	db, err := u.db()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, "DELETE FROM completions WHERE user_id = $1 AND id = $2", u.userID, id)
	return err
}
