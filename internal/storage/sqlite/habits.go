package sqlite

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

const habitColumns = "id, name, frequency, goal, active, created_at, details, emoji, ask_details"

type userStore struct {
	store  *Store
	userID string
}

func (u *userStore) db() (*sql.DB, error) {
	if u.store.db == nil {
		return nil, fmt.Errorf("sqlite store is not open")
	}
	return u.store.db, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanHabit(row rowScanner) (models.Habit, error) {
	var h models.Habit
	var frequency, goal string
	err := row.Scan(&h.ID, &h.Name, &frequency, &goal, &h.Active, &h.CreatedAt, &h.Details, &h.Emoji, &h.AskDetails)
	if err != nil {
		return models.Habit{}, err
	}
	h.Frequency = models.Frequency(frequency)
	h.Goal = models.Goal(goal)
	return h, nil
}

func (u *userStore) ListHabits(ctx context.Context) ([]models.Habit, error) {
	db, err := u.db()
	if err != nil {
		return nil, err
	}

	rows, err := db.QueryContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id = ? ORDER BY created_at, id", u.userID)
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

func (u *userStore) getHabit(ctx context.Context, q interface {
	QueryRowContext(context.Context, string, ...any) *sql.Row
}, id string) (models.Habit, error) {
	row := q.QueryRowContext(ctx,
		"SELECT "+habitColumns+" FROM habits WHERE user_id = ? AND id = ?", u.userID, id)
	h, err := scanHabit(row)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Habit{}, storage.ErrNotFound
	}
	return h, err
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
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

	current, err := u.getHabit(ctx, tx, id)
	if err != nil {
		return models.Habit{}, err
	}
	h := patch.Apply(current)

	_, err = tx.ExecContext(ctx, `
		UPDATE habits SET
			name = ?, frequency = ?, goal = ?, active = ?, details = ?, emoji = ?, ask_details = ?
		WHERE user_id = ? AND id = ?`,
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

	result, err := tx.ExecContext(ctx, "DELETE FROM habits WHERE user_id = ? AND id = ?", u.userID, id)
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
		result, err := tx.ExecContext(ctx, "DELETE FROM completions WHERE user_id = ? AND habit_id = ?", u.userID, id)
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
