package sqlite

import (
	"context"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
)

const completionColumns = "id, habit_id, date, completed, frequency, completed_at, details"

func scanCompletion(row rowScanner) (models.HabitCompletion, error) {
	var c models.HabitCompletion
	var frequency string
	if err := row.Scan(&c.ID, &c.HabitID, &c.Date, &c.Completed, &frequency, &c.CompletedAt, &c.Details); err != nil {
		return models.HabitCompletion{}, err
	}
	c.Frequency = models.Frequency(frequency)
	return c, nil
}

func (u *userStore) ListCompletions(ctx context.Context) ([]models.HabitCompletion, error) {
	return u.queryCompletions(ctx,
		"SELECT "+completionColumns+" FROM completions WHERE user_id = ? ORDER BY id", u.userID)
}

func (u *userStore) ListCompletionsByField(ctx context.Context, field, value string) ([]models.HabitCompletion, error) {
	if err := storage.ValidateCompletionField(field); err != nil {
		return nil, err
	}
	// field is one of a closed set of column names.
	return u.queryCompletions(ctx,
		"SELECT "+completionColumns+" FROM completions WHERE user_id = ? AND "+field+" = ? ORDER BY id",
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
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, id) DO UPDATE SET
			habit_id = excluded.habit_id,
			date = excluded.date,
			completed = excluded.completed,
			frequency = excluded.frequency,
			completed_at = excluded.completed_at,
			details = excluded.details`,
		u.userID, c.ID, c.HabitID, c.Date, c.Completed, string(c.Frequency), c.CompletedAt, c.Details)
	return err
}

func (u *userStore) PatchCompletionDetails(ctx context.Context, id, details string) error {
	db, err := u.db()
	if err != nil {
		return err
	}

	result, err := db.ExecContext(ctx,
		"UPDATE completions SET details = ? WHERE user_id = ? AND id = ?", details, u.userID, id)
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

	_, err = db.ExecContext(ctx, "DELETE FROM completions WHERE user_id = ? AND id = ?", u.userID, id)
	return err
}
