package storage

import (
	"context"

	"github.com/julianstephens/habitara/internal/models"
)

// Provider is a per-installation document store. Records are partitioned by
// user; ForUser returns the view scoped to one account.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Settings
	GetSettings() (models.Settings, error)
	SaveSettings(models.Settings) error

	ForUser(userID string) UserStore

	// Utils
	GetConfigPath() string
}

// UserStore is every record operation available for one signed-in user.
type UserStore interface {
	HabitStore
	CompletionStore
}

type HabitStore interface {
	// ListHabits returns every habit, ordered by created_at then id.
	ListHabits(ctx context.Context) ([]models.Habit, error)
	// CreateHabit assigns an id when habit.ID is empty and returns the stored record.
	CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error)
	// UpdateHabit applies patch and returns the updated record, or ErrNotFound.
	UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (models.Habit, error)
	// DeleteHabit removes the habit, and with cascade every completion whose
	// habit_id matches, in a single transaction. It returns the number of
	// completions removed.
	DeleteHabit(ctx context.Context, id string, cascade bool) (int, error)
}

type CompletionStore interface {
	ListCompletions(ctx context.Context) ([]models.HabitCompletion, error)
	// ListCompletionsByField filters on one of the CompletionField* columns.
	ListCompletionsByField(ctx context.Context, field, value string) ([]models.HabitCompletion, error)
	// UpsertCompletion writes the full record at completion.ID.
	UpsertCompletion(ctx context.Context, completion models.HabitCompletion) error
	// PatchCompletionDetails updates only the details of an existing record, or
	// returns ErrNotFound.
	PatchCompletionDetails(ctx context.Context, id, details string) error
	// DeleteCompletion removes the record at id. Missing records are not an error.
	DeleteCompletion(ctx context.Context, id string) error
}

// Watcher is implemented by providers that can report changes made outside
// this process. Each receive on the channel means "something changed, reload".
// The channel is closed when ctx is done.
type Watcher interface {
	Watch(ctx context.Context) (<-chan struct{}, error)
}
