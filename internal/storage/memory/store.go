// Package memory is a process-local Provider used by tests and by
// `--config memory://` sessions. Nothing survives Close.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
)

type userData struct {
	habits      map[string]models.Habit
	completions map[string]models.HabitCompletion
}

type Store struct {
	mu       sync.RWMutex
	settings models.Settings
	users    map[string]*userData
	watchers []chan struct{}
	closed   bool
}

func New() *Store {
	return &Store{
		settings: models.DefaultSettings(),
		users:    make(map[string]*userData),
	}
}

func (s *Store) Init() error { return nil }
func (s *Store) Load() error { return nil }

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for _, ch := range s.watchers {
		close(ch)
	}
	s.watchers = nil
	return nil
}

func (s *Store) GetConfigPath() string { return "memory://" }

func (s *Store) GetSettings() (models.Settings, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings, nil
}

func (s *Store) SaveSettings(settings models.Settings) error {
	s.mu.Lock()
	s.settings = settings
	s.mu.Unlock()
	s.notify()
	return nil
}

func (s *Store) ForUser(userID string) storage.UserStore {
	return &userStore{store: s, userID: userID}
}

// Watch reports every write made through any user view of this store.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil, fmt.Errorf("memory store is closed")
	}
	ch := make(chan struct{}, 1)
	s.watchers = append(s.watchers, ch)
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, w := range s.watchers {
			if w == ch {
				s.watchers = append(s.watchers[:i], s.watchers[i+1:]...)
				close(ch)
				return
			}
		}
	}()
	return ch, nil
}

func (s *Store) notify() {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.watchers {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}

// data returns the partition for userID, creating it when create is set.
// Caller must hold s.mu.
func (s *Store) data(userID string, create bool) *userData {
	d, ok := s.users[userID]
	if !ok && create {
		d = &userData{
			habits:      make(map[string]models.Habit),
			completions: make(map[string]models.HabitCompletion),
		}
		s.users[userID] = d
	}
	return d
}

type userStore struct {
	store  *Store
	userID string
}

func (u *userStore) ListHabits(ctx context.Context) ([]models.Habit, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()

	d := u.store.data(u.userID, false)
	if d == nil {
		return []models.Habit{}, nil
	}
	habits := make([]models.Habit, 0, len(d.habits))
	for _, h := range d.habits {
		habits = append(habits, h)
	}
	sort.Slice(habits, func(i, j int) bool {
		if habits[i].CreatedAt != habits[j].CreatedAt {
			return habits[i].CreatedAt < habits[j].CreatedAt
		}
		return habits[i].ID < habits[j].ID
	})
	return habits, nil
}

func (u *userStore) CreateHabit(ctx context.Context, habit models.Habit) (models.Habit, error) {
	if err := ctx.Err(); err != nil {
		return models.Habit{}, err
	}
	if habit.ID == "" {
		habit.ID = uuid.New().String()
	}
	habit.ApplyDefaults(time.Now())

	u.store.mu.Lock()
	d := u.store.data(u.userID, true)
	if _, exists := d.habits[habit.ID]; exists {
		u.store.mu.Unlock()
		return models.Habit{}, fmt.Errorf("habit %s already exists", habit.ID)
	}
	d.habits[habit.ID] = habit
	u.store.mu.Unlock()

	u.store.notify()
	return habit, nil
}

func (u *userStore) UpdateHabit(ctx context.Context, id string, patch models.HabitPatch) (models.Habit, error) {
	if err := ctx.Err(); err != nil {
		return models.Habit{}, err
	}
	u.store.mu.Lock()
	d := u.store.data(u.userID, false)
	if d == nil {
		u.store.mu.Unlock()
		return models.Habit{}, storage.ErrNotFound
	}
	h, ok := d.habits[id]
	if !ok {
		u.store.mu.Unlock()
		return models.Habit{}, storage.ErrNotFound
	}
	h = patch.Apply(h)
	d.habits[id] = h
	u.store.mu.Unlock()

	u.store.notify()
	return h, nil
}

func (u *userStore) DeleteHabit(ctx context.Context, id string, cascade bool) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	u.store.mu.Lock()
	d := u.store.data(u.userID, false)
	if d == nil {
		u.store.mu.Unlock()
		return 0, storage.ErrNotFound
	}
	if _, ok := d.habits[id]; !ok {
		u.store.mu.Unlock()
		return 0, storage.ErrNotFound
	}
	delete(d.habits, id)

	removed := 0
	if cascade {
		for key, c := range d.completions {
			if c.HabitID == id {
				delete(d.completions, key)
				removed++
			}
		}
	}
	u.store.mu.Unlock()

	u.store.notify()
	return removed, nil
}

func (u *userStore) ListCompletions(ctx context.Context) ([]models.HabitCompletion, error) {
	return u.listCompletions(ctx, func(models.HabitCompletion) bool { return true })
}

func (u *userStore) ListCompletionsByField(ctx context.Context, field, value string) ([]models.HabitCompletion, error) {
	if err := storage.ValidateCompletionField(field); err != nil {
		return nil, err
	}
	return u.listCompletions(ctx, func(c models.HabitCompletion) bool {
		if field == storage.CompletionFieldHabitID {
			return c.HabitID == value
		}
		return c.Date == value
	})
}

func (u *userStore) listCompletions(ctx context.Context, keep func(models.HabitCompletion) bool) ([]models.HabitCompletion, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.store.mu.RLock()
	defer u.store.mu.RUnlock()

	d := u.store.data(u.userID, false)
	if d == nil {
		return []models.HabitCompletion{}, nil
	}
	out := make([]models.HabitCompletion, 0, len(d.completions))
	for _, c := range d.completions {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (u *userStore) UpsertCompletion(ctx context.Context, completion models.HabitCompletion) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	d := u.store.data(u.userID, true)
	d.completions[completion.ID] = completion
	u.store.mu.Unlock()

	u.store.notify()
	return nil
}

func (u *userStore) PatchCompletionDetails(ctx context.Context, id, details string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	d := u.store.data(u.userID, false)
	if d == nil {
		u.store.mu.Unlock()
		return storage.ErrNotFound
	}
	c, ok := d.completions[id]
	if !ok {
		u.store.mu.Unlock()
		return storage.ErrNotFound
	}
	c.Details = details
	d.completions[id] = c
	u.store.mu.Unlock()

	u.store.notify()
	return nil
}

func (u *userStore) DeleteCompletion(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	u.store.mu.Lock()
	d := u.store.data(u.userID, false)
	if d != nil {
		delete(d.completions, id)
	}
	u.store.mu.Unlock()

	u.store.notify()
	return nil
}
