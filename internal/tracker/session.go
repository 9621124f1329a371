// Package tracker owns the signed-in user's live view of habits and
// completions. A Session is created on sign-in, mutated only through its
// methods or a store refresh, and torn down on sign-out.
package tracker

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
)

var (
	ErrSessionClosed    = errors.New("session is closed")
	ErrWatchUnsupported = errors.New("storage backend does not report changes")
)

// Snapshot is an immutable view of one user's records. Consumers must not
// modify the slice or map; the session never does once published.
type Snapshot struct {
	UserID      string
	Version     uint64
	Habits      []models.Habit
	Completions map[string]models.HabitCompletion
}

type Session struct {
	provider storage.Provider
	store    storage.UserStore
	userID   string

	now     func() time.Time
	cascade bool

	mu          sync.RWMutex
	habits      []models.Habit
	completions map[string]models.HabitCompletion
	version     uint64

	subMu     sync.Mutex
	subs      map[int]chan Snapshot
	nextSub   int
	published uint64
	closed    bool
}

type Option func(*Session)

// WithClock overrides the time source used for CompletedAt and CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

// WithCascadeDelete sets whether DeleteHabit also removes completions.
func WithCascadeDelete(cascade bool) Option {
	return func(s *Session) { s.cascade = cascade }
}

// Open loads the user's habits and completions and returns a ready session.
func Open(ctx context.Context, provider storage.Provider, userID string, opts ...Option) (*Session, error) {
	if userID == "" {
		return nil, fmt.Errorf("open session: empty user id")
	}

	s := &Session{
		provider:    provider,
		store:       provider.ForUser(userID),
		userID:      userID,
		now:         time.Now,
		cascade:     constants.DefaultCascadeDelete,
		completions: map[string]models.HabitCompletion{},
		subs:        make(map[int]chan Snapshot),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.Refresh(ctx); err != nil {
		return nil, err
	}
	logger.Debug("Session opened", "user", userID, "habits", len(s.habits), "completions", len(s.completions))
	return s, nil
}

func (s *Session) UserID() string { return s.userID }

// Snapshot returns the current view.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		UserID:      s.userID,
		Version:     s.version,
		Habits:      s.habits,
		Completions: s.completions,
	}
}

// Refresh reloads both collections from the store. On failure the previous
// snapshot stays in effect.
func (s *Session) Refresh(ctx context.Context) error {
	var habits []models.Habit
	var completions []models.HabitCompletion

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		habits, err = s.store.ListHabits(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		completions, err = s.store.ListCompletions(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("%w: loading snapshot: %v", models.ErrStoreUnavailable, err)
	}

	now := s.now()
	for i := range habits {
		habits[i].ApplyDefaults(now)
	}
	sortHabits(habits)

	byID := make(map[string]models.HabitCompletion, len(completions))
	for _, c := range completions {
		byID[c.ID] = c
	}

	s.mu.Lock()
	s.habits = habits
	s.completions = byID
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
	return nil
}

// Subscribe returns a channel that always holds the latest snapshot. Slow
// readers skip intermediate versions. The returned func unsubscribes.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, constants.SubscriptionBufferSize)

	s.subMu.Lock()
	if s.closed {
		s.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	snap := s.Snapshot()
	if snap.Version > s.published {
		s.published = snap.Version
	}
	ch <- snap
	s.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subMu.Lock()
			defer s.subMu.Unlock()
			if c, ok := s.subs[id]; ok {
				delete(s.subs, id)
				close(c)
			}
		})
	}
}

func (s *Session) publish(snap Snapshot) {
	s.subMu.Lock()
	defer s.subMu.Unlock()

	if s.closed || snap.Version <= s.published {
		return
	}
	s.published = snap.Version

	for _, ch := range s.subs {
		// Replace whatever is buffered with the newest snapshot.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}

// Watch refreshes the session on every change the backend reports until ctx
// is done. Refresh failures are logged and the old snapshot is kept.
func (s *Session) Watch(ctx context.Context) error {
	w, ok := s.provider.(storage.Watcher)
	if !ok {
		return ErrWatchUnsupported
	}
	changes, err := w.Watch(ctx)
	if err != nil {
		return fmt.Errorf("%w: watch: %v", models.ErrStoreUnavailable, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-changes:
			if !ok {
				return nil
			}
			if err := s.Refresh(ctx); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				logger.Warn("Failed to refresh session after change", "user", s.userID, "error", err)
			}
		}
	}
}

// Close ends the session and closes every subscriber channel.
func (s *Session) Close() error {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	for id, ch := range s.subs {
		close(ch)
		delete(s.subs, id)
	}
	logger.Debug("Session closed", "user", s.userID)
	return nil
}

func (s *Session) isClosed() bool {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	return s.closed
}

// mutate applies fn to copies of the current collections, installs them and
// publishes the result.
func (s *Session) mutate(fn func(habits []models.Habit, completions map[string]models.HabitCompletion) []models.Habit) {
	s.mu.Lock()
	habits := make([]models.Habit, len(s.habits))
	copy(habits, s.habits)
	completions := make(map[string]models.HabitCompletion, len(s.completions))
	for k, v := range s.completions {
		completions[k] = v
	}

	s.habits = fn(habits, completions)
	s.completions = completions
	s.version++
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(snap)
}

func sortHabits(habits []models.Habit) {
	sort.SliceStable(habits, func(i, j int) bool {
		if habits[i].CreatedAt != habits[j].CreatedAt {
			return habits[i].CreatedAt < habits[j].CreatedAt
		}
		return habits[i].ID < habits[j].ID
	})
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", models.ErrStoreUnavailable, op, err)
}
