package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/internal/storage/memory"
)

var fixedNow = time.Date(2025, 8, 20, 9, 30, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func openSession(t *testing.T, provider storage.Provider, opts ...Option) *Session {
	t.Helper()
	opts = append([]Option{WithClock(clock)}, opts...)
	s, err := Open(context.Background(), provider, "alice", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func addHabit(t *testing.T, s *Session, name string, freq models.Frequency) models.Habit {
	t.Helper()
	h, err := s.CreateHabit(context.Background(), models.Habit{Name: name, Frequency: freq})
	require.NoError(t, err)
	return h
}

// flakyStore fails every call while broken is set.
type flakyStore struct {
	storage.UserStore
	mu     sync.Mutex
	broken bool
}

var errOffline = errors.New("network unreachable")

func (f *flakyStore) fail() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.broken {
		return errOffline
	}
	return nil
}

func (f *flakyStore) setBroken(b bool) {
	f.mu.Lock()
	f.broken = b
	f.mu.Unlock()
}

func (f *flakyStore) ListHabits(ctx context.Context) ([]models.Habit, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.UserStore.ListHabits(ctx)
}

func (f *flakyStore) ListCompletions(ctx context.Context) ([]models.HabitCompletion, error) {
	if err := f.fail(); err != nil {
		return nil, err
	}
	return f.UserStore.ListCompletions(ctx)
}

func (f *flakyStore) UpsertCompletion(ctx context.Context, c models.HabitCompletion) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.UserStore.UpsertCompletion(ctx, c)
}

func (f *flakyStore) DeleteCompletion(ctx context.Context, id string) error {
	if err := f.fail(); err != nil {
		return err
	}
	return f.UserStore.DeleteCompletion(ctx, id)
}

type flakyProvider struct {
	*memory.Store
	user *flakyStore
}

func newFlakyProvider() *flakyProvider {
	m := memory.New()
	return &flakyProvider{Store: m, user: &flakyStore{UserStore: m.ForUser("alice")}}
}

func (p *flakyProvider) ForUser(string) storage.UserStore { return p.user }

func TestOpenRejectsEmptyUser(t *testing.T) {
	_, err := Open(context.Background(), memory.New(), "")
	assert.Error(t, err)
}

func TestOpenFailsWhenStoreIsDown(t *testing.T) {
	p := newFlakyProvider()
	p.user.setBroken(true)

	_, err := Open(context.Background(), p, "alice")
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
}

func TestToggleIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Read", models.FrequencyDaily)

	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))
	first := s.Completions()
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))
	second := s.Completions()

	assert.Equal(t, first, second)
	require.Len(t, second, 1)
	c := second[h.ID+"_2025-08-20"]
	assert.True(t, c.Completed)
	assert.Equal(t, "2025-08-20", c.Date)
	assert.Equal(t, models.FrequencyDaily, c.Frequency)
	assert.Equal(t, fixedNow.UnixMilli(), c.CompletedAt)
}

func TestUntoggleMissingIsNoop(t *testing.T) {
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Read", models.FrequencyDaily)

	assert.NoError(t, s.ToggleCompletion(context.Background(), h.ID, day("2025-08-20"), false))
	assert.Empty(t, s.Completions())
}

func TestToggleRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := openSession(t, store)
	h := addHabit(t, s, "Review", models.FrequencyWeekly)

	// Wednesday resolves to the Monday key.
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))
	assert.Contains(t, s.Completions(), h.ID+"_2025-08-18")

	// Sunday of the same week clears it.
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-24"), false))
	assert.Empty(t, s.Completions())

	stored, err := store.ForUser("alice").ListCompletions(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestToggleUnknownHabit(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := openSession(t, store)

	err := s.ToggleCompletion(ctx, "ghost", day("2025-08-20"), true)
	assert.ErrorIs(t, err, models.ErrHabitNotFound)

	stored, err := store.ForUser("alice").ListCompletions(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored, "no orphan completion may be written")
}

func TestTogglePreservesDetails(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Run", models.FrequencyDaily)

	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))
	require.NoError(t, s.UpdateCompletionDetails(ctx, h.ID, day("2025-08-20"), "5k"))
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))

	assert.Equal(t, "5k", s.Completions()[h.ID+"_2025-08-20"].Details)
}

func TestUpdateDetailsNeverCreates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := openSession(t, store)
	h := addHabit(t, s, "Run", models.FrequencyDaily)

	err := s.UpdateCompletionDetails(ctx, h.ID, day("2025-08-20"), "note")
	assert.ErrorIs(t, err, models.ErrCompletionNotFound)

	stored, err := store.ForUser("alice").ListCompletions(ctx)
	require.NoError(t, err)
	assert.Empty(t, stored)

	err = s.UpdateCompletionDetails(ctx, "ghost", day("2025-08-20"), "note")
	assert.ErrorIs(t, err, models.ErrHabitNotFound)
}

func TestUpdateDetailsRemovedElsewhere(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	s := openSession(t, store)
	h := addHabit(t, s, "Run", models.FrequencyDaily)
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))

	// Another device clears the mark before this session refreshes.
	require.NoError(t, store.ForUser("alice").DeleteCompletion(ctx, h.ID+"_2025-08-20"))

	err := s.UpdateCompletionDetails(ctx, h.ID, day("2025-08-20"), "late note")
	assert.ErrorIs(t, err, models.ErrCompletionNotFound)
	assert.Empty(t, s.Completions())
}

func TestStoreFailureLeavesSnapshot(t *testing.T) {
	ctx := context.Background()
	p := newFlakyProvider()
	s := openSession(t, p)
	h := addHabit(t, s, "Floss", models.FrequencyDaily)
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-19"), true))
	before := s.Snapshot()

	p.user.setBroken(true)

	err := s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)
	assert.Contains(t, err.Error(), errOffline.Error())

	err = s.ToggleCompletion(ctx, h.ID, day("2025-08-19"), false)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	err = s.Refresh(ctx)
	assert.ErrorIs(t, err, models.ErrStoreUnavailable)

	after := s.Snapshot()
	assert.Equal(t, before.Version, after.Version)
	assert.Equal(t, before.Completions, after.Completions)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())

	updates, cancel := s.Subscribe()
	defer cancel()

	initial := <-updates
	assert.Empty(t, initial.Habits)

	h := addHabit(t, s, "Walk", models.FrequencyDaily)
	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))

	// Only the newest snapshot is buffered.
	latest := <-updates
	assert.Len(t, latest.Habits, 1)
	assert.Contains(t, latest.Completions, h.ID+"_2025-08-20")
	assert.Greater(t, latest.Version, initial.Version)

	select {
	case extra := <-updates:
		t.Fatalf("unexpected extra snapshot version %d", extra.Version)
	default:
	}
}

func TestCloseClosesSubscribers(t *testing.T) {
	s := openSession(t, memory.New())
	updates, cancel := s.Subscribe()
	<-updates

	require.NoError(t, s.Close())
	_, ok := <-updates
	assert.False(t, ok)
	cancel()

	late, _ := s.Subscribe()
	_, ok = <-late
	assert.False(t, ok)

	h := models.Habit{Name: "x", Frequency: models.FrequencyDaily}
	_, err := s.CreateHabit(context.Background(), h)
	assert.ErrorIs(t, err, ErrSessionClosed)
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	s := openSession(t, memory.New())
	updates, cancel := s.Subscribe()
	<-updates
	cancel()
	cancel()
	_, ok := <-updates
	assert.False(t, ok)
}

func TestWatchPicksUpExternalWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	store := memory.New()
	s := openSession(t, store)
	h := addHabit(t, s, "Stretch", models.FrequencyDaily)

	done := make(chan error, 1)
	go func() { done <- s.Watch(ctx) }()

	updates, unsubscribe := s.Subscribe()
	defer unsubscribe()
	<-updates

	// Simulates a second process writing to the same store. The write is
	// repeated because Watch registers with the store asynchronously.
	other := store.ForUser("alice")
	require.Eventually(t, func() bool {
		require.NoError(t, other.UpsertCompletion(ctx, models.HabitCompletion{
			ID: h.ID + "_2025-08-20", HabitID: h.ID, Date: "2025-08-20", Completed: true, Frequency: models.FrequencyDaily,
		}))
		_, ok := s.Completions()[h.ID+"_2025-08-20"]
		return ok
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Watch did not stop after cancel")
	}
}

type plainProvider struct{ storage.Provider }

func TestWatchUnsupported(t *testing.T) {
	s := openSession(t, plainProvider{memory.New()})
	assert.ErrorIs(t, s.Watch(context.Background()), ErrWatchUnsupported)
}

func TestConcurrentTogglesLastWriteWins(t *testing.T) {
	ctx := context.Background()
	s := openSession(t, memory.New())
	h := addHabit(t, s, "Water", models.FrequencyDaily)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(set bool) {
			defer wg.Done()
			assert.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), set))
		}(i%2 == 0)
	}
	wg.Wait()

	require.NoError(t, s.ToggleCompletion(ctx, h.ID, day("2025-08-20"), true))
	assert.Len(t, s.Completions(), 1)
}
