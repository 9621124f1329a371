package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitara/internal/backup"
	"github.com/julianstephens/habitara/internal/identity"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/internal/storage/sqlite"
	"github.com/julianstephens/habitara/internal/tracker"
	"github.com/julianstephens/habitara/internal/utils"
)

// Context is handed to every command's Run method by kong.
type Context struct {
	Store    storage.Provider
	Identity identity.Provider
	Accounts AccountManager
	Out      io.Writer
	// Now is overridden by tests; nil means time.Now.
	Now func() time.Time

	ctx     context.Context
	session *tracker.Session
}

// Ctx returns the context commands pass to blocking store calls.
func (c *Context) Ctx() context.Context {
	if c.ctx == nil {
		return context.Background()
	}
	return c.ctx
}

// WithContext sets the context used by Ctx, typically a signal-aware one.
func (c *Context) WithContext(ctx context.Context) {
	c.ctx = ctx
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

// Printf writes to the command's output.
func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

// Settings returns the stored settings with defaults applied.
func (c *Context) Settings() (models.Settings, error) {
	settings, err := c.Store.GetSettings()
	if err != nil {
		return models.Settings{}, fmt.Errorf("failed to get settings: %w", err)
	}
	models.ApplyDefaultSettings(&settings)
	return settings, nil
}

// Location is the timezone that decides which calendar day "today" is.
func (c *Context) Location() (*time.Location, error) {
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	return utils.LocationFromSettings(settings)
}

// Clock returns the current time in the user's timezone.
func (c *Context) Clock() (func() time.Time, error) {
	loc, err := c.Location()
	if err != nil {
		return nil, err
	}
	now := c.Now
	if now == nil {
		now = time.Now
	}
	return func() time.Time { return now().In(loc) }, nil
}

// Day resolves a --date flag against the user's clock.
func (c *Context) Day(flag string) (time.Time, error) {
	clock, err := c.Clock()
	if err != nil {
		return time.Time{}, err
	}
	return utils.ParseDayFlag(flag, clock())
}

// Session opens the signed-in user's session on first use.
func (c *Context) Session() (*tracker.Session, error) {
	if c.session != nil {
		return c.session, nil
	}
	if c.Identity == nil {
		return nil, identity.ErrSignedOut
	}
	userID, err := c.Identity.CurrentUser()
	if err != nil {
		return nil, err
	}
	settings, err := c.Settings()
	if err != nil {
		return nil, err
	}
	clock, err := c.Clock()
	if err != nil {
		return nil, err
	}

	s, err := tracker.Open(c.Ctx(), c.Store, userID,
		tracker.WithClock(clock),
		tracker.WithCascadeDelete(settings.CascadeDelete),
	)
	if err != nil {
		return nil, fmt.Errorf("opening session for %s: %w", userID, err)
	}
	c.session = s
	return s, nil
}

// Close tears down the session and the store.
func (c *Context) Close() error {
	if c.session != nil {
		if err := c.session.Close(); err != nil {
			logger.Warn("failed to close session", "error", err)
		}
		c.session = nil
	}
	return c.Store.Close()
}

// ResolveHabit finds a habit by id or name.
func (c *Context) ResolveHabit(nameOrID string) (*tracker.Session, models.Habit, error) {
	s, err := c.Session()
	if err != nil {
		return nil, models.Habit{}, err
	}
	h, ok := s.FindHabit(nameOrID)
	if !ok {
		return nil, models.Habit{}, fmt.Errorf("%w: %q", models.ErrHabitNotFound, nameOrID)
	}
	return s, h, nil
}

// PerformAutomaticBackup backs up file-backed stores and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// HabitLabel renders a habit for one-line listings.
func HabitLabel(h models.Habit) string {
	var b strings.Builder
	if h.Emoji != "" {
		b.WriteString(h.Emoji)
		b.WriteByte(' ')
	}
	b.WriteString(h.Name)
	if h.Goal == models.GoalAvoid {
		b.WriteString(" (avoid)")
	}
	if !h.Active {
		b.WriteString(" [archived]")
	}
	return b.String()
}
