package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/identity"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/internal/storage/factory"
	"github.com/julianstephens/habitara/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Delete an existing SQLite database before initializing."`
	Source string `help:"Database path or connection string to copy the signed-in account's data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if err := c.reset(ctx); err != nil {
			return err
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized habitara storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying data from: %s\n", c.Source)
		if err := c.copyFrom(ctx); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println("Copy completed successfully!")
	}
	return nil
}

func (c *InitCmd) reset(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("--force only applies to SQLite databases")
	}
	dbPath := ctx.Store.GetConfigPath()
	if abs, err := filepath.Abs(dbPath); err == nil {
		dbPath = abs
	}
	if c.Source != "" {
		if absSource, err := filepath.Abs(c.Source); err == nil && absSource == dbPath {
			return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
		}
	}

	if _, err := os.Stat(dbPath); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to access existing database: %w", err)
	}
	if err := ctx.Store.Close(); err != nil {
		return fmt.Errorf("failed to close existing database: %w", err)
	}
	for _, p := range []string{dbPath, dbPath + "-wal", dbPath + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete existing database: %w", err)
		}
	}
	ctx.Printf("Deleted existing database at: %s\n", dbPath)
	return nil
}

// copyFrom copies settings plus the signed-in account's habits and
// completions. Records keep their IDs, so copying twice is harmless for
// completions and fails loudly for habits.
func (c *InitCmd) copyFrom(ctx *cli.Context) error {
	if storage.IsPostgres(c.Source) && storage.HasEmbeddedCredentials(c.Source) {
		return factory.ErrEmbeddedCredentials
	}
	source, err := factory.Open(c.Source)
	if err != nil {
		return err
	}
	if err := source.Load(); err != nil {
		return fmt.Errorf("failed to load source database: %w", err)
	}
	defer source.Close()

	ctx.Println("  Copying settings...")
	settings, err := source.GetSettings()
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	if ctx.Identity == nil {
		ctx.Println("  Not signed in; skipping habits.")
		return nil
	}
	user, err := ctx.Identity.CurrentUser()
	if errors.Is(err, identity.ErrSignedOut) {
		ctx.Println("  Not signed in; skipping habits.")
		return nil
	}
	if err != nil {
		return err
	}

	from, to := source.ForUser(user), ctx.Store.ForUser(user)
	runCtx := ctx.Ctx()

	ctx.Printf("  Copying habits of %s...\n", user)
	habits, err := from.ListHabits(runCtx)
	if err != nil {
		return fmt.Errorf("failed to list habits from source: %w", err)
	}
	for _, h := range habits {
		if _, err := to.CreateHabit(runCtx, h); err != nil {
			return fmt.Errorf("failed to add habit %s: %w", h.ID, err)
		}
	}
	ctx.Printf("    Copied %d habits\n", len(habits))

	ctx.Println("  Copying completions...")
	completions, err := from.ListCompletions(runCtx)
	if err != nil {
		return fmt.Errorf("failed to list completions from source: %w", err)
	}
	for _, comp := range completions {
		if err := to.UpsertCompletion(runCtx, comp); err != nil {
			return fmt.Errorf("failed to add completion %s: %w", comp.ID, err)
		}
	}
	ctx.Printf("    Copied %d completions\n", len(completions))
	return nil
}
