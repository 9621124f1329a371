package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/migration"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/migrations"
)

type Store struct {
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) open() error {
	// WAL lets the TUI keep reading while a second process writes.
	dsn := "file:" + s.path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	s.db = db
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.runner().Apply(context.Background(), func(msg string) {
		logger.Info(msg, "backend", "sqlite")
	}); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := s.GetSettings(); err != nil {
		if err := s.SaveSettings(models.DefaultSettings()); err != nil {
			return fmt.Errorf("failed to save default settings: %w", err)
		}
	}

	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run '%s init' first", constants.AppName)
	}

	if err := s.open(); err != nil {
		return err
	}

	return s.runner().Validate(context.Background())
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

// Migrate applies pending schema migrations to an already loaded store.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	return s.runner().Apply(ctx, logFn)
}

// MigrationStatus reports the schema version against the embedded migrations.
func (s *Store) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.runner().Status(ctx)
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// The sub-directory is part of the embed pattern.
		panic(fmt.Sprintf("sqlite migrations missing from embed: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.DriverSQLite)
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}

func (s *Store) ForUser(userID string) storage.UserStore {
	return &userStore{store: s, userID: userID}
}
