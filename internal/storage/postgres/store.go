package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"strings"
	"time"

	_ "github.com/lib/pq"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/migration"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/migrations"
)

type Store struct {
	connStr string
	db      *sql.DB
}

func New(connStr string) *Store {
	return &Store{
		connStr: withSearchPath(connStr),
	}
}

func (s *Store) connect() error {
	db, err := sql.Open("postgres", s.connStr)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		db.Close()
		if strings.Contains(err.Error(), "SSL is not enabled on the server") && !hasSSLMode(s.connStr) {
			return fmt.Errorf("failed to connect to database: %w (hint: try adding ?sslmode=disable to your connection string)", err)
		}
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Init() error {
	if s.db == nil {
		if err := s.connect(); err != nil {
			return err
		}
	}

	if _, err := s.db.Exec("CREATE SCHEMA IF NOT EXISTS " + constants.AppName); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	if _, err := s.runner().Apply(context.Background(), func(msg string) {
		logger.Info(msg, "backend", "postgres")
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
	if err := s.connect(); err != nil {
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

func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	return s.runner().Apply(ctx, logFn)
}

func (s *Store) MigrationStatus(ctx context.Context) (migration.Status, error) {
	return s.runner().Status(ctx)
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "postgres")
	if err != nil {
		panic(fmt.Sprintf("postgres migrations missing from embed: %v", err))
	}
	return migration.NewRunner(s.db, subFS, migration.DriverPostgres)
}

func (s *Store) GetConfigPath() string {
	// Non-sensitive identifier instead of the connection string
	return "postgresql"
}

func (s *Store) ForUser(userID string) storage.UserStore {
	return &userStore{store: s, userID: userID}
}
