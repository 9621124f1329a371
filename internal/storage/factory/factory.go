// Package factory picks the storage backend for a --config value.
package factory

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/julianstephens/habitara/internal/keyring"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/internal/storage/memory"
	"github.com/julianstephens/habitara/internal/storage/postgres"
	"github.com/julianstephens/habitara/internal/storage/sqlite"
)

const (
	// ConnectionEnv overrides --config with a connection string that may carry credentials.
	ConnectionEnv = "HABITARA_DB_CONNECTION"
	// KeyringConfig makes --config read the connection string stored in the OS keyring.
	KeyringConfig = "keyring"
)

// ErrEmbeddedCredentials is returned when a password is passed on the command line.
var ErrEmbeddedCredentials = errors.New("PostgreSQL connection strings with embedded credentials are not allowed on the command line")

// Resolve turns the --config flag into the value handed to Open. Secrets may
// only arrive through the environment or the keyring.
func Resolve(config string) (string, error) {
	if env := strings.TrimSpace(os.Getenv(ConnectionEnv)); env != "" {
		return env, nil
	}
	if config == KeyringConfig {
		connStr, err := keyring.GetConnectionString()
		if err != nil {
			return "", fmt.Errorf("reading connection string from keyring: %w", err)
		}
		return connStr, nil
	}
	if storage.IsPostgres(config) && storage.HasEmbeddedCredentials(config) {
		return "", ErrEmbeddedCredentials
	}
	return config, nil
}

// Open builds an unopened provider for a resolved config value. Callers run
// Init or Load on the result.
func Open(config string) (storage.Provider, error) {
	switch {
	case config == "":
		return nil, fmt.Errorf("no storage configured")
	case storage.IsMemory(config):
		return memory.New(), nil
	case storage.IsPostgres(config):
		return postgres.New(config), nil
	default:
		path, err := expandHome(config)
		if err != nil {
			return nil, err
		}
		return sqlite.NewStore(path), nil
	}
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
