package keyring

import (
	"errors"
	"fmt"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/julianstephens/habitara/internal/constants"
)

var (
	// ErrNotFound is returned when no entry is stored under the requested key
	ErrNotFound = errors.New("credentials not found in keyring")
	// ErrKeyringUnavailable is returned when the OS keyring is not available
	ErrKeyringUnavailable = errors.New("OS keyring is not available")
)

func get(entry string) (string, error) {
	value, err := keyring.Get(constants.AppName, entry)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrKeyringUnavailable, err)
	}
	return value, nil
}

func set(entry, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s cannot be empty", entry)
	}
	if err := keyring.Set(constants.AppName, entry, value); err != nil {
		return fmt.Errorf("failed to store %s in keyring: %w", entry, err)
	}
	return nil
}

func del(entry string) error {
	if err := keyring.Delete(constants.AppName, entry); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to delete %s from keyring: %w", entry, err)
	}
	return nil
}

// GetConnectionString returns the stored database connection string.
func GetConnectionString() (string, error) {
	return get(constants.DefaultKeyringUser)
}

func SetConnectionString(connStr string) error {
	return set(constants.DefaultKeyringUser, connStr)
}

func DeleteConnectionString() error {
	return del(constants.DefaultKeyringUser)
}

// GetAccount returns the signed-in account id.
func GetAccount() (string, error) {
	return get(constants.AccountKeyringUser)
}

func SetAccount(account string) error {
	return set(constants.AccountKeyringUser, account)
}

func DeleteAccount() error {
	return del(constants.AccountKeyringUser)
}

// IsAvailable checks if the OS keyring is available on the current system.
// This is a best-effort check and may not catch all failure scenarios.
func IsAvailable() bool {
	_, err := keyring.Get(constants.AppName, "test-availability")
	return err == nil || errors.Is(err, keyring.ErrNotFound)
}
