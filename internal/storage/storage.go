package storage

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrNotFound is returned by stores when a keyed record does not exist.
var ErrNotFound = errors.New("record not found")

const (
	CompletionFieldHabitID = "habit_id"
	CompletionFieldDate    = "date"
)

// ValidateCompletionField rejects anything that is not a queryable column.
func ValidateCompletionField(field string) error {
	switch field {
	case CompletionFieldHabitID, CompletionFieldDate:
		return nil
	}
	return fmt.Errorf("unsupported completion field %q", field)
}

// HasEmbeddedCredentials checks if a PostgreSQL connection string contains a password.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		_, hasPassword := u.User.Password()
		return hasPassword
	}

	for _, pair := range strings.Fields(connStr) {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 && strings.EqualFold(strings.TrimSpace(kv[0]), "password") {
			return true
		}
	}
	return false
}

// IsPostgres reports whether config names a PostgreSQL database.
func IsPostgres(config string) bool {
	return strings.HasPrefix(config, "postgres://") || strings.HasPrefix(config, "postgresql://") ||
		strings.Contains(config, "host=") || strings.Contains(config, "dbname=")
}

// IsMemory reports whether config selects the in-process store.
func IsMemory(config string) bool {
	return config == "memory://" || config == ":memory:"
}
