package errors

import (
	"errors"
	"fmt"
	"os"

	"github.com/julianstephens/habitara/internal/identity"
	"github.com/julianstephens/habitara/internal/keyring"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/migration"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/storage/factory"
	"github.com/julianstephens/habitara/internal/tracker"
)

// hints maps sentinel errors to the next thing a user should try.
var hints = []struct {
	target error
	hint   string
}{
	{identity.ErrSignedOut, "sign in with 'habitara login <account>' or pass --user"},
	{models.ErrHabitNotFound, "list habits with 'habitara habit list --all'"},
	{models.ErrCompletionNotFound, "mark the habit first with 'habitara mark <habit>'"},
	{models.ErrInvalidFrequency, "frequency must be daily, weekly or monthly"},
	{models.ErrInvalidGoal, "goal must be achieve or avoid"},
	{migration.ErrSchemaTooNew, "upgrade habitara; this database was written by a newer version"},
	{factory.ErrEmbeddedCredentials, "store the connection string with 'habitara keyring set' or HABITARA_DB_CONNECTION"},
	{keyring.ErrKeyringUnavailable, "use --user or HABITARA_DB_CONNECTION instead of the OS keyring"},
	{tracker.ErrWatchUnsupported, "this storage backend cannot be watched"},
	{models.ErrStoreUnavailable, "check the database with 'habitara doctor'"},
}

// Hint returns a suggested follow-up for err, or "" when none applies.
func Hint(err error) string {
	if err == nil {
		return ""
	}
	for _, h := range hints {
		if errors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
