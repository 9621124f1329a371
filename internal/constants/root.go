package constants

import "time"

const (
	AppName            = "habitara"
	DefaultKeyringUser = "database-connection"
	AccountKeyringUser = "account"
	DefaultConfigPath  = "~/.config/habitara/habitara.db"
	DefaultJSONConfig  = "~/.config/habitara/config.json"
	Version            = "v0.1.0"

	// DateFormat is the period key / calendar day format used throughout the application (YYYY-MM-DD)
	DateFormat = "2006-01-02"

	// Backup constants
	MaxBackups       = 14
	BackupDirName    = "backups"
	BackupFilePrefix = "habitara-"
	BackupFileSuffix = ".db"

	// PostgreSQL LISTEN/NOTIFY channel fed by the row triggers in migrations/postgres
	ChangeChannel = "habitara_changes"

	// Watcher tuning
	WatchDebounce          = 150 * time.Millisecond
	ListenerMinReconnect   = 10 * time.Second
	ListenerMaxReconnect   = time.Minute
	DefaultStoreOpTimeout  = 10 * time.Second
	SubscriptionBufferSize = 1

	// Habit name bounds enforced by the form layer
	HabitNameMin = 3
	HabitNameMax = 50
)
