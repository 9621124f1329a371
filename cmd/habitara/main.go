package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"

	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/cli/backups"
	"github.com/julianstephens/habitara/internal/cli/settings"
	"github.com/julianstephens/habitara/internal/cli/system"
	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/errors"
	"github.com/julianstephens/habitara/internal/identity"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/storage"
	"github.com/julianstephens/habitara/internal/storage/factory"
	"github.com/julianstephens/habitara/internal/storage/sqlite"
)

var CLI struct {
	Version  kong.VersionFlag
	Config   string `help:"Database path, PostgreSQL connection string, memory:// or 'keyring'. For PostgreSQL, credentials must NOT be embedded in the connection string. Use HABITARA_DB_CONNECTION, .pgpass, or the OS keyring instead." type:"string" env:"HABITARA_CONFIG" default:"${default_config}"`
	User     string `help:"Act as this account instead of the signed-in one." env:"HABITARA_USER"`
	Debug    bool   `help:"Log to stderr at debug level." env:"HABITARA_DEBUG"`
	LogLevel string `help:"Log level: debug, info, warn or error." env:"HABITARA_LOG_LEVEL"`

	Init     system.InitCmd       `cmd:"" help:"Initialize habitara storage."`
	Migrate  system.MigrateCmd    `cmd:"" help:"Run database migrations."`
	Doctor   system.DoctorCmd     `cmd:"" help:"Run health checks and diagnostics."`
	Tui      system.TuiCmd        `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Watch    cli.WatchCmd         `cmd:"" help:"Print today's habits and reprint on every change."`
	Login    cli.LoginCmd         `cmd:"" help:"Sign in as an account."`
	Logout   cli.LogoutCmd        `cmd:"" help:"Sign out."`
	Whoami   cli.WhoamiCmd        `cmd:"" help:"Show the signed-in account."`
	Habit    cli.HabitCmd         `cmd:"" help:"Manage habits."`
	Mark     cli.MarkCmd          `cmd:"" help:"Mark a habit done for the current period."`
	Unmark   cli.UnmarkCmd        `cmd:"" help:"Clear a habit's completion for a period."`
	Note     cli.NoteCmd          `cmd:"" help:"Attach a note to a completion."`
	Today    cli.TodayCmd         `cmd:"" help:"Show the day view grouped by frequency."`
	Stats    cli.StatsCmd         `cmd:"" help:"Show streaks and totals."`
	History  cli.HistoryCmd       `cmd:"" help:"Show recent days."`
	Export   cli.ExportCmd        `cmd:"" help:"Export habits and completions as YAML or JSON."`
	Backup   backups.BackupCmd    `cmd:"" help:"Manage database backups."`
	Settings settings.SettingsCmd `cmd:"" help:"Manage application settings."`
	Keyring  system.KeyringCmd    `cmd:"" help:"Manage the PostgreSQL connection string in the OS keyring."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Habit completion and streak tracker"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Configuration(kong.JSON, constants.DefaultJSONConfig),
		kong.Vars{
			"version":        constants.Version,
			"default_config": constants.DefaultConfigPath,
		},
	)

	config, err := factory.Resolve(CLI.Config)
	if err != nil {
		errors.Fatal(err)
	}
	store, err := factory.Open(config)
	if err != nil {
		errors.Fatal(err)
	}

	logDir := configDir(store)
	if err := logger.Init(logger.Config{
		Debug:     CLI.Debug,
		ConfigDir: logDir,
		Level:     CLI.LogLevel,
	}); err != nil {
		errors.Fatal(err)
	}
	logger.Debug("Starting", "command", ctx.Command(), "storage", store.GetConfigPath(), "log", logger.Path(logDir))

	accounts := identity.Keyring{}
	appCtx := &cli.Context{
		Store:    store,
		Identity: identity.Chain{identity.Static(CLI.User), accounts},
		Accounts: accounts,
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	appCtx.WithContext(sigCtx)

	if needsStore(ctx.Command()) {
		if err := store.Load(); err != nil {
			errors.Fatal(err)
		}
	}

	err = ctx.Run(appCtx)
	if closeErr := appCtx.Close(); closeErr != nil {
		logger.Warn("Failed to close storage", "error", closeErr)
	}
	if err != nil {
		stop()
		errors.Fatal(err)
	}
}

// needsStore reports whether command reads the database. Init opens the
// store itself; account and keyring commands never touch it.
func needsStore(command string) bool {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		return true
	}
	switch fields[0] {
	case "init", "login", "logout", "keyring":
		return false
	}
	return true
}

// configDir is where logs go: next to a SQLite database, otherwise the
// default config directory.
func configDir(store storage.Provider) string {
	if s, ok := store.(*sqlite.Store); ok {
		return filepath.Dir(s.GetConfigPath())
	}
	dir := filepath.Dir(constants.DefaultConfigPath)
	if home, err := os.UserHomeDir(); err == nil {
		dir = filepath.Join(home, strings.TrimPrefix(dir, "~"))
	}
	return dir
}
