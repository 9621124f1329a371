package system

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/habitara/internal/backup"
	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/identity"
	"github.com/julianstephens/habitara/internal/storage/sqlite"
	"github.com/julianstephens/habitara/internal/utils"
	"github.com/julianstephens/habitara/internal/validation"
)

// listProcesses is replaced in tests.
var listProcesses = ps.Processes

// errSkipped marks a check that could not run; it is not a failure.
var errSkipped = errors.New("skipped")

type DoctorCmd struct {
	Fix bool `help:"Delete completions whose habit no longer exists."`
}

type check struct {
	name string
	// warn makes a failure a warning instead of an error.
	warn bool
	run  func(ctx *cli.Context) error
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	reachable := true
	checks := []check{
		{name: "Database reachable", run: func(ctx *cli.Context) error {
			err := checkDBReachable(ctx)
			reachable = err == nil
			return err
		}},
		{name: "Schema version", run: ifReachable(&reachable, checkSchemaVersion)},
		{name: "Timezone setting", run: ifReachable(&reachable, checkTimezone)},
		{name: "Backups present", warn: true, run: checkBackupsPresent},
		{name: "Data validation", run: ifReachable(&reachable, cmd.checkValidation)},
		{name: "Other habitara processes", warn: true, run: checkOtherProcesses},
	}

	hasError := false
	for _, c := range checks {
		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case errors.Is(err, errSkipped):
			ctx.Printf("⊘ %s: SKIPPED (%s)\n", c.name, strings.TrimPrefix(err.Error(), errSkipped.Error()+": "))
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All diagnostics passed!")
	return nil
}

func ifReachable(reachable *bool, fn func(*cli.Context) error) func(*cli.Context) error {
	return func(ctx *cli.Context) error {
		if !*reachable {
			return fmt.Errorf("%w: database not reachable", errSkipped)
		}
		return fn(ctx)
	}
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if s, ok := ctx.Store.(*sqlite.Store); ok {
		db := s.GetDB()
		if db == nil {
			return fmt.Errorf("database connection is nil")
		}
		qctx, cancel := context.WithTimeout(ctx.Ctx(), constants.DefaultStoreOpTimeout)
		defer cancel()
		var one int
		if err := db.QueryRowContext(qctx, "SELECT 1").Scan(&one); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		return nil
	}
	st, err := m.MigrationStatus(ctx.Ctx())
	if err != nil {
		return err
	}
	if len(st.Pending) > 0 {
		return fmt.Errorf("schema at version %d, %d migration(s) pending; run '%s migrate'", st.Current, len(st.Pending), constants.AppName)
	}
	return nil
}

func checkTimezone(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if !utils.ValidateTimezone(settings.Timezone) {
		return fmt.Errorf("timezone %q is not a valid IANA name; fix it with '%s settings set timezone <name>'", settings.Timezone, constants.AppName)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	if _, ok := ctx.Store.(*sqlite.Store); !ok {
		return fmt.Errorf("%w: backups only apply to SQLite", errSkipped)
	}
	mgr := backup.NewManager(ctx.Store.GetConfigPath())
	backups, err := mgr.ListBackups()
	if err != nil {
		return err
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found in %s; create one with '%s backup create'", mgr.GetBackupDir(), constants.AppName)
	}
	return nil
}

func (cmd *DoctorCmd) checkValidation(ctx *cli.Context) error {
	s, err := ctx.Session()
	if errors.Is(err, identity.ErrSignedOut) {
		return fmt.Errorf("%w: not signed in", errSkipped)
	}
	if err != nil {
		return err
	}

	snap := s.Snapshot()
	result := validation.New().ValidateRecords(snap.Habits, snap.Completions)
	if !result.HasConflicts() {
		return nil
	}

	if cmd.Fix {
		store := ctx.Store.ForUser(s.UserID())
		actions := validation.AutoFixOrphans(result.Conflicts, func(id string) error {
			return store.DeleteCompletion(ctx.Ctx(), id)
		})
		for _, a := range actions {
			ctx.Printf("   fixed: %s\n", a.Action)
		}
		if err := s.Refresh(ctx.Ctx()); err != nil {
			return err
		}
		snap = s.Snapshot()
		result = validation.New().ValidateRecords(snap.Habits, snap.Completions)
		if !result.HasConflicts() {
			return nil
		}
	}
	return errors.New(strings.TrimSpace(result.FormatReport()))
}

// checkOtherProcesses warns when another habitara is running, since a
// restore or --force init would pull the database out from under it.
func checkOtherProcesses(_ *cli.Context) error {
	procs, err := listProcesses()
	if err != nil {
		return fmt.Errorf("%w: cannot list processes: %v", errSkipped, err)
	}
	self := os.Getpid()
	var others []string
	for _, p := range procs {
		if p.Pid() == self || p.PPid() == self {
			continue
		}
		exe := strings.TrimSuffix(filepath.Base(p.Executable()), ".exe")
		if exe == constants.AppName {
			others = append(others, fmt.Sprintf("%d", p.Pid()))
		}
	}
	if len(others) > 0 {
		return fmt.Errorf("%s is also running as pid %s; stop it before restoring a backup", constants.AppName, strings.Join(others, ", "))
	}
	return nil
}
