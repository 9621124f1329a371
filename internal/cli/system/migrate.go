package system

import (
	"context"
	"fmt"

	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/migration"
)

// migrator is implemented by the SQL-backed stores.
type migrator interface {
	Migrate(ctx context.Context, logFn func(string)) (int, error)
	MigrationStatus(ctx context.Context) (migration.Status, error)
}

type MigrateCmd struct {
	Status bool `help:"Only report the schema version and pending migrations."`
}

func (c *MigrateCmd) Run(ctx *cli.Context) error {
	m, ok := ctx.Store.(migrator)
	if !ok {
		ctx.Println("This storage backend has no schema to migrate.")
		return nil
	}

	if c.Status {
		st, err := m.MigrationStatus(ctx.Ctx())
		if err != nil {
			return err
		}
		ctx.Printf("Schema version %d of %d\n", st.Current, st.Latest)
		for _, p := range st.Pending {
			ctx.Printf("  pending: %03d_%s\n", p.Version, p.Name)
		}
		return nil
	}

	count, err := m.Migrate(ctx.Ctx(), func(msg string) {
		ctx.Println(msg)
	})
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if count == 0 {
		ctx.Println("No migrations to apply. Database is up to date.")
	} else {
		ctx.Printf("\nSuccessfully applied %d migration(s).\n", count)
	}
	return nil
}
