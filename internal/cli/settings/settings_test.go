package settings

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/storage/sqlite"
)

func setupTestDB(t *testing.T) (*cli.Context, *bytes.Buffer) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "habitara.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init store: %v", err)
	}
	var out bytes.Buffer
	ctx := &cli.Context{Store: store, Out: &out}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close store: %v", err)
		}
	})
	return ctx, &out
}

func TestSettingsShowCmd(t *testing.T) {
	ctx, out := setupTestDB(t)

	if err := (&SettingsShowCmd{}).Run(ctx); err != nil {
		t.Fatalf("settings show failed: %v", err)
	}
	for _, want := range []string{"timezone", "Local", "history_days", "14", "cascade_delete", "true"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestSettingsSetCmd(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		value   string
		wantErr bool
	}{
		{"timezone", "timezone", "America/New_York", false},
		{"local timezone", "timezone", "Local", false},
		{"bad timezone", "timezone", "Mars/Base", true},
		{"history days", "history_days", "30", false},
		{"history days zero", "history_days", "0", true},
		{"history days too many", "history_days", "400", true},
		{"history days text", "history_days", "lots", true},
		{"cascade off", "cascade_delete", "false", false},
		{"cascade garbage", "cascade_delete", "maybe", true},
		{"unknown key", "day_start", "07:00", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := setupTestDB(t)
			err := (&SettingsSetCmd{Key: tt.key, Value: tt.value}).Run(ctx)
			if (err != nil) != tt.wantErr {
				t.Fatalf("settings set error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			out := &bytes.Buffer{}
			ctx.Out = out
			if err := (&SettingsShowCmd{}).Run(ctx); err != nil {
				t.Fatal(err)
			}
			if !strings.Contains(out.String(), tt.value) {
				t.Errorf("new value %q not shown:\n%s", tt.value, out.String())
			}
		})
	}
}

func TestSettingsSetPersists(t *testing.T) {
	ctx, _ := setupTestDB(t)

	if err := (&SettingsSetCmd{Key: "cascade_delete", Value: "false"}).Run(ctx); err != nil {
		t.Fatal(err)
	}
	settings, err := ctx.Store.GetSettings()
	if err != nil {
		t.Fatal(err)
	}
	if settings.CascadeDelete {
		t.Error("cascade_delete was not persisted")
	}
	if settings.HistoryDays != 14 {
		t.Errorf("unrelated setting changed: %+v", settings)
	}
}
