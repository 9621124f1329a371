package settings

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/utils"
)

type SettingsCmd struct {
	Show SettingsShowCmd `cmd:"" help:"Show current settings." default:"1"`
	Set  SettingsSetCmd  `cmd:"" help:"Change a setting."`
}

type SettingsShowCmd struct{}

func (c *SettingsShowCmd) Run(ctx *cli.Context) error {
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	ctx.Println("Current Settings:")
	ctx.Printf("  %-16s %s\n", constants.SettingTimezone, settings.Timezone)
	ctx.Printf("  %-16s %d\n", constants.SettingHistoryDays, settings.HistoryDays)
	ctx.Printf("  %-16s %v\n", constants.SettingCascadeDelete, settings.CascadeDelete)
	return nil
}

type SettingsSetCmd struct {
	Key   string `arg:"" help:"Setting name: timezone, history_days or cascade_delete."`
	Value string `arg:"" help:"New value."`
}

// setters validate and apply one key; MapToSettings only parses.
var setters = map[string]func(*models.Settings, string) error{
	constants.SettingTimezone: func(s *models.Settings, v string) error {
		if !utils.ValidateTimezone(v) {
			return fmt.Errorf("invalid timezone %q (use an IANA name such as Europe/Berlin, or Local)", v)
		}
		s.Timezone = v
		return nil
	},
	constants.SettingHistoryDays: func(s *models.Settings, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > constants.MaxHistoryDays {
			return fmt.Errorf("history_days must be a number between 1 and %d", constants.MaxHistoryDays)
		}
		s.HistoryDays = n
		return nil
	},
	constants.SettingCascadeDelete: func(s *models.Settings, v string) error {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("cascade_delete must be true or false")
		}
		s.CascadeDelete = b
		return nil
	},
}

func (c *SettingsSetCmd) Run(ctx *cli.Context) error {
	set, ok := setters[c.Key]
	if !ok {
		keys := make([]string, 0, len(setters))
		for k := range setters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown setting %q (expected one of %v)", c.Key, keys)
	}

	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	if err := set(&settings, c.Value); err != nil {
		return err
	}
	if err := ctx.Store.SaveSettings(settings); err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	ctx.Printf("Set %s = %s\n", c.Key, c.Value)
	return nil
}
