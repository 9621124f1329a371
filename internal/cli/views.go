package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/dashboard"
	"github.com/julianstephens/habitara/internal/export"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/stats"
)

type TodayCmd struct {
	Date string `short:"d" help:"Day to show: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *TodayCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	return RenderDay(ctx, day, snap.Habits, snap.Completions)
}

// RenderDay prints the grouped day view used by today and watch.
func RenderDay(ctx *Context, d time.Time, habits []models.Habit, completions map[string]models.HabitCompletion) error {
	view, err := dashboard.ProjectDay(d, habits, completions)
	if err != nil {
		return err
	}
	groups := dashboard.Group(habits)

	ctx.Printf("%s\n", d.Format(constants.DisplayDateFormat+", 2006"))
	if len(groups.Active) == 0 {
		ctx.Println("  No active habits. Add one with 'habitara habit add'.")
		return nil
	}

	done := 0
	for _, freq := range models.Frequencies {
		habits := groups.ByFrequency(freq)
		if len(habits) == 0 {
			continue
		}
		ctx.Printf("\n%s\n", heading(freq))
		for _, h := range habits {
			mark := "[ ]"
			comp := view[h.ID]
			if comp != nil {
				mark = "[x]"
				done++
			}
			line := fmt.Sprintf("  %s %s", mark, HabitLabel(h))
			if comp != nil && comp.Details != "" {
				line += "  - " + comp.Details
			}
			ctx.Println(line)
		}
	}
	ctx.Printf("\n%d/%d done\n", done, len(groups.Active))
	return nil
}

type StatsCmd struct {
	Habit string `arg:"" optional:"" help:"Habit name or ID (default: all active habits)."`
}

func (c *StatsCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	clock, err := ctx.Clock()
	if err != nil {
		return err
	}
	now := clock()
	snap := s.Snapshot()

	habits := dashboard.Group(snap.Habits).Active
	if c.Habit != "" {
		h, ok := s.FindHabit(c.Habit)
		if !ok {
			return fmt.Errorf("%w: %q", models.ErrHabitNotFound, c.Habit)
		}
		habits = []models.Habit{h}
	}
	if len(habits) == 0 {
		ctx.Println("No active habits.")
		return nil
	}

	all, err := stats.New(now.Location()).ComputeAll(habits, snap.Completions, now)
	if err != nil {
		return err
	}

	ctx.Printf("%-32s %-8s %6s %6s  %s\n", "HABIT", "FREQ", "STREAK", "TOTAL", "THIS PERIOD")
	for _, h := range habits {
		st := all[h.ID]
		ctx.Printf("%-32s %-8s %6d %6d  %s\n", truncate(HabitLabel(h), 32), h.Frequency, st.Streak, st.TotalCompletions, doneWord(st.PeriodCompleted))
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

type HistoryCmd struct {
	Days int `help:"Number of days to show (default: the history_days setting)."`
}

func (c *HistoryCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	days := c.Days
	if days <= 0 {
		days = settings.HistoryDays
	}
	if days > constants.MaxHistoryDays {
		days = constants.MaxHistoryDays
	}
	clock, err := ctx.Clock()
	if err != nil {
		return err
	}

	snap := s.Snapshot()
	rows, err := dashboard.History(snap.Habits, snap.Completions, clock(), days)
	if err != nil {
		return err
	}
	for _, row := range rows {
		names := make([]string, 0, len(row.Completed))
		for _, h := range row.Completed {
			names = append(names, HabitLabel(h))
		}
		ctx.Printf("%s  %s  %s\n", row.Day.Format(constants.HistoryDateFormat), bar(len(row.Completed), row.Active), strings.Join(names, ", "))
	}
	return nil
}

// bar draws a ten-cell completion ratio.
func bar(done, total int) string {
	const width = 10
	filled := 0
	if total > 0 {
		filled = done * width / total
	}
	return fmt.Sprintf("%s%s %d/%d", strings.Repeat("█", filled), strings.Repeat("░", width-filled), done, total)
}

type ExportCmd struct {
	Format string `short:"f" help:"Output format: yaml or json." default:"yaml" enum:"yaml,yml,json"`
	Out    string `short:"o" help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	clock, err := ctx.Clock()
	if err != nil {
		return err
	}
	now := clock()
	snap := s.Snapshot()

	all, err := stats.New(now.Location()).ComputeAll(snap.Habits, snap.Completions, now)
	if err != nil {
		return err
	}
	doc := export.Build(snap.UserID, now, snap.Habits, snap.Completions, all)

	if c.Out == "" {
		return export.Write(ctx.out(), doc, format)
	}
	f, err := os.OpenFile(c.Out, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("creating export file: %w", err)
	}
	if err := export.Write(f, doc, format); err != nil {
		f.Close()
		return fmt.Errorf("writing export: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	ctx.Printf("Exported %d habit(s) to %s\n", len(doc.Habits), c.Out)
	return nil
}
