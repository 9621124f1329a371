package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/dashboard"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/stats"
	"github.com/julianstephens/habitara/internal/validation"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit a habit."`
	List      HabitListCmd      `cmd:"" help:"List habits."`
	Show      HabitShowCmd      `cmd:"" help:"Show a habit with its stats and recent completions."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit (hide it without losing history)."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Restore an archived habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit permanently."`
}

type HabitAddCmd struct {
	Name       string `arg:"" help:"Habit name."`
	Frequency  string `short:"f" help:"How often: daily, weekly or monthly." default:"daily" enum:"daily,weekly,monthly"`
	Goal       string `short:"g" help:"achieve builds a habit, avoid breaks one." default:"achieve" enum:"achieve,avoid"`
	Emoji      string `help:"Emoji shown next to the name."`
	Details    string `help:"Free-form description."`
	AskDetails bool   `help:"Prompt for a note whenever the habit is marked in the TUI."`
}

func (c *HabitAddCmd) Run(ctx *Context) error {
	input := validation.HabitInput{
		Name:      strings.TrimSpace(c.Name),
		Frequency: c.Frequency,
		Goal:      c.Goal,
		Emoji:     c.Emoji,
		Details:   c.Details,
	}
	if err := input.Validate(); err != nil {
		return err
	}

	s, err := ctx.Session()
	if err != nil {
		return err
	}
	if existing, ok := s.FindHabit(input.Name); ok && strings.EqualFold(existing.Name, input.Name) {
		return fmt.Errorf("habit with name %q already exists", existing.Name)
	}

	created, err := s.CreateHabit(ctx.Ctx(), models.Habit{
		Name:       input.Name,
		Frequency:  models.Frequency(input.Frequency),
		Goal:       models.Goal(input.Goal),
		Emoji:      input.Emoji,
		Details:    input.Details,
		AskDetails: c.AskDetails,
	})
	if err != nil {
		return err
	}

	ctx.Printf("Added %s habit: %s (%s)\n", created.Frequency, HabitLabel(created), created.ID)
	return nil
}

type HabitEditCmd struct {
	Habit      string  `arg:"" help:"Habit name or ID."`
	Name       *string `help:"New name."`
	Frequency  *string `short:"f" help:"New frequency (daily, weekly, monthly)."`
	Goal       *string `short:"g" help:"New goal (achieve, avoid)."`
	Emoji      *string `help:"New emoji (empty string clears it)."`
	Details    *string `help:"New description (empty string clears it)."`
	AskDetails *bool   `help:"Prompt for a note when marking in the TUI."`
}

func (c *HabitEditCmd) Run(ctx *Context) error {
	s, habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	var patch models.HabitPatch
	input := validation.HabitInput{
		Name:      habit.Name,
		Frequency: string(habit.Frequency),
		Goal:      string(habit.Goal),
		Emoji:     habit.Emoji,
		Details:   habit.Details,
	}
	if c.Name != nil {
		name := strings.TrimSpace(*c.Name)
		input.Name = name
		patch.Name = &name
	}
	if c.Frequency != nil {
		freq := models.Frequency(*c.Frequency)
		input.Frequency = *c.Frequency
		patch.Frequency = &freq
	}
	if c.Goal != nil {
		goal := models.Goal(*c.Goal)
		input.Goal = *c.Goal
		patch.Goal = &goal
	}
	if c.Emoji != nil {
		input.Emoji = *c.Emoji
		patch.Emoji = c.Emoji
	}
	if c.Details != nil {
		input.Details = *c.Details
		patch.Details = c.Details
	}
	patch.AskDetails = c.AskDetails

	if patch.IsEmpty() {
		ctx.Println("No changes specified. Use flags such as --name or --frequency to edit the habit.")
		return nil
	}
	if err := input.Validate(); err != nil {
		return err
	}

	if err := s.UpdateHabit(ctx.Ctx(), habit.ID, patch); err != nil {
		return err
	}
	ctx.Printf("Updated habit: %s\n", input.Name)
	if patch.Frequency != nil && *patch.Frequency != habit.Frequency {
		ctx.Println("Note: completions recorded under the previous frequency are kept but no longer count.")
	}
	return nil
}

type HabitListCmd struct {
	All       bool   `short:"a" help:"Include archived habits."`
	Frequency string `short:"f" help:"Only list habits with this frequency (daily, weekly, monthly)."`
	Goal      string `short:"g" help:"Only list habits with this goal (achieve, avoid)."`
}

func (c *HabitListCmd) matches(h models.Habit) bool {
	if c.Frequency != "" && string(h.Frequency) != c.Frequency {
		return false
	}
	return c.Goal == "" || string(h.Goal) == c.Goal
}

func (c *HabitListCmd) Run(ctx *Context) error {
	if c.Frequency != "" {
		if _, err := models.ParseFrequency(c.Frequency); err != nil {
			return err
		}
	}
	if c.Goal != "" {
		if _, err := models.ParseGoal(c.Goal); err != nil {
			return err
		}
	}
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	snap := s.Snapshot()
	groups := dashboard.Group(snap.Habits)

	clock, err := ctx.Clock()
	if err != nil {
		return err
	}
	all, err := stats.New(clock().Location()).ComputeAll(snap.Habits, snap.Completions, clock())
	if err != nil {
		return err
	}

	printed := 0
	for _, freq := range models.Frequencies {
		var habits []models.Habit
		for _, h := range groups.ByFrequency(freq) {
			if c.matches(h) {
				habits = append(habits, h)
			}
		}
		if len(habits) == 0 {
			continue
		}
		ctx.Printf("%s:\n", heading(freq))
		for _, h := range habits {
			st := all[h.ID]
			mark := " "
			if st.PeriodCompleted {
				mark = "✓"
			}
			ctx.Printf("  [%s] %-30s streak %d\n", mark, HabitLabel(h), st.Streak)
			printed++
		}
	}

	if c.All && len(groups.Archived) > 0 {
		ctx.Println("Archived:")
		for _, h := range groups.Archived {
			if !c.matches(h) {
				continue
			}
			ctx.Printf("      %s (%s)\n", HabitLabel(h), h.Frequency)
			printed++
		}
	}

	if printed == 0 {
		ctx.Println("No habits found.")
	}
	return nil
}

type HabitShowCmd struct {
	Habit  string `arg:"" help:"Habit name or ID."`
	Recent int    `help:"Number of recent completions to show." default:"5"`
}

func (c *HabitShowCmd) Run(ctx *Context) error {
	s, habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	clock, err := ctx.Clock()
	if err != nil {
		return err
	}
	now := clock()

	var records []models.HabitCompletion
	for _, comp := range s.Completions() {
		if comp.HabitID == habit.ID && comp.Completed {
			records = append(records, comp)
		}
	}
	st, err := stats.New(now.Location()).Compute(&habit, records, now)
	if err != nil {
		return err
	}

	ctx.Printf("%s\n", HabitLabel(habit))
	ctx.Printf("  ID:          %s\n", habit.ID)
	ctx.Printf("  Frequency:   %s\n", habit.Frequency)
	ctx.Printf("  Goal:        %s\n", habit.Goal)
	ctx.Printf("  Created:     %s\n", habit.CreatedTime(now.Location()).Format(constants.DateFormat))
	if habit.Details != "" {
		ctx.Printf("  Details:     %s\n", habit.Details)
	}
	ctx.Printf("  Streak:      %d\n", st.Streak)
	ctx.Printf("  Completions: %d\n", st.TotalCompletions)
	ctx.Printf("  This period: %s\n", doneWord(st.PeriodCompleted))

	sort.Slice(records, func(i, j int) bool { return records[i].Date > records[j].Date })
	if len(records) > c.Recent {
		records = records[:c.Recent]
	}
	if len(records) > 0 {
		ctx.Println("  Recent:")
		for _, r := range records {
			line := "    " + r.Date
			if r.Details != "" {
				line += "  " + r.Details
			}
			ctx.Println(line)
		}
	}
	return nil
}

func heading(freq models.Frequency) string {
	s := string(freq)
	return strings.ToUpper(s[:1]) + s[1:]
}

func doneWord(done bool) string {
	if done {
		return "done"
	}
	return "not yet"
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitArchiveCmd) Run(ctx *Context) error {
	return setActive(ctx, c.Habit, false)
}

type HabitUnarchiveCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
}

func (c *HabitUnarchiveCmd) Run(ctx *Context) error {
	return setActive(ctx, c.Habit, true)
}

func setActive(ctx *Context, nameOrID string, active bool) error {
	s, habit, err := ctx.ResolveHabit(nameOrID)
	if err != nil {
		return err
	}
	if habit.Active == active {
		ctx.Printf("%s is already %s.\n", habit.Name, activeWord(active))
		return nil
	}
	if err := s.SetActive(ctx.Ctx(), habit.ID, active); err != nil {
		return err
	}
	ctx.Printf("%s is now %s.\n", habit.Name, activeWord(active))
	return nil
}

func activeWord(active bool) string {
	if active {
		return "active"
	}
	return "archived"
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *Context) error {
	s, habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q permanently?", habit.Name)).
			Description("Archiving keeps the history; deleting cannot be undone.").
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	removed, err := s.DeleteHabit(ctx.Ctx(), habit.ID)
	if err != nil {
		return err
	}
	ctx.Printf("Deleted habit %s", habit.Name)
	if removed > 0 {
		ctx.Printf(" and %d completion(s)", removed)
	}
	ctx.Println(".")
	return nil
}
