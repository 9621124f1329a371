package cli

import (
	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
)

type MarkCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `short:"d" help:"Day to mark: YYYY-MM-DD, today, yesterday or -N (default: today)."`
	Note  string `short:"n" help:"Note stored with the completion."`
}

func (c *MarkCmd) Run(ctx *Context) error {
	s, habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	key, err := period.Resolve(habit.Frequency, day)
	if err != nil {
		return err
	}

	_, already := s.Completions()[models.CompletionID(habit.ID, key)]
	if err := s.ToggleCompletion(ctx.Ctx(), habit.ID, day, true); err != nil {
		return err
	}
	if c.Note != "" {
		if err := s.UpdateCompletionDetails(ctx.Ctx(), habit.ID, day, c.Note); err != nil {
			return err
		}
	}

	switch {
	case already:
		ctx.Printf("%s was already marked for %s\n", habit.Name, describePeriod(habit.Frequency, key))
	case habit.Goal == models.GoalAvoid:
		ctx.Printf("Recorded a slip for %s in %s; streak reset\n", habit.Name, describePeriod(habit.Frequency, key))
	default:
		ctx.Printf("Marked %s for %s\n", habit.Name, describePeriod(habit.Frequency, key))
	}
	if !habit.Active {
		ctx.Println("Note: this habit is archived and is hidden from the day view.")
	}
	return nil
}

type UnmarkCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Date  string `short:"d" help:"Day to unmark: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *UnmarkCmd) Run(ctx *Context) error {
	s, habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	key, err := period.Resolve(habit.Frequency, day)
	if err != nil {
		return err
	}

	if _, ok := s.Completions()[models.CompletionID(habit.ID, key)]; !ok {
		ctx.Printf("%s was not marked for %s\n", habit.Name, describePeriod(habit.Frequency, key))
		return nil
	}
	if err := s.ToggleCompletion(ctx.Ctx(), habit.ID, day, false); err != nil {
		return err
	}
	ctx.Printf("Unmarked %s for %s\n", habit.Name, describePeriod(habit.Frequency, key))
	return nil
}

type NoteCmd struct {
	Habit string `arg:"" help:"Habit name or ID."`
	Text  string `arg:"" help:"Note text (empty string clears it)."`
	Date  string `short:"d" help:"Day of the completion: YYYY-MM-DD, today, yesterday or -N (default: today)."`
}

func (c *NoteCmd) Run(ctx *Context) error {
	s, habit, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	day, err := ctx.Day(c.Date)
	if err != nil {
		return err
	}
	if err := s.UpdateCompletionDetails(ctx.Ctx(), habit.ID, day, c.Text); err != nil {
		return err
	}
	ctx.Printf("Saved note for %s on %s\n", habit.Name, day.Format(constants.DateFormat))
	return nil
}

// describePeriod names the period a key stands for, e.g. "the week of 2025-08-18".
func describePeriod(freq models.Frequency, key string) string {
	switch freq {
	case models.FrequencyWeekly:
		return "the week of " + key
	case models.FrequencyMonthly:
		if day, err := period.ParseDay(key); err == nil {
			return day.Format("January 2006")
		}
	}
	return key
}
