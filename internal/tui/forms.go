package tui

import (
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/validation"
)

// NewHabitForm creates the form for adding a habit
func NewHabitForm(fm *HabitFormModel) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&fm.Name).
				Validate(validation.ValidateName),
			huh.NewSelect[string]().
				Title("Frequency").
				Options(
					huh.NewOption("Daily", string(models.FrequencyDaily)),
					huh.NewOption("Weekly", string(models.FrequencyWeekly)),
					huh.NewOption("Monthly", string(models.FrequencyMonthly)),
				).
				Value(&fm.Frequency),
			huh.NewSelect[string]().
				Title("Goal").
				Options(
					huh.NewOption("Build it up (achieve)", string(models.GoalAchieve)),
					huh.NewOption("Break it (avoid)", string(models.GoalAvoid)),
				).
				Value(&fm.Goal),
			huh.NewInput().
				Title("Emoji").
				Description("Optional").
				Value(&fm.Emoji),
			huh.NewConfirm().
				Title("Ask for a note when marked?").
				Value(&fm.AskDetails),
		),
	)
}

// NewNoteForm edits the details attached to one completion.
func NewNoteForm(fm *NoteFormModel, habitName string) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Note for " + habitName).
				CharLimit(500).
				Value(&fm.Details),
		),
	)
}
