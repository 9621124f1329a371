package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitara/internal/models"
	"github.com/julianstephens/habitara/internal/period"
	"github.com/julianstephens/habitara/internal/tracker"
	"github.com/julianstephens/habitara/internal/tui/components/habits"
	"github.com/julianstephens/habitara/internal/tui/components/today"
	"github.com/julianstephens/habitara/internal/validation"
)

type snapshotMsg tracker.Snapshot

type subscriptionClosedMsg struct{}

// actionDoneMsg reports the outcome of a session mutation run as a command.
type actionDoneMsg struct {
	status string
	err    error
	// askNote opens the note form once a habit with AskDetails is marked.
	askNote *today.NoteMsg
}

func waitForSnapshot(ch <-chan tracker.Snapshot) tea.Cmd {
	return func() tea.Msg {
		snap, ok := <-ch
		if !ok {
			return subscriptionClosedMsg{}
		}
		return snapshotMsg(snap)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.apply(tracker.Snapshot(msg))
		return m, waitForSnapshot(m.snapshots)

	case subscriptionClosedMsg:
		return m, nil

	case actionDoneMsg:
		m.err = msg.err
		m.status = msg.status
		// the session already published; pick it up without waiting
		m.apply(m.session.Snapshot())
		if msg.askNote != nil && msg.err == nil {
			cmd := m.openNoteForm(*msg.askNote)
			return m, cmd
		}
		return m, nil

	case today.ToggleMsg:
		return m, m.toggle(msg)

	case today.NoteMsg:
		cmd := m.openNoteForm(msg)
		return m, cmd

	case habits.AddHabitMsg:
		m.habitForm = &HabitFormModel{
			Frequency: string(models.FrequencyDaily),
			Goal:      string(models.GoalAchieve),
		}
		m.form = NewHabitForm(m.habitForm)
		m.previousState = m.state
		m.state = StateAddHabit
		return m, m.form.Init()

	case habits.ArchiveHabitMsg:
		return m, m.setActive(msg)

	case habits.DeleteHabitMsg:
		m.habitToDelete = msg
		m.previousState = m.state
		m.state = StateConfirmDelete
		return m, nil
	}

	switch m.state {
	case StateAddHabit:
		return m.updateAddHabit(msg)
	case StateNote:
		return m.updateNote(msg)
	case StateConfirmDelete:
		return m.updateConfirmDelete(msg)
	}

	if msg, ok := msg.(tea.KeyMsg); ok {
		if handled, cmd := m.handleGlobalKeys(msg); handled {
			return m, cmd
		}
	}

	var cmd tea.Cmd
	switch m.state {
	case StateToday:
		m.todayModel, cmd = m.todayModel.Update(msg)
	case StateHabits:
		m.habitsModel, cmd = m.habitsModel.Update(msg)
	case StateStats:
		m.statsModel, cmd = m.statsModel.Update(msg)
	case StateHistory:
		m.historyModel, cmd = m.historyModel.Update(msg)
	}
	return m, cmd
}

func (m *Model) handleGlobalKeys(msg tea.KeyMsg) (bool, tea.Cmd) {
	if m.state == StateHabits && m.habitsModel.Filtering() {
		return false, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		m.unsubscribe()
		return true, tea.Quit
	case key.Matches(msg, m.keys.Tab):
		m.state = (m.state + 1) % SessionState(len(tabTitles))
		m.status, m.err = "", nil
		return true, nil
	case key.Matches(msg, m.keys.ShiftTab):
		m.state = (m.state + SessionState(len(tabTitles)) - 1) % SessionState(len(tabTitles))
		m.status, m.err = "", nil
		return true, nil
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return true, nil
	}

	if m.state != StateToday {
		return false, nil
	}
	switch {
	case key.Matches(msg, m.keys.PrevDay):
		m.day = m.day.AddDate(0, 0, -1)
		m.refresh()
		return true, nil
	case key.Matches(msg, m.keys.NextDay):
		// refresh clamps to the current day
		m.day = m.day.AddDate(0, 0, 1)
		m.refresh()
		return true, nil
	case key.Matches(msg, m.keys.Today):
		now := m.now()
		m.day = period.Today(now.Location(), now)
		m.refresh()
		return true, nil
	}
	return false, nil
}

func (m Model) toggle(msg today.ToggleMsg) tea.Cmd {
	s, ctx, day := m.session, m.ctx, m.day
	habit, ok := s.FindHabit(msg.HabitID)
	if !ok {
		return nil
	}
	return func() tea.Msg {
		if err := s.ToggleCompletion(ctx, habit.ID, day, msg.Done); err != nil {
			return actionDoneMsg{err: err}
		}
		if !msg.Done {
			return actionDoneMsg{status: "Cleared " + habit.Name}
		}
		done := actionDoneMsg{status: "Marked " + habit.Name}
		if habit.AskDetails {
			done.askNote = &today.NoteMsg{HabitID: habit.ID}
		}
		return done
	}
}

func (m Model) setActive(msg habits.ArchiveHabitMsg) tea.Cmd {
	s, ctx := m.session, m.ctx
	return func() tea.Msg {
		if err := s.SetActive(ctx, msg.ID, !msg.Archive); err != nil {
			return actionDoneMsg{err: err}
		}
		if msg.Archive {
			return actionDoneMsg{status: "Habit archived"}
		}
		return actionDoneMsg{status: "Habit restored"}
	}
}

func (m *Model) openNoteForm(msg today.NoteMsg) tea.Cmd {
	habit, ok := m.session.FindHabit(msg.HabitID)
	if !ok {
		return nil
	}
	m.noteForm = &NoteFormModel{HabitID: habit.ID, Details: msg.Details}
	m.form = NewNoteForm(m.noteForm, habit.Name)
	m.previousState = StateToday
	m.state = StateNote
	return m.form.Init()
}

// updateForm feeds msg to the active huh form. Esc aborts.
func (m *Model) updateForm(msg tea.Msg) (huh.FormState, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.Type == tea.KeyEsc {
		return huh.StateAborted, nil
	}
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}
	return m.form.State, cmd
}

func (m Model) updateAddHabit(msg tea.Msg) (tea.Model, tea.Cmd) {
	formState, cmd := m.updateForm(msg)
	switch formState {
	case huh.StateCompleted:
		m.state = m.previousState
		fm := *m.habitForm
		input := validation.HabitInput{
			Name:      strings.TrimSpace(fm.Name),
			Frequency: fm.Frequency,
			Goal:      fm.Goal,
			Emoji:     strings.TrimSpace(fm.Emoji),
		}
		if err := input.Validate(); err != nil {
			m.err = err
			return m, nil
		}
		s, ctx := m.session, m.ctx
		return m, func() tea.Msg {
			created, err := s.CreateHabit(ctx, models.Habit{
				Name:       input.Name,
				Frequency:  models.Frequency(input.Frequency),
				Goal:       models.Goal(input.Goal),
				Emoji:      input.Emoji,
				AskDetails: fm.AskDetails,
			})
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{status: fmt.Sprintf("Added %s habit %s", created.Frequency, created.Name)}
		}
	case huh.StateAborted:
		m.state = m.previousState
		return m, nil
	}
	return m, cmd
}

func (m Model) updateNote(msg tea.Msg) (tea.Model, tea.Cmd) {
	formState, cmd := m.updateForm(msg)
	switch formState {
	case huh.StateCompleted:
		m.state = m.previousState
		fm := *m.noteForm
		s, ctx, day := m.session, m.ctx, m.day
		return m, func() tea.Msg {
			if err := s.UpdateCompletionDetails(ctx, fm.HabitID, day, strings.TrimSpace(fm.Details)); err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{status: "Note saved"}
		}
	case huh.StateAborted:
		m.state = m.previousState
		return m, nil
	}
	return m, cmd
}

func (m Model) updateConfirmDelete(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch {
	case key.Matches(keyMsg, m.keys.Yes):
		m.state = m.previousState
		target := m.habitToDelete
		m.habitToDelete = habits.DeleteHabitMsg{}
		s, ctx := m.session, m.ctx
		return m, func() tea.Msg {
			removed, err := s.DeleteHabit(ctx, target.ID)
			if err != nil {
				return actionDoneMsg{err: err}
			}
			return actionDoneMsg{status: fmt.Sprintf("Deleted %s and %d completion(s)", target.Name, removed)}
		}
	case key.Matches(keyMsg, m.keys.No):
		m.state = m.previousState
		m.habitToDelete = habits.DeleteHabitMsg{}
	}
	return m, nil
}
