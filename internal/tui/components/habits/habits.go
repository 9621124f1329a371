package habits

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitara/internal/models"
)

type AddHabitMsg struct{}

// ArchiveHabitMsg archives (Archive) or restores an archived habit.
type ArchiveHabitMsg struct {
	ID      string
	Archive bool
}

type DeleteHabitMsg struct {
	ID   string
	Name string
}

type Item struct {
	Habit models.Habit
	Stats models.Stats
}

func (i Item) Title() string {
	title := i.Habit.Name
	if i.Habit.Emoji != "" {
		title = i.Habit.Emoji + " " + title
	}
	if !i.Habit.Active {
		title = "[ARCHIVED] " + title
	}
	return title
}

func (i Item) Description() string {
	if !i.Habit.Active {
		return fmt.Sprintf("%s %s, archived (%d total)", i.Habit.Frequency, i.Habit.Goal, i.Stats.TotalCompletions)
	}
	return fmt.Sprintf("%s %s, streak %d, %d total", i.Habit.Frequency, i.Habit.Goal, i.Stats.Streak, i.Stats.TotalCompletions)
}

func (i Item) FilterValue() string { return i.Habit.Name }

type KeyMap struct {
	Add     key.Binding
	Archive key.Binding
	Delete  key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Add: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "add"),
		),
		Archive: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "archive/unarchive"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
	}
}

type Model struct {
	list list.Model
	keys KeyMap
}

func New(width, height int) Model {
	l := list.New(nil, list.NewDefaultDelegate(), width, height)
	l.Title = "Habits"
	l.SetShowTitle(false)
	l.SetShowHelp(false)

	keys := DefaultKeyMap()
	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Archive, keys.Delete}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{keys.Add, keys.Archive, keys.Delete}
	}

	return Model{
		list: l,
		keys: keys,
	}
}

// SetHabits lists active habits first, then archived ones.
func (m *Model) SetHabits(habits []models.Habit, stats map[string]models.Stats) {
	items := make([]list.Item, 0, len(habits))
	for _, active := range []bool{true, false} {
		for _, h := range habits {
			if h.Active == active {
				items = append(items, Item{Habit: h, Stats: stats[h.ID]})
			}
		}
	}
	m.list.SetItems(items)
}

func (m Model) Keys() KeyMap { return m.keys }

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	if msg, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Add):
			return m, func() tea.Msg { return AddHabitMsg{} }
		case key.Matches(msg, m.keys.Archive):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return ArchiveHabitMsg{ID: i.Habit.ID, Archive: i.Habit.Active} }
			}
			return m, nil
		case key.Matches(msg, m.keys.Delete):
			if i, ok := m.list.SelectedItem().(Item); ok {
				return m, func() tea.Msg { return DeleteHabitMsg{ID: i.Habit.ID, Name: i.Habit.Name} }
			}
			return m, nil
		}
	}

	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.list.Items()) == 0 && m.list.FilterState() != list.Filtering {
		return "\n  No habits yet.\n  Press 'a' to add one."
	}
	return m.list.View()
}

func (m *Model) SetSize(width, height int) {
	m.list.SetSize(width, height)
}

// Filtering reports whether the list is capturing keys for its filter.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}
