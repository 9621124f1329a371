// Package today renders the grouped day view with a cursor over the active
// habits.
package today

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitara/internal/dashboard"
	"github.com/julianstephens/habitara/internal/models"
)

// ToggleMsg asks the parent to mark (Done) or clear the habit's period.
type ToggleMsg struct {
	HabitID string
	Done    bool
}

// NoteMsg asks the parent to edit the note on the habit's completion.
type NoteMsg struct {
	HabitID string
	Details string
}

type KeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Toggle key.Binding
	Note   key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Toggle: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "toggle"),
		),
		Note: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "note"),
		),
	}
}

var (
	dateStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	headingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			MarginTop(1)

	cursorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	doneStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	detailStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245")).
			Italic(true)
)

type row struct {
	habit      models.Habit
	completion *models.HabitCompletion
}

type Model struct {
	keys    KeyMap
	day     time.Time
	isToday bool
	rows    []row
	cursor  int
	width   int
	height  int
}

func New(width, height int) Model {
	return Model{
		keys:   DefaultKeyMap(),
		width:  width,
		height: height,
	}
}

func (m Model) Keys() KeyMap { return m.keys }

// SetDay projects habits onto day. The cursor stays on the same habit when
// it is still listed.
func (m *Model) SetDay(day time.Time, isToday bool, habits []models.Habit, completions map[string]models.HabitCompletion) error {
	view, err := dashboard.ProjectDay(day, habits, completions)
	if err != nil {
		return err
	}

	var selected string
	if m.cursor < len(m.rows) {
		selected = m.rows[m.cursor].habit.ID
	}

	groups := dashboard.Group(habits)
	rows := make([]row, 0, len(groups.Active))
	for _, freq := range models.Frequencies {
		for _, h := range groups.ByFrequency(freq) {
			rows = append(rows, row{habit: h, completion: view[h.ID]})
		}
	}

	m.day = day
	m.isToday = isToday
	m.rows = rows
	m.cursor = 0
	for i, r := range rows {
		if r.habit.ID == selected {
			m.cursor = i
			break
		}
	}
	return nil
}

// Selected returns the habit under the cursor.
func (m Model) Selected() (models.Habit, bool) {
	if m.cursor >= len(m.rows) {
		return models.Habit{}, false
	}
	return m.rows[m.cursor].habit, true
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok || len(m.rows) == 0 {
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(keyMsg, m.keys.Down):
		if m.cursor < len(m.rows)-1 {
			m.cursor++
		}
	case key.Matches(keyMsg, m.keys.Toggle):
		r := m.rows[m.cursor]
		return m, func() tea.Msg { return ToggleMsg{HabitID: r.habit.ID, Done: r.completion == nil} }
	case key.Matches(keyMsg, m.keys.Note):
		r := m.rows[m.cursor]
		if r.completion != nil {
			return m, func() tea.Msg { return NoteMsg{HabitID: r.habit.ID, Details: r.completion.Details} }
		}
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	title := m.day.Format("Monday, Jan 2 2006")
	if m.isToday {
		title += " (today)"
	}
	b.WriteString(dateStyle.Render(title))
	b.WriteString("\n")

	if len(m.rows) == 0 {
		b.WriteString("\n  No active habits.\n  Switch to the Habits tab and press 'a' to add one.")
		return b.String()
	}

	done := 0
	var current models.Frequency
	for i, r := range m.rows {
		if r.habit.Frequency != current {
			current = r.habit.Frequency
			b.WriteString(headingStyle.Render(strings.ToUpper(string(current))))
			b.WriteString("\n")
		}

		pointer := "  "
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
		}
		box := "[ ]"
		if r.completion != nil {
			box = doneStyle.Render("[x]")
			done++
		}
		line := fmt.Sprintf("%s%s %s", pointer, box, label(r.habit))
		if r.completion != nil && r.completion.Details != "" {
			line += "  " + detailStyle.Render(r.completion.Details)
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "\n%d/%d done", done, len(m.rows))
	return b.String()
}

func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func label(h models.Habit) string {
	s := h.Name
	if h.Emoji != "" {
		s = h.Emoji + " " + s
	}
	if h.Goal == models.GoalAvoid {
		s += " (avoid)"
	}
	return s
}
