// Package history shows which habits were satisfied on each recent day.
package history

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/dashboard"
)

const barWidth = 10

var (
	dayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Width(11)

	fullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	emptyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("238"))
)

type Model struct {
	viewport viewport.Model
	rows     int
}

func New(width, height int) Model {
	return Model{viewport: viewport.New(width, height)}
}

func (m *Model) SetRows(rows []dashboard.HistoryDay) {
	var b strings.Builder
	for _, row := range rows {
		names := make([]string, 0, len(row.Completed))
		for _, h := range row.Completed {
			names = append(names, h.Name)
		}
		fmt.Fprintf(&b, "%s %s %2d/%-2d  %s\n",
			dayStyle.Render(row.Day.Format(constants.HistoryDateFormat)),
			bar(len(row.Completed), row.Active),
			len(row.Completed), row.Active,
			strings.Join(names, ", "))
	}
	m.rows = len(rows)
	m.viewport.SetContent(b.String())
}

func bar(done, total int) string {
	filled := 0
	if total > 0 {
		filled = done * barWidth / total
	}
	return fullStyle.Render(strings.Repeat("█", filled)) + emptyStyle.Render(strings.Repeat("░", barWidth-filled))
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if m.rows == 0 {
		return "\n  No history yet."
	}
	return m.viewport.View()
}

func (m *Model) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = height
}
