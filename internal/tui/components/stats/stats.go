// Package stats shows per-habit streaks and totals as a table.
package stats

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/habitara/internal/models"
)

var columns = []table.Column{
	{Title: "Habit", Width: 28},
	{Title: "Frequency", Width: 10},
	{Title: "Goal", Width: 8},
	{Title: "Streak", Width: 7},
	{Title: "Total", Width: 7},
	{Title: "This period", Width: 12},
	{Title: "Last", Width: 11},
}

type Model struct {
	table table.Model
}

func New(width, height int) Model {
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(height),
		table.WithWidth(width),
	)
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	styles.Selected = styles.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(styles)
	return Model{table: t}
}

// SetStats fills one row per active habit, in directory order.
func (m *Model) SetStats(habits []models.Habit, stats map[string]models.Stats) {
	rows := make([]table.Row, 0, len(habits))
	for _, h := range habits {
		if !h.Active {
			continue
		}
		st := stats[h.ID]
		period := "pending"
		if st.PeriodCompleted {
			period = "done"
		}
		last := st.LastCompleted
		if last == "" {
			last = "never"
		}
		rows = append(rows, table.Row{
			h.Name,
			string(h.Frequency),
			string(h.Goal),
			fmt.Sprintf("%d", st.Streak),
			fmt.Sprintf("%d", st.TotalCompletions),
			period,
			last,
		})
	}
	m.table.SetRows(rows)
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) View() string {
	if len(m.table.Rows()) == 0 {
		return "\n  No active habits."
	}
	return m.table.View()
}

func (m *Model) SetSize(width, height int) {
	m.table.SetWidth(width)
	m.table.SetHeight(height)
}
