package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/dashboard"
	"github.com/julianstephens/habitara/internal/period"
	habitstats "github.com/julianstephens/habitara/internal/stats"
	"github.com/julianstephens/habitara/internal/tracker"
	"github.com/julianstephens/habitara/internal/tui/components/habits"
	"github.com/julianstephens/habitara/internal/tui/components/history"
	"github.com/julianstephens/habitara/internal/tui/components/stats"
	"github.com/julianstephens/habitara/internal/tui/components/today"
)

type SessionState int

const (
	StateToday SessionState = iota
	StateHabits
	StateStats
	StateHistory
	StateAddHabit
	StateNote
	StateConfirmDelete
)

var tabTitles = []string{"Today", "Habits", "Stats", "History"}

// Config carries what the model needs besides the session.
type Config struct {
	// Context bounds store calls made from key handlers.
	Context     context.Context
	Now         func() time.Time
	HistoryDays int
}

type HabitFormModel struct {
	Name       string
	Frequency  string
	Goal       string
	Emoji      string
	AskDetails bool
}

type NoteFormModel struct {
	HabitID string
	Details string
}

type Model struct {
	session     *tracker.Session
	ctx         context.Context
	now         func() time.Time
	historyDays int

	snapshots   <-chan tracker.Snapshot
	unsubscribe func()
	snap        tracker.Snapshot

	// day is the civil date shown on the Today tab.
	day time.Time

	state         SessionState
	previousState SessionState
	keys          KeyMap
	help          help.Model
	todayModel    today.Model
	habitsModel   habits.Model
	statsModel    stats.Model
	historyModel  history.Model

	form          *huh.Form
	habitForm     *HabitFormModel
	noteForm      *NoteFormModel
	habitToDelete habits.DeleteHabitMsg

	status   string
	err      error
	quitting bool
	width    int
	height   int
}

func NewModel(s *tracker.Session, cfg Config) Model {
	if cfg.Context == nil {
		cfg.Context = context.Background()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.HistoryDays <= 0 {
		cfg.HistoryDays = constants.DefaultHistoryDays
	}

	ch, unsubscribe := s.Subscribe()
	now := cfg.Now()
	m := Model{
		session:      s,
		ctx:          cfg.Context,
		now:          cfg.Now,
		historyDays:  cfg.HistoryDays,
		snapshots:    ch,
		unsubscribe:  unsubscribe,
		day:          period.Today(now.Location(), now),
		state:        StateToday,
		keys:         DefaultKeyMap(),
		help:         help.New(),
		todayModel:   today.New(0, 0),
		habitsModel:  habits.New(0, 0),
		statsModel:   stats.New(0, 0),
		historyModel: history.New(0, 0),
	}
	m.apply(s.Snapshot())
	return m
}

func (m Model) ShortHelp() []key.Binding {
	keys := []key.Binding{m.keys.Tab, m.keys.Quit, m.keys.Help}
	switch m.state {
	case StateToday:
		tk := m.todayModel.Keys()
		keys = append(keys, tk.Toggle, tk.Note, m.keys.PrevDay, m.keys.NextDay)
	case StateHabits:
		hk := m.habitsModel.Keys()
		keys = append(keys, hk.Add, hk.Archive, hk.Delete)
	}
	return keys
}

func (m Model) FullHelp() [][]key.Binding {
	global := []key.Binding{m.keys.Tab, m.keys.ShiftTab, m.keys.Quit, m.keys.Help}

	var actions []key.Binding
	switch m.state {
	case StateToday:
		tk := m.todayModel.Keys()
		actions = []key.Binding{tk.Up, tk.Down, tk.Toggle, tk.Note, m.keys.PrevDay, m.keys.NextDay, m.keys.Today}
	case StateHabits:
		hk := m.habitsModel.Keys()
		actions = []key.Binding{hk.Add, hk.Archive, hk.Delete}
	}
	return [][]key.Binding{global, actions}
}

func (m Model) Init() tea.Cmd {
	return waitForSnapshot(m.snapshots)
}

// apply installs a snapshot and re-derives every view from it.
func (m *Model) apply(snap tracker.Snapshot) {
	m.snap = snap
	m.refresh()
}

func (m *Model) refresh() {
	now := m.now()
	current := period.Today(now.Location(), now)
	if m.day.After(current) {
		m.day = current
	}

	if err := m.todayModel.SetDay(m.day, m.day.Equal(current), m.snap.Habits, m.snap.Completions); err != nil {
		m.err = err
		return
	}

	all, err := habitstats.New(now.Location()).ComputeAll(m.snap.Habits, m.snap.Completions, now)
	if err != nil {
		m.err = err
		return
	}
	m.habitsModel.SetHabits(m.snap.Habits, all)
	m.statsModel.SetStats(m.snap.Habits, all)

	rows, err := dashboard.History(m.snap.Habits, m.snap.Completions, now, m.historyDays)
	if err != nil {
		m.err = err
		return
	}
	m.historyModel.SetRows(rows)
}

func (m *Model) resize() {
	// tabs, status line and help
	h := m.height - 6
	if h < 1 {
		h = 1
	}
	w := m.width - 4
	if w < 1 {
		w = 1
	}
	m.help.Width = m.width
	m.todayModel.SetSize(w, h)
	m.habitsModel.SetSize(w, h)
	m.statsModel.SetSize(w, h)
	m.historyModel.SetSize(w, h)
}
