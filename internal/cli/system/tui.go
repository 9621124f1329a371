package system

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/habitara/internal/cli"
	"github.com/julianstephens/habitara/internal/logger"
	"github.com/julianstephens/habitara/internal/tracker"
	"github.com/julianstephens/habitara/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	settings, err := ctx.Settings()
	if err != nil {
		return err
	}
	clock, err := ctx.Clock()
	if err != nil {
		return err
	}

	ctx.PerformAutomaticBackup()

	runCtx, cancel := context.WithCancel(ctx.Ctx())
	defer cancel()
	go func() {
		if err := s.Watch(runCtx); err != nil && !errors.Is(err, tracker.ErrWatchUnsupported) {
			logger.Warn("Change watcher stopped", "error", err)
		}
	}()

	model := tui.NewModel(s, tui.Config{
		Context:     runCtx,
		Now:         clock,
		HistoryDays: settings.HistoryDays,
	})
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(runCtx))
	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}
