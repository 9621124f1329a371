package cli

import "github.com/julianstephens/habitara/internal/logger"

// WatchCmd keeps today's view on screen and redraws it whenever the
// store reports a change, including changes made by other devices.
type WatchCmd struct{}

func (c *WatchCmd) Run(ctx *Context) error {
	s, err := ctx.Session()
	if err != nil {
		return err
	}
	runCtx := ctx.Ctx()
	clock, err := ctx.Clock()
	if err != nil {
		return err
	}
	log := logger.With("component", "watch", "user", s.UserID())

	snaps, unsubscribe := s.Subscribe()
	defer unsubscribe()

	watchErr := make(chan error, 1)
	go func() { watchErr <- s.Watch(runCtx) }()

	for {
		select {
		case <-runCtx.Done():
			return nil
		case err := <-watchErr:
			if log != nil && err != nil {
				log.Error("Watch stopped", "error", err)
			}
			return err
		case snap, ok := <-snaps:
			if !ok {
				return nil
			}
			day, err := ctx.Day("")
			if err != nil {
				return err
			}
			if log != nil {
				log.Debug("Redrawing", "version", snap.Version)
			}
			ctx.Printf("\n-- %s (v%d) --\n", clock().Format("15:04:05"), snap.Version)
			if err := RenderDay(ctx, day, snap.Habits, snap.Completions); err != nil {
				return err
			}
		}
	}
}
