package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/logger"
)

// Watch reports writes to the database file or its WAL made by any process.
// Bursts of events inside constants.WatchDebounce collapse into one signal.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	// The WAL file comes and goes, so watch the directory and filter by name.
	dir := filepath.Dir(s.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	watched := map[string]bool{
		filepath.Clean(s.path):          true,
		filepath.Clean(s.path + "-wal"): true,
	}

	out := make(chan struct{}, 1)
	go func() {
		defer close(out)
		defer watcher.Close()

		var timer *time.Timer
		var fire <-chan time.Time

		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !watched[filepath.Clean(event.Name)] {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				if timer == nil {
					timer = time.NewTimer(constants.WatchDebounce)
					fire = timer.C
				}

			case <-fire:
				timer, fire = nil, nil
				select {
				case out <- struct{}{}:
				default:
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Warn("Database watcher error", "path", s.path, "error", err)

			case <-ctx.Done():
				if timer != nil {
					timer.Stop()
				}
				logger.Debug("Database watcher stopping", "path", s.path)
				return
			}
		}
	}()

	logger.Debug("Started watching database", "path", s.path)
	return out, nil
}
