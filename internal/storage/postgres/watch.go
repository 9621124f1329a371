package postgres

import (
	"context"
	"fmt"

	pq "github.com/lib/pq"

	"github.com/julianstephens/habitara/internal/constants"
	"github.com/julianstephens/habitara/internal/logger"
)

// Watch listens on the change channel fed by the row triggers installed by
// migration 001. Reconnects are reported as a change since notifications may
// have been missed while the connection was down.
func (s *Store) Watch(ctx context.Context) (<-chan struct{}, error) {
	listener := pq.NewListener(s.connStr, constants.ListenerMinReconnect, constants.ListenerMaxReconnect,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				logger.Warn("Postgres listener event", "event", ev, "error", err)
			}
		})

	if err := listener.Listen(constants.ChangeChannel); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to listen on %s: %w", constants.ChangeChannel, err)
	}

	out := make(chan struct{}, 1)
	signal := func() {
		select {
		case out <- struct{}{}:
		default:
		}
	}

	go func() {
		defer close(out)
		defer listener.Close()

		for {
			select {
			case n, ok := <-listener.Notify:
				if !ok {
					return
				}
				// nil after a reconnect
				if n == nil {
					logger.Debug("Postgres listener reconnected")
				}
				signal()
			case <-ctx.Done():
				logger.Debug("Postgres listener stopping")
				return
			}
		}
	}()

	return out, nil
}
