package worker

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const relayRetryDelay = time.Second

// Relay consumes identity events from peer instances until ctx is done.
type Relay interface {
	Relay(ctx context.Context) error
}

// Sweeper evicts idle sessions and reports how many were dropped.
type Sweeper interface {
	Sweep() int
}

// SessionWorker keeps per-instance session state in step with the cluster:
// it relays peer identity events and periodically evicts idle resolvers.
type SessionWorker struct {
	relay    Relay
	sweeper  Sweeper
	interval time.Duration
	logger   *zap.Logger
}

// NewSessionWorker builds the worker. A non-positive interval disables sweeping.
func NewSessionWorker(relay Relay, sweeper Sweeper, interval time.Duration, logger *zap.Logger) *SessionWorker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SessionWorker{relay: relay, sweeper: sweeper, interval: interval, logger: logger}
}

// Run blocks until ctx is done.
func (w *SessionWorker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if w.relay != nil {
		g.Go(func() error { return w.runRelay(ctx) })
	}
	if w.sweeper != nil && w.interval > 0 {
		g.Go(func() error { return w.runSweeper(ctx) })
	}
	return g.Wait()
}

func (w *SessionWorker) runRelay(ctx context.Context) error {
	for {
		err := w.relay.Relay(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			w.logger.Warn("identity relay stopped; retrying", zap.Error(err))
		}
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(relayRetryDelay):
		}
	}
}

func (w *SessionWorker) runSweeper(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if n := w.sweeper.Sweep(); n > 0 {
				w.logger.Debug("evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
