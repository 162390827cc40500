// Package tracker runs a periodic keep-alive task for an authenticated
// session. Browser clients hit the session tracking endpoint on this
// cadence; service-side consumers (kitchen displays, long-lived dashboard
// agents) use this tracker to do the same.
package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// DefaultInterval is how often the tracked session is pinged.
const DefaultInterval = 5 * time.Minute

// PingFunc performs one tracking ping. Errors are logged and swallowed;
// a failed ping never stops the tracker.
type PingFunc func(ctx context.Context) error

// Tracker pings a session periodically. Start fires immediately, then on
// every interval tick until the context is cancelled or Stop is called.
type Tracker struct {
	ping     PingFunc
	interval time.Duration
	logger   *slog.Logger

	stopOnce sync.Once
	stop     chan struct{}
	wg       sync.WaitGroup
}

// New creates a tracker. A zero interval falls back to DefaultInterval.
func New(ping PingFunc, interval time.Duration, logger *slog.Logger) *Tracker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Tracker{
		ping:     ping,
		interval: interval,
		logger:   logger,
		stop:     make(chan struct{}),
	}
}

// Start launches the tracking loop. The first ping happens before the
// first tick. Calling Start more than once is a caller bug; the loop runs
// once per call.
func (t *Tracker) Start(ctx context.Context) {
	t.wg.Add(1)
	go t.run(ctx)
}

// Stop halts the loop. Safe to call multiple times and safe to call
// alongside context cancellation; it blocks until the loop exits.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
	t.wg.Wait()
}

func (t *Tracker) run(ctx context.Context) {
	defer t.wg.Done()

	t.fire(ctx)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.stop:
			return
		case <-ticker.C:
			t.fire(ctx)
		}
	}
}

func (t *Tracker) fire(ctx context.Context) {
	if err := t.ping(ctx); err != nil {
		// Tracking is best effort; the session stays usable either way
		t.logger.Debug("session tracking ping failed", "error", err)
	}
}
