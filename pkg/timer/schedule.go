package timer

import (
	"context"
	"sync"
	"time"
)

// DefaultInterval is the tick cadence.
const DefaultInterval = time.Second

// Handle owns a recurring schedule started by Every.
type Handle struct {
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Every calls fn once per interval on a single goroutine until the handle is
// stopped or ctx is cancelled. Calls never overlap: a slow fn delays the
// next call rather than running beside it.
func Every(ctx context.Context, interval time.Duration, fn func(context.Context)) *Handle {
	if interval <= 0 {
		interval = DefaultInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{ctx: ctx, cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(h.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(ctx)
			}
		}
	}()
	return h
}

// Stop cancels the schedule and waits for an in-flight call to finish.
// It is safe to call more than once. Calling it from inside fn deadlocks,
// as does calling it while holding a lock fn acquires.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Err is non-nil once the schedule has been stopped or its context
// cancelled, even if the goroutine has not exited yet.
func (h *Handle) Err() error {
	return h.ctx.Err()
}

// Done is closed once the schedule has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}
