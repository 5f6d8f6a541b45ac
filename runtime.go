package kernix

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Runtime drives kernel time: it turns a wall-clock ticker into scheduler
// ticks. The kernel can also be driven manually through Service.Tick, which
// is how tests advance time deterministically.
type Runtime struct {
	service  *Service
	interval time.Duration
	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
}

// Start launches the tick loop. It returns an error when the runtime is
// already running.
func (r *Runtime) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		return fmt.Errorf("runtime already started")
	}
	ctx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	r.done = make(chan struct{})
	go r.run(ctx)
	return nil
}

func (r *Runtime) run(ctx context.Context) {
	defer close(r.done)
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.service.Tick()
		}
	}
}

// Shutdown stops the tick loop and the event service. It blocks until the
// loop exits or the context is done.
func (r *Runtime) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	cancel, done := r.cancel, r.done
	r.cancel, r.done = nil, nil
	r.mu.Unlock()
	if cancel == nil {
		return nil
	}
	cancel()
	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}
	r.service.events.Shutdown()
	return nil
}
