package event

import (
	"context"
)

// Listener drains a publisher in a background goroutine, invoking the
// handler for each event until stopped.
type Listener[T any] struct {
	publisher *Publisher[T]
	handler   func(*T)
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewListener creates a stopped listener for the supplied handler.
func NewListener[T any](publisher *Publisher[T], handler func(*T)) *Listener[T] {
	ctx, cancel := context.WithCancel(context.Background())
	return &Listener[T]{
		publisher: publisher,
		handler:   handler,
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Stop terminates the drain loop.
func (l *Listener[T]) Stop() {
	l.cancel()
}

// Start launches the drain loop.
func (l *Listener[T]) Start() {
	go func() {
		for {
			event, err := l.publisher.Consume(l.ctx)
			if err != nil {
				return
			}
			if event != nil {
				l.handler(event)
			}
		}
	}()
}
