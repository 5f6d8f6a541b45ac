package event

import (
	"context"
	"time"

	"github.com/viant/kernix/service/messaging"
)

// Publisher pairs a queue with publish and consume semantics; consumed
// messages are acknowledged before being handed to the caller.
type Publisher[T any] struct {
	queue messaging.Queue[T]
}

// NewPublisher creates a publisher over the supplied queue.
func NewPublisher[T any](queue messaging.Queue[T]) *Publisher[T] {
	return &Publisher[T]{queue: queue}
}

// Publish stamps and enqueues the event.
func (p *Publisher[T]) Publish(ctx context.Context, event *T) error {
	if e, ok := any(event).(*Event); ok && e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	return p.queue.Publish(ctx, event)
}

// Consume retrieves and acknowledges the next event.
func (p *Publisher[T]) Consume(ctx context.Context) (*T, error) {
	msg, err := p.queue.Consume(ctx)
	if err != nil || msg == nil {
		return nil, err
	}
	if err = msg.Ack(); err != nil {
		return nil, err
	}
	return msg.T(), nil
}
