package event

import (
	"context"
	"sync"

	"github.com/viant/kernix/service/messaging/memory"
)

// Service fans kernel events out to subscribers. A single listener drains
// the queue continuously so publishers never block on slow consumers.
type Service struct {
	publisher *Publisher[Event]
	listener  *Listener[Event]
	mux       sync.RWMutex
	handlers  []func(*Event)
}

// New creates an event service backed by an in-memory queue.
func New() *Service {
	queue := memory.NewQueue[Event](memory.DefaultConfig())
	s := &Service{
		publisher: NewPublisher[Event](queue),
	}
	s.listener = NewListener[Event](s.publisher, s.dispatch)
	s.listener.Start()
	return s
}

// Publish enqueues an event for asynchronous delivery.
func (s *Service) Publish(ctx context.Context, event *Event) error {
	return s.publisher.Publish(ctx, event)
}

// Subscribe registers a handler receiving every subsequent event.
func (s *Service) Subscribe(handler func(*Event)) {
	s.mux.Lock()
	defer s.mux.Unlock()
	s.handlers = append(s.handlers, handler)
}

// Shutdown stops the drain loop. Events still queued are dropped.
func (s *Service) Shutdown() {
	s.listener.Stop()
}

func (s *Service) dispatch(event *Event) {
	s.mux.RLock()
	handlers := make([]func(*Event), len(s.handlers))
	copy(handlers, s.handlers)
	s.mux.RUnlock()
	for _, handler := range handlers {
		handler(event)
	}
}
