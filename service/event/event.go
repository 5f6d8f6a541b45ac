// Package event publishes kernel lifecycle notifications through an
// in-memory queue so observers never run inside scheduling critical
// sections.
package event

import (
	"time"

	"github.com/viant/kernix/model/proc"
)

// Kind classifies a kernel event.
type Kind string

const (
	KindProcessCreated    Kind = "process.created"
	KindProcessTerminated Kind = "process.terminated"
	KindProcessSleep      Kind = "process.sleep"
	KindProcessWake       Kind = "process.wake"
	KindContextSwitch     Kind = "context.switch"
)

// Event describes one kernel occurrence.
type Event struct {
	Kind      Kind                   `json:"kind"`
	PID       proc.PID               `json:"pid"`
	Name      string                 `json:"name,omitempty"`
	Tick      uint64                 `json:"tick"`
	CreatedAt time.Time              `json:"createdAt"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// NewEvent builds an event for the supplied process at the given tick.
func NewEvent(kind Kind, pid proc.PID, name string, tick uint64) *Event {
	return &Event{
		Kind:      kind,
		PID:       pid,
		Name:      name,
		Tick:      tick,
		CreatedAt: time.Now(),
		Metadata:  make(map[string]interface{}),
	}
}
