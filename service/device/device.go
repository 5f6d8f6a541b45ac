// Package device maintains the kernel device registry. Drivers register by
// name; their Go types are recorded in an x.Registry so tooling can inspect
// the driver behind each descriptor.
package device

import (
	"time"

	"github.com/viant/kernix/internal/clock"
)

// Kind classifies a device driver.
type Kind string

const (
	KindConsole Kind = "console"
	KindTimer   Kind = "timer"
	KindBlock   Kind = "block"
)

// Driver is the contract every registered device implements.
type Driver interface {
	Name() string
	Kind() Kind
}

// Device is the registry descriptor for a registered driver.
type Device struct {
	ID           uint32    `json:"id"`
	Name         string    `json:"name"`
	Kind         Kind      `json:"kind"`
	TypeName     string    `json:"typeName"`
	Active       bool      `json:"active"`
	RegisteredAt time.Time `json:"registeredAt"`
}

func newDevice(id uint32, driver Driver, typeName string) *Device {
	return &Device{
		ID:           id,
		Name:         driver.Name(),
		Kind:         driver.Kind(),
		TypeName:     typeName,
		Active:       true,
		RegisteredAt: clock.Now(),
	}
}
