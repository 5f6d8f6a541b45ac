package device

import "errors"

var (
	// ErrDeviceExists indicates a driver with the same name is already registered.
	ErrDeviceExists = errors.New("device already registered")
	// ErrDeviceNotFound indicates no driver is registered under the name.
	ErrDeviceNotFound = errors.New("device not found")
)
