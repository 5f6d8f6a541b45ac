package device

import (
	"strings"
	"sync"
)

// Console is the default character device: writes accumulate into an
// in-memory transcript that tooling can read back.
type Console struct {
	mu    sync.Mutex
	lines []string
}

// NewConsole creates an empty console device.
func NewConsole() *Console {
	return &Console{}
}

// Name returns the device name.
func (c *Console) Name() string { return "console0" }

// Kind returns the device kind.
func (c *Console) Kind() Kind { return KindConsole }

// Write appends the payload to the transcript.
func (c *Console) Write(p []byte) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = append(c.lines, string(p))
	return len(p), nil
}

// Transcript returns everything written so far.
func (c *Console) Transcript() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return strings.Join(c.lines, "")
}
