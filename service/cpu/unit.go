// Package cpu abstracts the execution unit a context switch saves to and
// restores from. The scheduler depends only on the Engine capability, never
// on register layout; targets with real register files can supply their own
// implementation.
package cpu

import (
	"sync"

	"github.com/viant/kernix/model/proc"
)

// Engine captures and applies execution contexts. Both operations are
// atomic with respect to each other: a re-entrant tick can never observe a
// half-saved or half-restored state.
type Engine interface {
	// Capture snapshots the live execution state into dst.
	Capture(dst *proc.Context)

	// Apply restores src into the live execution unit.
	Apply(src *proc.Context)
}

// Unit is the portable software execution unit: a simulated register file
// standing in for one logical CPU.
type Unit struct {
	mu   sync.Mutex
	live proc.Context
}

// NewUnit returns a unit with a zeroed register file.
func NewUnit() *Unit {
	return &Unit{}
}

// Capture snapshots the live state into dst.
func (u *Unit) Capture(dst *proc.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	*dst = u.live
}

// Apply restores src into the live state.
func (u *Unit) Apply(src *proc.Context) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.live = *src
}

// Live returns a copy of the current live state; diagnostic use only.
func (u *Unit) Live() proc.Context {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.live
}

// Advance simulates execution progress by moving the instruction pointer
// and clobbering a register; tests use it to prove a suspended process
// resumes exactly where it left off.
func (u *Unit) Advance(instructions uint64) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.live.IP += instructions
	u.live.Regs[0] += instructions
}

var _ Engine = (*Unit)(nil)
