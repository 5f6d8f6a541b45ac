package proc

import (
	"time"
)

// Priority bounds and scheduling defaults. An AI-flagged process is boosted
// by AIBoost levels, clamped to MaxPriority.
const (
	MinPriority     = 1
	MaxPriority     = 10
	DefaultPriority = 5
	AIBoost         = 2

	// DefaultQuantum is the number of ticks a process may run before
	// quantum-based preemption is considered.
	DefaultQuantum = 10
)

// State represents a process lifecycle state.
type State int

const (
	StateNew State = iota
	StateReady
	StateRunning
	StateWaiting
	StateTerminated
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateWaiting:
		return "waiting"
	case StateTerminated:
		return "terminated"
	}
	return "unknown"
}

// PID identifies a process. PIDs are assigned monotonically and never reused
// for the lifetime of the kernel.
type PID uint32

// Process is a process control block. It is owned by the process table;
// scheduler queues hold non-owning references. All mutation happens inside
// kernel critical sections, so the block itself carries no lock.
type Process struct {
	PID       PID       `json:"pid"`
	UID       string    `json:"uid"`
	ParentPID PID       `json:"parentPid,omitempty"`
	Name      string    `json:"name"`
	State     State     `json:"state"`

	// Priority is the base priority in [MinPriority, MaxPriority];
	// AIPriority adds AIBoost on top when computing the effective level.
	Priority   int  `json:"priority"`
	AIPriority bool `json:"aiPriority"`

	// Quantum is the per-process tick budget; QuantumUsed counts ticks
	// since the last dispatch.
	Quantum     int `json:"quantum"`
	QuantumUsed int `json:"quantumUsed"`

	// WakeTime is the absolute tick at which a Waiting process becomes
	// Ready again; it is meaningful only while State == StateWaiting.
	WakeTime uint64 `json:"wakeTime,omitempty"`

	// Stack is the arena handle of the stack region owned exclusively by
	// this process; released on destroy.
	Stack     uint32 `json:"stack"`
	StackSize int    `json:"stackSize"`

	// EntryPoint is the abstract start address the initial context points at.
	EntryPoint uint64 `json:"entryPoint"`

	// Saved holds the execution snapshot captured at the last switch away
	// from this process; it is valid only while the process is not Running.
	Saved Context `json:"-"`

	CPUTime     uint64    `json:"cpuTime"`
	MemoryUsage uint64    `json:"memoryUsage"`
	CreatedAt   time.Time `json:"createdAt"`
}

// EffectivePriority returns the base priority plus the AI boost, clamped
// into [MinPriority, MaxPriority].
func (p *Process) EffectivePriority() int {
	priority := p.Priority
	if p.AIPriority {
		priority += AIBoost
	}
	return ClampPriority(priority)
}

// ClampPriority forces a priority into the valid range. Out-of-range values
// are clamped rather than rejected.
func ClampPriority(priority int) int {
	if priority > MaxPriority {
		return MaxPriority
	}
	if priority < MinPriority {
		return MinPriority
	}
	return priority
}
