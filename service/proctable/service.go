// Package proctable keeps the fixed-capacity registry of process control
// blocks. It owns every Process; scheduler queues only borrow references.
// Stack regions come from the arena allocator and are released on destroy.
package proctable

import (
	"fmt"
	"sync"

	"github.com/viant/kernix/internal/clock"
	"github.com/viant/kernix/internal/idgen"
	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/allocator"
)

const (
	// DefaultCapacity is the default number of process slots.
	DefaultCapacity = 256

	// DefaultStackSize is the stack region allocated per process.
	DefaultStackSize = 4096

	// maxNameLen truncates process names to the historical PCB field width.
	maxNameLen = 32
)

// slot holds one table entry. The generation counter increments every time
// the slot is vacated so stale references to a reused slot never resolve.
type slot struct {
	process    *proc.Process
	generation uint32
}

// Counts reports table occupancy.
type Counts struct {
	Total  uint64 `json:"total"`
	Active uint32 `json:"active"`
}

// Service is the process table.
type Service struct {
	mu        sync.Mutex
	allocator *allocator.Service
	slots     []slot
	pids      map[proc.PID]int
	nextPID   proc.PID
	stackSize int
	created   uint64
}

// New creates a process table with the given slot capacity and per-process
// stack size backed by the supplied allocator.
func New(alloc *allocator.Service, capacity, stackSize int) *Service {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if stackSize <= 0 {
		stackSize = DefaultStackSize
	}
	return &Service{
		allocator: alloc,
		slots:     make([]slot, capacity),
		pids:      make(map[proc.PID]int, capacity),
		nextPID:   1,
		stackSize: stackSize,
	}
}

// Create registers a new process in state New with the default priority and
// quantum. The stack is allocated before the slot is committed, so a failed
// allocation consumes neither a slot nor a pid.
func (s *Service) Create(name string, entry uint64, parent proc.PID) (*proc.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := -1
	for i := range s.slots {
		if s.slots[i].process == nil {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, ErrTableFull
	}

	stack, err := s.allocator.Allocate(s.stackSize)
	if err != nil {
		return nil, fmt.Errorf("proctable: stack allocation failed: %w", err)
	}

	if len(name) > maxNameLen {
		name = name[:maxNameLen]
	}
	pid := s.nextPID
	s.nextPID++

	stackTop := uint64(stack) + uint64(s.stackSize)
	process := &proc.Process{
		PID:         pid,
		UID:         idgen.New(),
		ParentPID:   parent,
		Name:        name,
		State:       proc.StateNew,
		Priority:    proc.DefaultPriority,
		Quantum:     proc.DefaultQuantum,
		Stack:       uint32(stack),
		StackSize:   s.stackSize,
		EntryPoint:  entry,
		Saved:       proc.NewContext(entry, stackTop),
		MemoryUsage: uint64(s.stackSize),
		CreatedAt:   clock.Now(),
	}

	s.slots[idx] = slot{process: process, generation: s.slots[idx].generation}
	s.pids[pid] = idx
	s.created++
	return process, nil
}

// Destroy releases the process stack and vacates its slot. Unknown or
// already terminated pids are a no-op. The caller is responsible for
// detaching the process from scheduler queues first.
func (s *Service) Destroy(pid proc.PID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.pids[pid]
	if !ok {
		return
	}
	process := s.slots[idx].process
	if process.Stack != 0 {
		// Double free is a harmless no-op at the allocator level.
		_ = s.allocator.Free(allocator.Handle(process.Stack))
		process.Stack = 0
	}
	process.State = proc.StateTerminated
	s.slots[idx].process = nil
	s.slots[idx].generation++
	delete(s.pids, pid)
}

// Lookup resolves a pid. Terminated processes are treated as nonexistent.
func (s *Service) Lookup(pid proc.PID) (*proc.Process, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx, ok := s.pids[pid]
	if !ok {
		return nil, ErrNotFound
	}
	process := s.slots[idx].process
	if process == nil || process.State == proc.StateTerminated {
		return nil, ErrNotFound
	}
	return process, nil
}

// Counts returns the total number of processes ever created and the number
// currently alive.
func (s *Service) Counts() Counts {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Counts{Total: s.created, Active: uint32(len(s.pids))}
}

// Processes returns the live processes in slot order.
func (s *Service) Processes() []*proc.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*proc.Process, 0, len(s.pids))
	for i := range s.slots {
		if p := s.slots[i].process; p != nil {
			out = append(out, p)
		}
	}
	return out
}

// Capacity returns the slot capacity.
func (s *Service) Capacity() int { return len(s.slots) }

// StackSize returns the per-process stack size.
func (s *Service) StackSize() int { return s.stackSize }
