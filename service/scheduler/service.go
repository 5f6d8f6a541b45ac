// Package scheduler implements the AI-priority-aware preemptive scheduler:
// multi-level ready queues, a time-ordered waiting set, quantum-based
// preemption and cooperative context switching through a cpu.Engine.
package scheduler

import (
	"sync"

	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/cpu"
)

// Switch describes one completed context switch for observers. Old is nil
// when the execution unit was previously unowned.
type Switch struct {
	Old  *proc.Process
	New  *proc.Process
	Tick uint64
}

// Option customizes the scheduler service.
type Option func(*Service)

// WithObserver registers a callback invoked after every completed context
// switch, inside the scheduling critical section; observers must not call
// back into the scheduler.
func WithObserver(observer func(Switch)) Option {
	return func(s *Service) {
		s.observer = observer
	}
}

// Service is the scheduler. All operations run under one mutex: the
// analogue of the preemption-suppressed critical sections the kernel design
// requires, since none of the paths tolerate nested re-entry.
type Service struct {
	mu       sync.Mutex
	engine   cpu.Engine
	ready    *readySet
	waiting  *waitSet
	current  *proc.Process
	idle     *proc.Process
	ticks    uint64
	stats    Stats
	observer func(Switch)
}

// New creates a scheduler driving the supplied execution engine.
func New(engine cpu.Engine, options ...Option) *Service {
	s := &Service{
		engine:  engine,
		ready:   newReadySet(),
		waiting: newWaitSet(),
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// RegisterIdle installs the reserved fallback process so selection never
// comes up empty. The idle process is also enqueued like any other so it
// participates in normal dispatch.
func (s *Service) RegisterIdle(p *proc.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.idle = p
	p.State = proc.StateReady
	s.ready.push(p)
	if s.current == nil {
		s.scheduleNext()
	}
}

// Tick advances kernel time by one period: it wakes expired sleepers,
// evaluates the preemption rules, performs a switch when warranted and
// updates the counters.
func (s *Service) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ticks++
	for _, p := range s.waiting.expired(s.ticks) {
		p.State = proc.StateReady
		s.ready.push(p)
	}
	if s.shouldSwitch() {
		s.scheduleNext()
	}
	if s.current != nil && s.current.State == proc.StateRunning {
		s.current.QuantumUsed++
		s.current.CPUTime++
		s.stats.CurrentQuantum = s.current.QuantumUsed
	} else {
		s.stats.IdleTicks++
	}
}

// shouldSwitch applies the preemption rules in order: no current process,
// current no longer running, quantum expiry, or a strictly higher effective
// priority level being non-empty.
func (s *Service) shouldSwitch() bool {
	if s.current == nil {
		return true
	}
	if s.current.State != proc.StateRunning {
		return true
	}
	if s.current.QuantumUsed >= s.current.Quantum {
		return true
	}
	return s.ready.anyAbove(s.current.EffectivePriority())
}

// scheduleNext selects and dispatches the next process. Callers hold the
// lock.
func (s *Service) scheduleNext() {
	s.switchTo(s.selectNext())
}

// selectNext dequeues the head of the highest non-empty ready level, or
// falls back to the reserved idle process. The idle process becoming
// unavailable is unrecoverable: proceeding would leave the execution unit
// with undefined scheduling behavior.
func (s *Service) selectNext() *proc.Process {
	if p := s.ready.pop(); p != nil {
		return p
	}
	if s.idle == nil || s.idle.State == proc.StateTerminated {
		panic("kernix: idle process unavailable")
	}
	return s.idle
}

// switchTo performs the context switch. A switch onto the already running
// process is a strict no-op: no state touched, no statistics incremented.
// The old context is captured whenever the outgoing process can run again;
// only a still-Running process is re-enqueued here - blocking and yielding
// paths queue themselves first, and double enqueueing is a corruption.
func (s *Service) switchTo(next *proc.Process) {
	old := s.current
	if old == next {
		return
	}
	if old != nil && old.State != proc.StateTerminated {
		s.engine.Capture(&old.Saved)
		if old.State == proc.StateRunning {
			old.State = proc.StateReady
			s.ready.push(old)
		}
	}
	s.engine.Apply(&next.Saved)
	next.State = proc.StateRunning
	next.QuantumUsed = 0
	s.current = next

	s.stats.TotalSwitches++
	if next.AIPriority {
		s.stats.AISwitches++
	}
	s.stats.LastSwitchTick = s.ticks
	s.stats.CurrentQuantum = 0
	if s.observer != nil {
		s.observer(Switch{Old: old, New: next, Tick: s.ticks})
	}
}

// Enqueue transitions the process to Ready at its effective priority. When
// the execution unit is unowned the process is dispatched immediately.
func (s *Service) Enqueue(p *proc.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.State = proc.StateReady
	s.ready.push(p)
	if s.current == nil {
		s.scheduleNext()
	}
}

// Remove detaches the process from whichever queue references it. When the
// currently running process is removed a replacement is dispatched before
// returning.
func (s *Service) Remove(p *proc.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready.remove(p)
	s.waiting.remove(p)
	if s.current == p {
		s.current = nil
		s.scheduleNext()
	}
}

// Sleep transitions the process to Waiting until now+duration ticks. A
// sleeping current process gives up the execution unit immediately. The
// idle process never blocks: it must stay selectable as the fallback.
func (s *Service) Sleep(p *proc.Process, duration uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p == s.idle {
		return
	}
	s.ready.remove(p)
	p.State = proc.StateWaiting
	p.WakeTime = s.ticks + duration
	s.waiting.push(p, p.WakeTime)
	if s.current == p {
		s.scheduleNext()
	}
}

// Wake forces a Waiting process back to Ready regardless of its wake tick.
// A woken process with a strictly higher effective priority than the
// current one preempts it immediately instead of waiting for the next tick.
func (s *Service) Wake(p *proc.Process) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.State != proc.StateWaiting {
		return
	}
	s.waiting.remove(p)
	p.State = proc.StateReady
	s.ready.push(p)
	if s.current == nil {
		s.scheduleNext()
		return
	}
	if p.EffectivePriority() > s.current.EffectivePriority() {
		s.scheduleNext()
	}
}

// Yield re-enters the running process at the tail of its level and
// re-selects immediately.
func (s *Service) Yield() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return
	}
	s.current.State = proc.StateReady
	s.ready.push(s.current)
	s.scheduleNext()
}

// Requeue applies a priority mutation atomically with respect to queue
// membership: the process is unlinked from the level keyed by its old
// effective priority, mutated, and reinserted at the new one, so it is
// never unreachable in between.
func (s *Service) Requeue(p *proc.Process, mutate func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	queued := s.ready.remove(p)
	mutate()
	if queued {
		s.ready.push(p)
	}
}

// Current returns the process owning the execution unit, possibly nil.
func (s *Service) Current() *proc.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Stats returns a snapshot of the scheduler counters.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	stats := s.stats
	if s.current != nil {
		stats.CurrentQuantum = s.current.QuantumUsed
	}
	return stats
}

// TickCount returns the kernel uptime in ticks.
func (s *Service) TickCount() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// ReadyCount returns the number of queued Ready processes.
func (s *Service) ReadyCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready.len()
}

// WaitingCount returns the number of sleeping processes.
func (s *Service) WaitingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.waiting.len()
}

// ReadyProcesses returns the ready queue contents in dispatch order.
func (s *Service) ReadyProcesses() []*proc.Process {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ready.processes()
}
