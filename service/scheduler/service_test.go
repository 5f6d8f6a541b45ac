package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/cpu"
)

func newProcess(pid proc.PID, name string, priority int) *proc.Process {
	return &proc.Process{
		PID:      pid,
		Name:     name,
		State:    proc.StateNew,
		Priority: priority,
		Quantum:  proc.DefaultQuantum,
	}
}

func newTestScheduler(observer func(Switch)) (*Service, *proc.Process) {
	var options []Option
	if observer != nil {
		options = append(options, WithObserver(observer))
	}
	s := New(cpu.NewUnit(), options...)
	idle := newProcess(1, "idle", proc.MinPriority)
	s.RegisterIdle(idle)
	return s, idle
}

func TestService_FIFOWithinLevel(t *testing.T) {
	var order []proc.PID
	s, idle := newTestScheduler(func(sw Switch) {
		order = append(order, sw.New.PID)
	})
	assert.Equal(t, idle, s.Current())

	a := newProcess(2, "a", 5)
	b := newProcess(3, "b", 5)
	c := newProcess(4, "c", 5)
	s.Enqueue(a)
	s.Enqueue(b)
	s.Enqueue(c)

	for i := 0; i < 40; i++ {
		s.Tick()
	}
	// Boot switch onto idle, then strict enqueue order within the level.
	assert.True(t, len(order) >= 4)
	assert.Equal(t, []proc.PID{1, 2, 3, 4}, order[:4])
}

func TestService_PriorityPreemption(t *testing.T) {
	s, _ := newTestScheduler(nil)

	low := newProcess(2, "low", 3)
	s.Enqueue(low)
	s.Tick()
	assert.Equal(t, low, s.Current())

	high := newProcess(3, "high", 8)
	s.Enqueue(high)
	s.Tick()

	// Preempted by priority, well before quantum expiry.
	assert.Equal(t, high, s.Current())
	assert.Equal(t, proc.StateReady, low.State)
	assert.True(t, low.QuantumUsed < low.Quantum)
}

func TestService_QuantumExpiry(t *testing.T) {
	var order []proc.PID
	s, _ := newTestScheduler(func(sw Switch) {
		order = append(order, sw.New.PID)
	})

	a := newProcess(2, "a", 5)
	b := newProcess(3, "b", 5)
	s.Enqueue(a)
	s.Enqueue(b)

	// One switch to a, then a full quantum later one to b.
	for i := 0; i < proc.DefaultQuantum+2; i++ {
		s.Tick()
	}
	assert.Equal(t, []proc.PID{1, 2, 3}, order[:3])
	assert.Equal(t, b, s.Current())
	assert.Equal(t, proc.StateReady, a.State)
}

func TestService_SleepAndTimerWake(t *testing.T) {
	s, idle := newTestScheduler(nil)

	p := newProcess(2, "sleeper", 5)
	s.Enqueue(p)
	s.Tick()
	assert.Equal(t, p, s.Current())

	s.Sleep(p, 100)
	assert.Equal(t, proc.StateWaiting, p.State)
	assert.Equal(t, idle, s.Current())
	assert.Equal(t, 1, s.WaitingCount())

	// 99 ticks later the process is still waiting.
	for i := 0; i < 99; i++ {
		s.Tick()
	}
	assert.Equal(t, proc.StateWaiting, p.State)

	// The tick that reaches the wake time moves it back and, since its
	// effective priority beats idle, dispatches it.
	s.Tick()
	assert.Equal(t, proc.StateRunning, p.State)
	assert.Equal(t, p, s.Current())
	assert.Equal(t, 0, s.WaitingCount())
}

func TestService_SameTickWakeOrder(t *testing.T) {
	s, _ := newTestScheduler(nil)

	first := newProcess(2, "first", 5)
	second := newProcess(3, "second", 5)
	s.Enqueue(first)
	s.Enqueue(second)
	s.Sleep(first, 10)
	s.Sleep(second, 10)

	for i := 0; i < 10; i++ {
		s.Tick()
	}
	// Both expired on the same tick: enqueue order is preserved. The first
	// sleeper is already dispatched, the second sits at the level head.
	assert.Equal(t, first, s.Current())
	ready := s.ReadyProcesses()
	assert.True(t, len(ready) >= 1)
	assert.Equal(t, second, ready[0])
}

func TestService_WakeImmediatePreemption(t *testing.T) {
	s, _ := newTestScheduler(nil)

	sleeper := newProcess(2, "sleeper", 5)
	s.Enqueue(sleeper)
	s.Tick()
	s.Sleep(sleeper, 1000)

	low := newProcess(3, "low", 3)
	s.Enqueue(low)
	s.Tick()
	assert.Equal(t, low, s.Current())

	// Wake preempts immediately - no tick in between.
	s.Wake(sleeper)
	assert.Equal(t, sleeper, s.Current())
	assert.Equal(t, proc.StateRunning, sleeper.State)
	assert.Equal(t, proc.StateReady, low.State)
}

func TestService_WakeNonWaitingIsNoOp(t *testing.T) {
	s, _ := newTestScheduler(nil)
	p := newProcess(2, "p", 5)
	s.Enqueue(p)
	before := s.ReadyCount()
	s.Wake(p)
	assert.Equal(t, before, s.ReadyCount())
	assert.Equal(t, proc.StateReady, p.State)
}

func TestService_SelfSwitchIsNoOp(t *testing.T) {
	s, idle := newTestScheduler(nil)
	boot := s.Stats().TotalSwitches

	// Idle alone: quantum expiry keeps re-selecting idle, which must not
	// touch state or statistics.
	for i := 0; i < 3*proc.DefaultQuantum; i++ {
		s.Tick()
	}
	assert.Equal(t, boot, s.Stats().TotalSwitches)
	assert.Equal(t, idle, s.Current())
	assert.Equal(t, proc.StateRunning, idle.State)
}

func TestService_RemoveCurrent(t *testing.T) {
	s, idle := newTestScheduler(nil)

	p := newProcess(2, "p", 5)
	s.Enqueue(p)
	s.Tick()
	assert.Equal(t, p, s.Current())

	switches := s.Stats().TotalSwitches
	s.Remove(p)
	// A replacement is dispatched before Remove returns.
	assert.Equal(t, idle, s.Current())
	assert.Equal(t, switches+1, s.Stats().TotalSwitches)
}

func TestService_Yield(t *testing.T) {
	var order []proc.PID
	s, _ := newTestScheduler(func(sw Switch) {
		order = append(order, sw.New.PID)
	})

	a := newProcess(2, "a", 5)
	b := newProcess(3, "b", 5)
	s.Enqueue(a)
	s.Enqueue(b)
	s.Tick()
	assert.Equal(t, a, s.Current())

	s.Yield()
	assert.Equal(t, b, s.Current())
	// The yielder re-entered its level behind b.
	ready := s.ReadyProcesses()
	assert.Equal(t, a, ready[0])
	assert.Equal(t, proc.StateReady, a.State)
	assert.Equal(t, proc.PID(3), order[len(order)-1])
}

func TestService_RequeueReprioritizes(t *testing.T) {
	s, _ := newTestScheduler(nil)

	a := newProcess(2, "a", 5)
	b := newProcess(3, "b", 5)
	s.Enqueue(a)
	s.Enqueue(b)
	s.Tick()
	assert.Equal(t, a, s.Current())

	before := s.ReadyCount()
	s.Requeue(b, func() { b.Priority = 9 })
	assert.Equal(t, before, s.ReadyCount())

	s.Tick()
	assert.Equal(t, b, s.Current())
}

func TestService_AISwitchCounter(t *testing.T) {
	s, _ := newTestScheduler(nil)

	boosted := newProcess(2, "inference", 5)
	boosted.AIPriority = true
	s.Enqueue(boosted)

	s.Tick()
	assert.Equal(t, boosted, s.Current())

	stats := s.Stats()
	assert.Equal(t, uint64(1), stats.AISwitches)
	assert.Equal(t, uint64(1), stats.LastSwitchTick)
	assert.True(t, stats.TotalSwitches >= 2)
}

func TestService_IdleNeverSleeps(t *testing.T) {
	s, idle := newTestScheduler(nil)
	s.Sleep(idle, 5)
	assert.Equal(t, proc.StateRunning, idle.State)
	assert.Equal(t, idle, s.Current())
	assert.Equal(t, 0, s.WaitingCount())
}

func TestService_MissingIdlePanics(t *testing.T) {
	s := New(cpu.NewUnit())
	assert.Panics(t, func() {
		s.Tick()
	})
}

func TestService_ContextRestoredAcrossSwitch(t *testing.T) {
	unit := cpu.NewUnit()
	s := New(unit)
	idle := newProcess(1, "idle", proc.MinPriority)
	s.RegisterIdle(idle)

	a := newProcess(2, "a", 5)
	a.Saved = proc.NewContext(0x4000, 0x8000)
	s.Enqueue(a)
	s.Tick()
	assert.Equal(t, a, s.Current())
	assert.Equal(t, uint64(0x4000), unit.Live().IP)

	// Simulate progress, then preempt with a higher priority process.
	unit.Advance(17)
	high := newProcess(3, "high", 9)
	s.Enqueue(high)
	s.Tick()
	assert.Equal(t, high, s.Current())
	assert.Equal(t, uint64(0x4000+17), a.Saved.IP)

	// When a is dispatched again it resumes exactly where it left off.
	s.Remove(high)
	assert.Equal(t, a, s.Current())
	assert.Equal(t, uint64(0x4000+17), unit.Live().IP)
}
