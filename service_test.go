package kernix

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/event"
	"github.com/viant/kernix/service/proctable"
	"github.com/viant/kernix/service/syscall"
)

func newTestKernel(t *testing.T, options ...Option) *Service {
	s, err := New(options...)
	assert.NoError(t, err)
	return s
}

func TestService_Boot(t *testing.T) {
	s := newTestKernel(t)

	// The idle process owns the execution unit from boot.
	assert.Equal(t, IdlePID, s.CurrentPID())
	idle, err := s.LookupProcess(IdlePID)
	assert.NoError(t, err)
	assert.Equal(t, "idle", idle.Name)
	assert.Equal(t, proc.StateRunning, idle.State)
	assert.Equal(t, proc.MinPriority, idle.Priority)

	status := s.Status()
	assert.Equal(t, uint64(1), status.Processes.Total)
	assert.Equal(t, uint32(1), status.Processes.Active)
	assert.Equal(t, status.Memory.Total, status.Memory.Used+status.Memory.Free)
	assert.Equal(t, 1, status.Devices)
}

func TestService_ProcessLifecycle(t *testing.T) {
	s := newTestKernel(t)
	baseline := s.MemoryStats()

	pid1, err := s.CreateProcess("worker-a", 0x4000)
	assert.NoError(t, err)
	assert.Equal(t, proc.PID(2), pid1)

	pid2, err := s.CreateProcess("worker-b", 0x5000)
	assert.NoError(t, err)
	assert.Equal(t, proc.PID(3), pid2)

	p, err := s.LookupProcess(pid1)
	assert.NoError(t, err)
	assert.Equal(t, "worker-a", p.Name)
	assert.Equal(t, proc.DefaultPriority, p.Priority)
	assert.Equal(t, uint64(0x4000), p.Saved.IP)

	assert.NoError(t, s.DestroyProcess(pid1))
	assert.NoError(t, s.DestroyProcess(pid2))

	_, err = s.LookupProcess(pid1)
	assert.ErrorIs(t, err, proctable.ErrNotFound)

	// Stacks returned to the arena.
	assert.Equal(t, baseline, s.MemoryStats())
}

func TestService_IdleIsProtected(t *testing.T) {
	s := newTestKernel(t)
	assert.ErrorIs(t, s.DestroyProcess(IdlePID), ErrIdleProcess)
	assert.ErrorIs(t, s.Sleep(IdlePID, 10), ErrIdleProcess)
}

func TestService_PreemptionAndSleep(t *testing.T) {
	s := newTestKernel(t)

	pid, err := s.CreateProcess("worker", 0x4000)
	assert.NoError(t, err)

	// The worker outranks idle, so the next tick dispatches it.
	s.Tick()
	assert.Equal(t, pid, s.CurrentPID())

	assert.NoError(t, s.Sleep(pid, 100))
	p, err := s.LookupProcess(pid)
	assert.NoError(t, err)
	assert.Equal(t, proc.StateWaiting, p.State)
	assert.Equal(t, IdlePID, s.CurrentPID())

	for i := 0; i < 99; i++ {
		s.Tick()
	}
	assert.Equal(t, proc.StateWaiting, p.State)

	s.Tick()
	assert.Equal(t, proc.StateRunning, p.State)
	assert.Equal(t, pid, s.CurrentPID())
}

func TestService_PriorityClamping(t *testing.T) {
	s := newTestKernel(t)
	pid, err := s.CreateProcess("worker", 0)
	assert.NoError(t, err)

	assert.NoError(t, s.SetPriority(pid, 15))
	p, err := s.LookupProcess(pid)
	assert.NoError(t, err)
	assert.Equal(t, proc.MaxPriority, p.Priority)

	assert.NoError(t, s.SetPriority(pid, 9))
	assert.NoError(t, s.SetAIPriority(pid, true))
	// Boost never pushes the effective priority past the maximum.
	assert.Equal(t, proc.MaxPriority, p.EffectivePriority())
}

func TestService_SyscallRoundTrip(t *testing.T) {
	s := newTestKernel(t)
	ctx := context.Background()

	result, err := s.Syscall(ctx, &syscall.Syscall{Number: syscall.SysGetPID})
	assert.NoError(t, err)
	assert.Equal(t, uint64(IdlePID), result.Value)

	result, err = s.Syscall(ctx, &syscall.Syscall{Number: syscall.SysMalloc, Args: [syscall.ArgCount]uint64{256}})
	assert.NoError(t, err)
	assert.NotZero(t, result.Value)
	used := s.MemoryStats().Used

	_, err = s.Syscall(ctx, &syscall.Syscall{Number: syscall.SysFree, Args: [syscall.ArgCount]uint64{result.Value}})
	assert.NoError(t, err)
	assert.Less(t, s.MemoryStats().Used, used)

	result, err = s.Syscall(ctx, &syscall.Syscall{Number: syscall.SysGetStats})
	assert.NoError(t, err)
	snapshot, ok := result.Payload.(*syscall.Snapshot)
	assert.True(t, ok)
	assert.Equal(t, uint32(1), snapshot.ActiveProcesses)

	_, err = s.Syscall(ctx, &syscall.Syscall{Number: syscall.SysOpen})
	assert.ErrorIs(t, err, syscall.ErrNotImplemented)
}

func TestService_MonitorCommands(t *testing.T) {
	s := newTestKernel(t)
	ctx := context.Background()

	_, err := s.CreateProcess("inference", 0)
	assert.NoError(t, err)

	output, err := s.Monitor().Execute(ctx, "ps")
	assert.NoError(t, err)
	assert.Contains(t, output, "idle")
	assert.Contains(t, output, "inference")

	output, err = s.Monitor().Execute(ctx, "lsdev")
	assert.NoError(t, err)
	assert.Contains(t, output, "console0")

	// The idle process cannot be killed from the shell either.
	_, err = s.Monitor().Execute(ctx, "kill 1")
	assert.ErrorIs(t, err, ErrIdleProcess)
}

func TestService_Events(t *testing.T) {
	s := newTestKernel(t)

	var mu sync.Mutex
	var kinds []event.Kind
	s.Events().Subscribe(func(e *event.Event) {
		mu.Lock()
		kinds = append(kinds, e.Kind)
		mu.Unlock()
	})

	pid, err := s.CreateProcess("worker", 0)
	assert.NoError(t, err)
	assert.NoError(t, s.DestroyProcess(pid))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		var created, terminated bool
		for _, kind := range kinds {
			switch kind {
			case event.KindProcessCreated:
				created = true
			case event.KindProcessTerminated:
				terminated = true
			}
		}
		return created && terminated
	}, time.Second, 5*time.Millisecond)
}

func TestService_TableFull(t *testing.T) {
	s := newTestKernel(t, WithMaxProcesses(2))

	// Slot 1 holds idle; one more fits.
	_, err := s.CreateProcess("worker", 0)
	assert.NoError(t, err)
	_, err = s.CreateProcess("overflow", 0)
	assert.ErrorIs(t, err, proctable.ErrTableFull)
}

func TestRuntime_StartShutdown(t *testing.T) {
	s := newTestKernel(t, WithTickInterval(time.Millisecond))
	ctx := context.Background()

	rt := s.Runtime()
	assert.NoError(t, rt.Start(ctx))
	assert.Error(t, rt.Start(ctx))

	assert.Eventually(t, func() bool {
		return s.Uptime() > 10
	}, time.Second, time.Millisecond)

	shutdownCtx, cancel := context.WithTimeout(ctx, time.Second)
	defer cancel()
	assert.NoError(t, rt.Shutdown(shutdownCtx))

	// Idempotent shutdown.
	assert.NoError(t, rt.Shutdown(shutdownCtx))
}

func TestLoadConfig(t *testing.T) {
	s, err := New(WithConfig(&Config{}))
	assert.Error(t, err)
	assert.Nil(t, s)

	config := DefaultConfig()
	assert.NoError(t, config.Validate())
	config.Scheduler.Quantum = 0
	assert.Error(t, config.Validate())
}
