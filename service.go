package kernix

import (
	"context"
	"fmt"

	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/allocator"
	"github.com/viant/kernix/service/cpu"
	"github.com/viant/kernix/service/device"
	"github.com/viant/kernix/service/event"
	"github.com/viant/kernix/service/monitor"
	"github.com/viant/kernix/service/proctable"
	"github.com/viant/kernix/service/scheduler"
	"github.com/viant/kernix/service/syscall"
	"github.com/viant/kernix/tracing"
)

// IdlePID is the reserved pid of the idle process created at boot.
const IdlePID = proc.PID(1)

// Status is an aggregate snapshot of kernel state.
type Status struct {
	Uptime     uint64           `json:"uptime"`
	CurrentPID proc.PID         `json:"currentPid"`
	Processes  proctable.Counts `json:"processes"`
	Ready      int              `json:"ready"`
	Waiting    int              `json:"waiting"`
	Memory     allocator.Stats  `json:"memory"`
	Scheduler  scheduler.Stats  `json:"scheduler"`
	Devices    int              `json:"devices"`
}

// Service is the kernel core aggregate.
type Service struct {
	config    *Config
	engine    cpu.Engine
	allocator *allocator.Service
	processes *proctable.Service
	scheduler *scheduler.Service
	syscalls  *syscall.Service
	devices   *device.Service
	events    *event.Service
	monitor   *monitor.Service
	runtime   *Runtime
	idle      *proc.Process
	drivers   []device.Driver
}

// New boots a kernel: it builds the arena, process table and scheduler,
// creates the reserved idle process and wires the service layers.
func New(options ...Option) (*Service, error) {
	s := &Service{config: DefaultConfig()}
	for _, option := range options {
		option(s)
	}
	if err := s.config.Validate(); err != nil {
		return nil, err
	}
	if err := s.init(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) init() error {
	if s.engine == nil {
		s.engine = cpu.NewUnit()
	}
	if s.events == nil {
		s.events = event.New()
	}
	arena, err := allocator.New(s.config.Memory.ArenaSize)
	if err != nil {
		return err
	}
	s.allocator = arena
	s.processes = proctable.New(arena, s.config.Process.MaxProcesses, s.config.Process.StackSize)
	s.scheduler = scheduler.New(s.engine, scheduler.WithObserver(s.onSwitch))
	s.devices = device.New()
	if len(s.drivers) == 0 {
		s.drivers = []device.Driver{device.NewConsole()}
	}
	for _, driver := range s.drivers {
		if _, err := s.devices.Register(driver); err != nil {
			return err
		}
	}
	s.syscalls = syscall.New(&syscallKernel{s})
	s.monitor = monitor.New(s)
	s.runtime = &Runtime{service: s, interval: s.config.Scheduler.TickInterval}

	idle, err := s.processes.Create("idle", 0, 0)
	if err != nil {
		return fmt.Errorf("failed to create idle process: %w", err)
	}
	idle.Priority = proc.MinPriority
	idle.Quantum = s.config.Scheduler.Quantum
	s.idle = idle
	s.scheduler.RegisterIdle(idle)
	return nil
}

func (s *Service) onSwitch(sw scheduler.Switch) {
	e := event.NewEvent(event.KindContextSwitch, sw.New.PID, sw.New.Name, sw.Tick)
	if sw.Old != nil {
		e.Metadata["from"] = sw.Old.PID
	}
	_ = s.events.Publish(context.Background(), e)
}

// CreateProcess creates a process and makes it schedulable. The creating
// process (the current one) becomes its parent.
func (s *Service) CreateProcess(name string, entry uint64) (proc.PID, error) {
	return s.spawn(name, entry, s.CurrentPID())
}

func (s *Service) spawn(name string, entry uint64, parent proc.PID) (proc.PID, error) {
	_, span := tracing.StartSpan(context.Background(), "kernel.createProcess", "INTERNAL")
	p, err := s.processes.Create(name, entry, parent)
	tracing.EndSpan(span, err)
	if err != nil {
		return 0, err
	}
	p.Quantum = s.config.Scheduler.Quantum
	s.scheduler.Enqueue(p)
	_ = s.events.Publish(context.Background(), event.NewEvent(event.KindProcessCreated, p.PID, p.Name, s.scheduler.TickCount()))
	return p.PID, nil
}

// DestroyProcess terminates the process, detaches it from the scheduler and
// releases its stack. The idle process is protected.
func (s *Service) DestroyProcess(pid proc.PID) error {
	if pid == IdlePID {
		return ErrIdleProcess
	}
	p, err := s.processes.Lookup(pid)
	if err != nil {
		return err
	}
	p.State = proc.StateTerminated
	s.scheduler.Remove(p)
	s.processes.Destroy(pid)
	_ = s.events.Publish(context.Background(), event.NewEvent(event.KindProcessTerminated, pid, p.Name, s.scheduler.TickCount()))
	return nil
}

// LookupProcess returns a live process by pid.
func (s *Service) LookupProcess(pid proc.PID) (*proc.Process, error) {
	return s.processes.Lookup(pid)
}

// Processes returns all live processes.
func (s *Service) Processes() []*proc.Process {
	return s.processes.Processes()
}

// SetPriority updates the base priority, clamping it into the valid range,
// and repositions the process in the ready queues.
func (s *Service) SetPriority(pid proc.PID, priority int) error {
	p, err := s.processes.Lookup(pid)
	if err != nil {
		return err
	}
	clamped := proc.ClampPriority(priority)
	s.scheduler.Requeue(p, func() { p.Priority = clamped })
	return nil
}

// SetAIPriority toggles the AI boost flag and repositions the process in the
// ready queues at its new effective priority.
func (s *Service) SetAIPriority(pid proc.PID, enabled bool) error {
	p, err := s.processes.Lookup(pid)
	if err != nil {
		return err
	}
	s.scheduler.Requeue(p, func() { p.AIPriority = enabled })
	return nil
}

// Sleep suspends the process for the given number of ticks. The idle
// process is protected.
func (s *Service) Sleep(pid proc.PID, ticks uint64) error {
	if pid == IdlePID {
		return ErrIdleProcess
	}
	p, err := s.processes.Lookup(pid)
	if err != nil {
		return err
	}
	s.scheduler.Sleep(p, ticks)
	_ = s.events.Publish(context.Background(), event.NewEvent(event.KindProcessSleep, pid, p.Name, s.scheduler.TickCount()))
	return nil
}

// Wake resumes a sleeping process ahead of its wake time.
func (s *Service) Wake(pid proc.PID) error {
	p, err := s.processes.Lookup(pid)
	if err != nil {
		return err
	}
	s.scheduler.Wake(p)
	_ = s.events.Publish(context.Background(), event.NewEvent(event.KindProcessWake, pid, p.Name, s.scheduler.TickCount()))
	return nil
}

// Yield relinquishes the execution unit to the next ready process.
func (s *Service) Yield() {
	s.scheduler.Yield()
}

// Allocate reserves size bytes from the kernel arena.
func (s *Service) Allocate(size int) (allocator.Handle, error) {
	return s.allocator.Allocate(size)
}

// Free releases a previously allocated block.
func (s *Service) Free(handle allocator.Handle) error {
	return s.allocator.Free(handle)
}

// MemoryStats returns arena statistics.
func (s *Service) MemoryStats() allocator.Stats {
	return s.allocator.Stats()
}

// SchedulerStats returns scheduler counters.
func (s *Service) SchedulerStats() scheduler.Stats {
	return s.scheduler.Stats()
}

// ProcessCounts returns creation and occupancy counters.
func (s *Service) ProcessCounts() proctable.Counts {
	return s.processes.Counts()
}

// Uptime returns kernel time in ticks.
func (s *Service) Uptime() uint64 {
	return s.scheduler.TickCount()
}

// CurrentPID returns the pid owning the execution unit.
func (s *Service) CurrentPID() proc.PID {
	if current := s.scheduler.Current(); current != nil {
		return current.PID
	}
	return 0
}

// Devices returns registered device descriptors.
func (s *Service) Devices() []*device.Device {
	return s.devices.Devices()
}

// RegisterDevice adds a driver to the device registry.
func (s *Service) RegisterDevice(driver device.Driver) (*device.Device, error) {
	return s.devices.Register(driver)
}

// DeviceService exposes the device registry.
func (s *Service) DeviceService() *device.Service {
	return s.devices
}

// Syscall dispatches one system call.
func (s *Service) Syscall(ctx context.Context, call *syscall.Syscall) (syscall.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "kernel.syscall", "SERVER")
	span.WithAttributes(map[string]string{"number": fmt.Sprintf("%d", call.Number)})
	result, err := s.syscalls.Dispatch(ctx, call)
	tracing.EndSpan(span, err)
	return result, err
}

// Monitor returns the kernel inspection shell.
func (s *Service) Monitor() *monitor.Service {
	return s.monitor
}

// Events returns the kernel event service.
func (s *Service) Events() *event.Service {
	return s.events
}

// Runtime returns the tick-driving runtime.
func (s *Service) Runtime() *Runtime {
	return s.runtime
}

// Tick advances kernel time by one period.
func (s *Service) Tick() {
	s.scheduler.Tick()
}

// Status returns an aggregate snapshot of kernel state.
func (s *Service) Status() Status {
	return Status{
		Uptime:     s.scheduler.TickCount(),
		CurrentPID: s.CurrentPID(),
		Processes:  s.processes.Counts(),
		Ready:      s.scheduler.ReadyCount(),
		Waiting:    s.scheduler.WaitingCount(),
		Memory:     s.allocator.Stats(),
		Scheduler:  s.scheduler.Stats(),
		Devices:    s.devices.Count(),
	}
}

// syscallKernel adapts the kernel aggregate to the syscall dispatch surface.
type syscallKernel struct {
	*Service
}

func (k *syscallKernel) Allocate(size int) (uint32, error) {
	handle, err := k.Service.Allocate(size)
	return uint32(handle), err
}

func (k *syscallKernel) Release(handle uint32) error {
	return k.Service.Free(allocator.Handle(handle))
}

func (k *syscallKernel) Fork(parent proc.PID) (proc.PID, error) {
	p, err := k.processes.Lookup(parent)
	if err != nil {
		return 0, err
	}
	return k.spawn(p.Name+".child", p.EntryPoint, parent)
}

func (k *syscallKernel) Exit(pid proc.PID) error {
	return k.DestroyProcess(pid)
}

func (k *syscallKernel) Snapshot() syscall.Snapshot {
	memory := k.MemoryStats()
	counts := k.ProcessCounts()
	return syscall.Snapshot{
		Uptime:          k.Uptime(),
		TotalProcesses:  counts.Total,
		ActiveProcesses: counts.Active,
		TotalMemory:     memory.Total,
		UsedMemory:      memory.Used,
		FreeMemory:      memory.Free,
	}
}

var _ syscall.Kernel = (*syscallKernel)(nil)
var _ monitor.Kernel = (*Service)(nil)
