// Package monitor implements the kernel inspection shell: a small command
// language over the kernel surface for poking at processes, memory, devices
// and scheduler state.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/allocator"
	"github.com/viant/kernix/service/device"
	"github.com/viant/kernix/service/scheduler"
	"github.com/viant/toolbox"
)

var (
	// ErrUnknownCommand indicates an unrecognized command word.
	ErrUnknownCommand = errors.New("unknown command")
	// ErrUsage indicates a recognized command with malformed arguments.
	ErrUsage = errors.New("invalid usage")
)

// Kernel is the surface the monitor needs from the kernel core.
type Kernel interface {
	Processes() []*proc.Process
	LookupProcess(pid proc.PID) (*proc.Process, error)
	CreateProcess(name string, entry uint64) (proc.PID, error)
	DestroyProcess(pid proc.PID) error
	SetPriority(pid proc.PID, priority int) error
	SetAIPriority(pid proc.PID, enabled bool) error
	Sleep(pid proc.PID, ticks uint64) error
	Wake(pid proc.PID) error
	MemoryStats() allocator.Stats
	SchedulerStats() scheduler.Stats
	Uptime() uint64
	Devices() []*device.Device
}

// Service executes monitor commands against a kernel.
type Service struct {
	kernel Kernel
}

// New creates a monitor bound to the supplied kernel.
func New(kernel Kernel) *Service {
	return &Service{kernel: kernel}
}

// Execute parses and runs one command line, returning its textual output.
func (s *Service) Execute(ctx context.Context, line string) (string, error) {
	command, args, err := parseLine(line)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUsage, err)
	}
	switch command {
	case "help":
		return s.help(), nil
	case "ps":
		return s.ps(), nil
	case "mem":
		return s.mem(), nil
	case "stat":
		return s.stat(), nil
	case "uptime":
		return fmt.Sprintf("uptime: %d ticks\n", s.kernel.Uptime()), nil
	case "lsdev":
		return s.lsdev(), nil
	case "spawn":
		return s.spawn(args)
	case "kill":
		return s.kill(args)
	case "nice":
		return s.nice(args)
	case "boost":
		return s.boost(args)
	case "sleep":
		return s.sleep(args)
	case "wake":
		return s.wake(args)
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownCommand, command)
}

func (s *Service) help() string {
	return `commands:
  ps                      list processes
  mem                     arena statistics
  stat                    scheduler statistics
  uptime                  kernel uptime in ticks
  lsdev                   list registered devices
  spawn <name> [entry]    create a process
  kill <pid>              terminate a process
  nice <pid> <priority>   set base priority
  boost <pid> [on|off]    toggle AI priority
  sleep <pid> <ticks>     put a process to sleep
  wake <pid>              wake a sleeping process
  help                    this text
`
}

func (s *Service) ps() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-6s %-16s %-10s %-4s %-3s %-8s\n", "PID", "NAME", "STATE", "PRI", "AI", "CPU")
	for _, p := range s.kernel.Processes() {
		ai := "-"
		if p.AIPriority {
			ai = "*"
		}
		fmt.Fprintf(&b, "%-6d %-16s %-10s %-4d %-3s %-8d\n",
			p.PID, p.Name, p.State, p.EffectivePriority(), ai, p.CPUTime)
	}
	return b.String()
}

func (s *Service) mem() string {
	stats := s.kernel.MemoryStats()
	return fmt.Sprintf("total: %d\nused:  %d\nfree:  %d\n", stats.Total, stats.Used, stats.Free)
}

func (s *Service) stat() string {
	stats := s.kernel.SchedulerStats()
	return fmt.Sprintf("switches: %d\nai switches: %d\nidle ticks: %d\nlast switch: %d\nquantum used: %d\n",
		stats.TotalSwitches, stats.AISwitches, stats.IdleTicks, stats.LastSwitchTick, stats.CurrentQuantum)
}

func (s *Service) lsdev() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%-4s %-12s %-10s %-24s %-6s\n", "ID", "NAME", "KIND", "TYPE", "STATE")
	for _, d := range s.kernel.Devices() {
		state := "off"
		if d.Active {
			state = "on"
		}
		fmt.Fprintf(&b, "%-4d %-12s %-10s %-24s %-6s\n", d.ID, d.Name, d.Kind, d.TypeName, state)
	}
	return b.String()
}

func (s *Service) spawn(args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", fmt.Errorf("%w: spawn <name> [entry]", ErrUsage)
	}
	var entry uint64
	if len(args) == 2 {
		value, err := toolbox.ToInt(args[1])
		if err != nil || value < 0 {
			return "", fmt.Errorf("%w: spawn entry point: %s", ErrUsage, args[1])
		}
		entry = uint64(value)
	}
	pid, err := s.kernel.CreateProcess(args[0], entry)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("spawned %s pid=%d\n", args[0], pid), nil
}

func (s *Service) kill(args []string) (string, error) {
	pid, err := s.pidArg(args, 1)
	if err != nil {
		return "", err
	}
	if err := s.kernel.DestroyProcess(pid); err != nil {
		return "", err
	}
	return fmt.Sprintf("killed pid=%d\n", pid), nil
}

func (s *Service) nice(args []string) (string, error) {
	pid, err := s.pidArg(args, 2)
	if err != nil {
		return "", err
	}
	priority, err := toolbox.ToInt(args[1])
	if err != nil {
		return "", fmt.Errorf("%w: nice priority: %s", ErrUsage, args[1])
	}
	if err := s.kernel.SetPriority(pid, priority); err != nil {
		return "", err
	}
	p, err := s.kernel.LookupProcess(pid)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("pid=%d priority=%d\n", pid, p.Priority), nil
}

func (s *Service) boost(args []string) (string, error) {
	if len(args) < 1 || len(args) > 2 {
		return "", fmt.Errorf("%w: boost <pid> [on|off]", ErrUsage)
	}
	pid, err := s.pidArg(args[:1], 1)
	if err != nil {
		return "", err
	}
	enabled := true
	if len(args) == 2 {
		switch args[1] {
		case "on":
		case "off":
			enabled = false
		default:
			return "", fmt.Errorf("%w: boost <pid> [on|off]", ErrUsage)
		}
	}
	if err := s.kernel.SetAIPriority(pid, enabled); err != nil {
		return "", err
	}
	return fmt.Sprintf("pid=%d ai=%v\n", pid, enabled), nil
}

func (s *Service) sleep(args []string) (string, error) {
	pid, err := s.pidArg(args, 2)
	if err != nil {
		return "", err
	}
	ticks, err := toolbox.ToInt(args[1])
	if err != nil || ticks < 0 {
		return "", fmt.Errorf("%w: sleep ticks: %s", ErrUsage, args[1])
	}
	if err := s.kernel.Sleep(pid, uint64(ticks)); err != nil {
		return "", err
	}
	return fmt.Sprintf("pid=%d sleeping for %d ticks\n", pid, ticks), nil
}

func (s *Service) wake(args []string) (string, error) {
	pid, err := s.pidArg(args, 1)
	if err != nil {
		return "", err
	}
	if err := s.kernel.Wake(pid); err != nil {
		return "", err
	}
	return fmt.Sprintf("pid=%d woken\n", pid), nil
}

func (s *Service) pidArg(args []string, expected int) (proc.PID, error) {
	if len(args) != expected {
		return 0, fmt.Errorf("%w: expected %d argument(s)", ErrUsage, expected)
	}
	value, err := toolbox.ToInt(args[0])
	if err != nil || value <= 0 {
		return 0, fmt.Errorf("%w: pid: %s", ErrUsage, args[0])
	}
	return proc.PID(value), nil
}
