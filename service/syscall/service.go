package syscall

import (
	"context"
	"fmt"

	"github.com/viant/kernix/model/proc"
)

type handler func(ctx context.Context, call *Syscall) (Result, error)

// Service dispatches system calls to kernel operations.
type Service struct {
	kernel   Kernel
	handlers map[uint32]handler
}

// New creates a dispatcher bound to the supplied kernel.
func New(kernel Kernel) *Service {
	s := &Service{kernel: kernel}
	s.handlers = map[uint32]handler{
		SysExit:        s.exit,
		SysFork:        s.fork,
		SysGetPID:      s.getPID,
		SysSleep:       s.sleep,
		SysAIRequest:   s.aiRequest,
		SysGetTime:     s.getTime,
		SysMalloc:      s.malloc,
		SysFree:        s.free,
		SysSetPriority: s.setPriority,
		SysGetStats:    s.getStats,
		SysYield:       s.yield,
	}
	return s
}

// Dispatch executes the call and returns its result. Recognized numbers
// without kernel backing return ErrNotImplemented; unknown numbers return
// ErrBadSyscall.
func (s *Service) Dispatch(ctx context.Context, call *Syscall) (Result, error) {
	if h, ok := s.handlers[call.Number]; ok {
		return h(ctx, call)
	}
	switch call.Number {
	case SysRead, SysWrite, SysOpen, SysClose, SysExec:
		return Result{}, fmt.Errorf("syscall %d: %w", call.Number, ErrNotImplemented)
	}
	return Result{}, fmt.Errorf("syscall %d: %w", call.Number, ErrBadSyscall)
}

func (s *Service) getPID(_ context.Context, _ *Syscall) (Result, error) {
	return Result{Value: uint64(s.kernel.CurrentPID())}, nil
}

func (s *Service) getTime(_ context.Context, _ *Syscall) (Result, error) {
	return Result{Value: s.kernel.Uptime()}, nil
}

func (s *Service) malloc(_ context.Context, call *Syscall) (Result, error) {
	handle, err := s.kernel.Allocate(int(call.Args[0]))
	if err != nil {
		return Result{}, err
	}
	return Result{Value: uint64(handle)}, nil
}

func (s *Service) free(_ context.Context, call *Syscall) (Result, error) {
	if err := s.kernel.Release(uint32(call.Args[0])); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

func (s *Service) setPriority(_ context.Context, call *Syscall) (Result, error) {
	pid := proc.PID(call.Args[0])
	if err := s.kernel.SetPriority(pid, int(call.Args[1])); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

func (s *Service) aiRequest(_ context.Context, call *Syscall) (Result, error) {
	pid := s.kernel.CurrentPID()
	if call.Args[0] != 0 {
		pid = proc.PID(call.Args[0])
	}
	if err := s.kernel.SetAIPriority(pid, true); err != nil {
		return Result{}, err
	}
	return Result{Value: uint64(pid)}, nil
}

func (s *Service) getStats(_ context.Context, _ *Syscall) (Result, error) {
	snapshot := s.kernel.Snapshot()
	return Result{Payload: &snapshot}, nil
}

func (s *Service) sleep(_ context.Context, call *Syscall) (Result, error) {
	if err := s.kernel.Sleep(s.kernel.CurrentPID(), call.Args[0]); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

func (s *Service) exit(_ context.Context, _ *Syscall) (Result, error) {
	if err := s.kernel.Exit(s.kernel.CurrentPID()); err != nil {
		return Result{}, err
	}
	return Result{}, nil
}

func (s *Service) fork(_ context.Context, _ *Syscall) (Result, error) {
	child, err := s.kernel.Fork(s.kernel.CurrentPID())
	if err != nil {
		return Result{}, err
	}
	return Result{Value: uint64(child)}, nil
}

func (s *Service) yield(_ context.Context, _ *Syscall) (Result, error) {
	s.kernel.Yield()
	return Result{}, nil
}
