package syscall

import "errors"

var (
	// ErrBadSyscall indicates an unknown system call number.
	ErrBadSyscall = errors.New("unknown system call")
	// ErrNotImplemented indicates a recognized call with no kernel backing.
	ErrNotImplemented = errors.New("system call not implemented")
)
