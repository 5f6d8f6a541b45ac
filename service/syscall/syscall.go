// Package syscall exposes the kernel services behind a numeric dispatch
// table so callers interact with the kernel through a stable binary
// contract rather than its Go API.
package syscall

import (
	"github.com/viant/kernix/model/proc"
)

// System call numbers. The low range mirrors the classic file and process
// calls; numbers without kernel backing dispatch to ErrNotImplemented.
const (
	SysRead        uint32 = 0
	SysWrite       uint32 = 1
	SysOpen        uint32 = 2
	SysClose       uint32 = 3
	SysExec        uint32 = 4
	SysExit        uint32 = 5
	SysFork        uint32 = 6
	SysGetPID      uint32 = 7
	SysSleep       uint32 = 8
	SysAIRequest   uint32 = 9
	SysGetTime     uint32 = 10
	SysMalloc      uint32 = 11
	SysFree        uint32 = 12
	SysSetPriority uint32 = 13
	SysGetStats    uint32 = 14
	SysYield       uint32 = 15
)

// ArgCount is the fixed argument slot count per call.
const ArgCount = 6

// Syscall is one invocation: a number plus fixed argument slots.
type Syscall struct {
	Number uint32             `json:"number"`
	Args   [ArgCount]uint64   `json:"args"`
}

// Result carries the numeric return value, plus a structured payload for
// calls that return more than a scalar.
type Result struct {
	Value   uint64      `json:"value"`
	Payload interface{} `json:"payload,omitempty"`
}

// Snapshot is the kernel state block returned by SysGetStats.
type Snapshot struct {
	Uptime          uint64 `json:"uptime"`
	TotalProcesses  uint64 `json:"totalProcesses"`
	ActiveProcesses uint32 `json:"activeProcesses"`
	TotalMemory     uint64 `json:"totalMemory"`
	UsedMemory      uint64 `json:"usedMemory"`
	FreeMemory      uint64 `json:"freeMemory"`
}

// Kernel is the narrow surface the dispatcher needs from the kernel core.
type Kernel interface {
	CurrentPID() proc.PID
	Uptime() uint64
	Allocate(size int) (uint32, error)
	Release(handle uint32) error
	SetPriority(pid proc.PID, priority int) error
	SetAIPriority(pid proc.PID, enabled bool) error
	Fork(parent proc.PID) (proc.PID, error)
	Exit(pid proc.PID) error
	Sleep(pid proc.PID, ticks uint64) error
	Yield()
	Snapshot() Snapshot
}
