package proc

// RegisterCount is the size of the general purpose register file captured on
// a context switch.
const RegisterCount = 16

// Context is an opaque execution-state snapshot: register file, instruction
// pointer, stack pointer, flags and the address-space handle. The scheduler
// treats it as a value to capture and apply; it never inspects the layout.
type Context struct {
	Regs  [RegisterCount]uint64
	IP    uint64
	SP    uint64
	Flags uint64

	// AddressSpace is an abstract page-table root handle; the kernel core
	// does no paging of its own.
	AddressSpace uint64
}

// InterruptFlag is the flags bit a freshly created context starts with,
// mirroring an execution unit that resumes with interrupts enabled.
const InterruptFlag = 0x202

// NewContext returns the initial context for a process entered at entry with
// the stack pointer placed at the top of its stack region.
func NewContext(entry, stackTop uint64) Context {
	return Context{
		IP:    entry,
		SP:    stackTop,
		Flags: InterruptFlag,
	}
}
