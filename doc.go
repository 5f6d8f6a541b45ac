// Package kernix provides a single-address-space kernel core: a best-fit
// arena allocator, a fixed-capacity process table, an AI-priority-aware
// preemptive scheduler and an opaque context switcher, aggregated behind one
// service façade with pluggable layers:
//
//   - allocator – arena memory management with coalescing
//   - proctable – process lifecycle and stack ownership
//   - scheduler – multi-level ready queues with quantum preemption
//   - syscall   – numeric dispatch over the kernel surface
//   - device    – driver registry
//   - monitor   – inspection shell
//
// Kernix is designed to be embedded in host applications. End-users
// typically interact with the kernel via the high-level Service façade
// exposed by the root package:
//
//	krn, _ := kernix.New()
//	rt := krn.Runtime()
//	_ = rt.Start(ctx)
//	pid, _ := krn.CreateProcess("worker", 0x4000)
//
// For more details see the README and individual sub-packages.
package kernix
