package allocator

import "errors"

// Sentinel errors so callers can detect allocator conditions with errors.Is
// instead of string comparisons.
var (
	// ErrOutOfMemory indicates the arena has no free block large enough
	// for the request, or the requested size was zero.
	ErrOutOfMemory = errors.New("allocator: out of memory")

	// ErrBadHandle indicates a handle that does not reference the payload
	// of any block in the arena.
	ErrBadHandle = errors.New("allocator: bad handle")

	// ErrArenaSize indicates the arena is too small to hold a single
	// minimum-size block.
	ErrArenaSize = errors.New("allocator: arena too small")
)
