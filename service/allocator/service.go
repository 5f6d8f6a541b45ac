// Package allocator manages a fixed-size byte arena through an intrusive,
// address-ordered block list with best-fit placement and exhaustive
// coalescing. Handles are stable payload offsets into the arena, never raw
// pointers.
package allocator

import (
	"sync"
)

const (
	// HeaderSize is the per-block bookkeeping overhead charged against the
	// arena. A handle points exactly one header width past its header.
	HeaderSize = 16

	// Alignment is the allocation granularity; requested sizes are rounded
	// up to it.
	Alignment = 8

	// minPayload is the smallest payload a split may leave behind. A free
	// block whose surplus would be below header+minPayload is consumed
	// whole to avoid unusable slivers.
	minPayload = 8
)

// Handle references an allocated payload region. The zero handle is never
// valid: the lowest payload starts one header width into the arena.
type Handle uint32

// Stats reports arena accounting. Total == Used + Free always holds: every
// block, used or free, accounts for its payload plus header, and the block
// list tiles the arena without gaps.
type Stats struct {
	Total uint64 `json:"total"`
	Used  uint64 `json:"used"`
	Free  uint64 `json:"free"`
}

// block is a node of the address-ordered list covering the whole arena.
// Adjacent free blocks never coexist: Free coalesces eagerly.
type block struct {
	off  uint32 // header offset within the arena
	size uint32 // payload bytes
	used bool
	prev *block
	next *block
}

// Service is the arena allocator. A single mutator at a time is assumed by
// the kernel design; the mutex guards against callers that drive the kernel
// from more than one timer source.
type Service struct {
	mu    sync.Mutex
	buf   []byte
	head  *block
	byOff map[uint32]*block
	used  uint64
}

// New creates an allocator over a fresh arena of the given size in bytes.
func New(size int) (*Service, error) {
	if size < HeaderSize+minPayload {
		return nil, ErrArenaSize
	}
	s := &Service{
		buf:   make([]byte, size),
		byOff: make(map[uint32]*block),
	}
	s.head = &block{off: 0, size: uint32(size - HeaderSize)}
	s.byOff[0] = s.head
	return s, nil
}

// Allocate reserves size bytes and returns a handle to the payload. The size
// is rounded up to the alignment unit. Placement is best-fit: the smallest
// free block that satisfies the request wins, ties broken by lowest address.
func (s *Service) Allocate(size int) (Handle, error) {
	if size <= 0 {
		return 0, ErrOutOfMemory
	}
	need := uint32(size+Alignment-1) &^ uint32(Alignment-1)

	s.mu.Lock()
	defer s.mu.Unlock()

	var bestFit *block
	for b := s.head; b != nil; b = b.next {
		if b.used || b.size < need {
			continue
		}
		if bestFit == nil || b.size < bestFit.size {
			bestFit = b
		}
	}
	if bestFit == nil {
		return 0, ErrOutOfMemory
	}

	// Split only when the surplus can carry a header and a minimum payload.
	if bestFit.size > need+HeaderSize+minPayload {
		tail := &block{
			off:  bestFit.off + HeaderSize + need,
			size: bestFit.size - need - HeaderSize,
			prev: bestFit,
			next: bestFit.next,
		}
		if bestFit.next != nil {
			bestFit.next.prev = tail
		}
		bestFit.next = tail
		bestFit.size = need
		s.byOff[tail.off] = tail
	}

	bestFit.used = true
	s.used += uint64(bestFit.size) + HeaderSize
	return Handle(bestFit.off + HeaderSize), nil
}

// Free releases the block owning the handle. Freeing an already-free handle
// is a no-op. After release the block is merged with its immediate next and
// previous neighbours when they are free.
func (s *Service) Free(h Handle) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := s.lookup(h)
	if err != nil {
		return err
	}
	if !b.used {
		return nil
	}
	b.used = false
	s.used -= uint64(b.size) + HeaderSize

	if next := b.next; next != nil && !next.used {
		s.absorb(b, next)
	}
	if prev := b.prev; prev != nil && !prev.used {
		s.absorb(prev, b)
	}
	return nil
}

// absorb merges the free block into its free predecessor, reclaiming the
// absorbed header as payload.
func (s *Service) absorb(into, from *block) {
	into.size += from.size + HeaderSize
	into.next = from.next
	if from.next != nil {
		from.next.prev = into
	}
	delete(s.byOff, from.off)
}

// Bytes returns the payload region behind a handle. The slice aliases the
// arena; it stays valid until the handle is freed.
func (s *Service) Bytes(h Handle) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.lookup(h)
	if err != nil {
		return nil, err
	}
	if !b.used {
		return nil, ErrBadHandle
	}
	start := b.off + HeaderSize
	return s.buf[start : start+b.size], nil
}

// SizeOf returns the payload size behind a live handle.
func (s *Service) SizeOf(h Handle) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, err := s.lookup(h)
	if err != nil {
		return 0, err
	}
	if !b.used {
		return 0, ErrBadHandle
	}
	return int(b.size), nil
}

func (s *Service) lookup(h Handle) (*block, error) {
	if h < HeaderSize {
		return nil, ErrBadHandle
	}
	b, ok := s.byOff[uint32(h)-HeaderSize]
	if !ok {
		return nil, ErrBadHandle
	}
	return b, nil
}

// Stats returns arena totals.
func (s *Service) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := uint64(len(s.buf))
	return Stats{Total: total, Used: s.used, Free: total - s.used}
}

// blockCount reports the number of blocks in the arena list; used by tests
// to assert coalescing leaves the topology unchanged.
func (s *Service) blockCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for b := s.head; b != nil; b = b.next {
		n++
	}
	return n
}

// adjacentFree reports whether any two neighbouring blocks are both free;
// always false when coalescing is exhaustive.
func (s *Service) adjacentFree() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for b := s.head; b != nil && b.next != nil; b = b.next {
		if !b.used && !b.next.used {
			return true
		}
	}
	return false
}
