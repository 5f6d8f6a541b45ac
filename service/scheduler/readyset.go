package scheduler

import (
	"container/list"

	"github.com/viant/kernix/model/proc"
)

// readyEntry remembers where a process sits so it can be unlinked in O(1),
// including the level it was enqueued at - the process base priority may
// change while it is queued and removal must target the old level.
type readyEntry struct {
	elem  *list.Element
	level int
}

// readySet is the multi-level ready queue: one FIFO per priority level,
// consulted strictly from the highest level down. Within a level dispatch
// order equals enqueue order. Lower levels can starve under sustained
// high-priority load; that is accepted behavior, not a defect.
type readySet struct {
	levels  [proc.MaxPriority + 1]*list.List
	entries map[proc.PID]readyEntry
}

func newReadySet() *readySet {
	r := &readySet{entries: make(map[proc.PID]readyEntry)}
	for level := proc.MinPriority; level <= proc.MaxPriority; level++ {
		r.levels[level] = list.New()
	}
	return r
}

// push appends the process to the tail of its effective priority level.
// A process already queued stays where it is.
func (r *readySet) push(p *proc.Process) {
	if _, ok := r.entries[p.PID]; ok {
		return
	}
	level := p.EffectivePriority()
	elem := r.levels[level].PushBack(p)
	r.entries[p.PID] = readyEntry{elem: elem, level: level}
}

// remove unlinks the process from whichever level references it.
func (r *readySet) remove(p *proc.Process) bool {
	entry, ok := r.entries[p.PID]
	if !ok {
		return false
	}
	r.levels[entry.level].Remove(entry.elem)
	delete(r.entries, p.PID)
	return true
}

// pop dequeues the head of the first non-empty level, scanning 10 down to 1.
func (r *readySet) pop() *proc.Process {
	for level := proc.MaxPriority; level >= proc.MinPriority; level-- {
		front := r.levels[level].Front()
		if front == nil {
			continue
		}
		p := front.Value.(*proc.Process)
		r.levels[level].Remove(front)
		delete(r.entries, p.PID)
		return p
	}
	return nil
}

// anyAbove reports whether a level strictly above the given one is non-empty.
func (r *readySet) anyAbove(level int) bool {
	for candidate := proc.MaxPriority; candidate > level; candidate-- {
		if r.levels[candidate].Len() > 0 {
			return true
		}
	}
	return false
}

func (r *readySet) len() int {
	return len(r.entries)
}

// processes returns queued processes in dispatch order, highest level first.
func (r *readySet) processes() []*proc.Process {
	out := make([]*proc.Process, 0, len(r.entries))
	for level := proc.MaxPriority; level >= proc.MinPriority; level-- {
		for elem := r.levels[level].Front(); elem != nil; elem = elem.Next() {
			out = append(out, elem.Value.(*proc.Process))
		}
	}
	return out
}
