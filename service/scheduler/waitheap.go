package scheduler

import (
	"container/heap"

	"github.com/viant/kernix/model/proc"
)

// waitEntry is one sleeping process keyed by its absolute wake tick. The
// sequence number makes expiry order deterministic when several entries
// share a wake tick: first enqueued wakes first.
type waitEntry struct {
	process  *proc.Process
	wakeTime uint64
	seq      uint64
	pos      int
}

// waitHeap orders entries by (wakeTime, seq); it implements heap.Interface.
type waitHeap []*waitEntry

func (h waitHeap) Len() int { return len(h) }

func (h waitHeap) Less(i, j int) bool {
	if h[i].wakeTime != h[j].wakeTime {
		return h[i].wakeTime < h[j].wakeTime
	}
	return h[i].seq < h[j].seq
}

func (h waitHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].pos = i
	h[j].pos = j
}

func (h *waitHeap) Push(x any) {
	entry := x.(*waitEntry)
	entry.pos = len(*h)
	*h = append(*h, entry)
}

func (h *waitHeap) Pop() any {
	old := *h
	n := len(old)
	entry := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return entry
}

// waitSet is the time-ordered waiting collection. It replaces a linear
// per-tick scan with a min-heap while keeping the external behavior: a
// process wakes exactly when wakeTime <= now, ties resolved by enqueue order.
type waitSet struct {
	heap    waitHeap
	entries map[proc.PID]*waitEntry
	seq     uint64
}

func newWaitSet() *waitSet {
	return &waitSet{entries: make(map[proc.PID]*waitEntry)}
}

// push registers the process with an absolute wake tick, replacing any
// previous registration.
func (w *waitSet) push(p *proc.Process, wakeTime uint64) {
	w.remove(p)
	w.seq++
	entry := &waitEntry{process: p, wakeTime: wakeTime, seq: w.seq}
	heap.Push(&w.heap, entry)
	w.entries[p.PID] = entry
}

// remove drops the process from the waiting set if present.
func (w *waitSet) remove(p *proc.Process) bool {
	entry, ok := w.entries[p.PID]
	if !ok {
		return false
	}
	heap.Remove(&w.heap, entry.pos)
	delete(w.entries, p.PID)
	return true
}

// expired pops every process whose wake tick has passed, in ascending
// (wakeTime, seq) order.
func (w *waitSet) expired(now uint64) []*proc.Process {
	var out []*proc.Process
	for len(w.heap) > 0 && w.heap[0].wakeTime <= now {
		entry := heap.Pop(&w.heap).(*waitEntry)
		delete(w.entries, entry.process.PID)
		out = append(out, entry.process)
	}
	return out
}

func (w *waitSet) len() int {
	return len(w.entries)
}
