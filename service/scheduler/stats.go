package scheduler

// Stats are the scheduler counters; read-only externally. Ticks are the
// kernel time base: one tick per Tick invocation.
type Stats struct {
	// TotalSwitches counts completed context switches; a re-selection of
	// the already running process does not count.
	TotalSwitches uint64 `json:"totalSwitches"`

	// AISwitches counts switches into AI-boosted processes.
	AISwitches uint64 `json:"aiSwitches"`

	// IdleTicks counts ticks with no runnable current process.
	IdleTicks uint64 `json:"idleTicks"`

	// LastSwitchTick is the tick of the most recent context switch.
	LastSwitchTick uint64 `json:"lastSwitchTick"`

	// CurrentQuantum mirrors the running process's quantum counter.
	CurrentQuantum int `json:"currentQuantum"`
}
