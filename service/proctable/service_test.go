package proctable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/kernix/model/proc"
	"github.com/viant/kernix/service/allocator"
)

func newTestTable(t *testing.T, capacity, stackSize, arenaSize int) *Service {
	arena, err := allocator.New(arenaSize)
	assert.NoError(t, err)
	return New(arena, capacity, stackSize)
}

func TestService_Create(t *testing.T) {
	table := newTestTable(t, 8, 512, 64*1024)

	p1, err := table.Create("p1", 0x1000, 0)
	assert.NoError(t, err)
	p2, err := table.Create("p2", 0x2000, p1.PID)
	assert.NoError(t, err)

	assert.True(t, p2.PID > p1.PID)
	assert.True(t, p1.PID > 0)
	assert.NotEqual(t, p1.UID, p2.UID)
	assert.Equal(t, p1.PID, p2.ParentPID)
	assert.Equal(t, proc.StateNew, p1.State)
	assert.Equal(t, proc.DefaultPriority, p1.Priority)
	assert.Equal(t, proc.DefaultQuantum, p1.Quantum)
	assert.False(t, p1.AIPriority)
	assert.Equal(t, 0, p1.QuantumUsed)

	// Initial context points at the entry with the stack pointer at the
	// top of the allocated region.
	assert.Equal(t, uint64(0x1000), p1.Saved.IP)
	assert.Equal(t, uint64(p1.Stack)+uint64(p1.StackSize), p1.Saved.SP)

	counts := table.Counts()
	assert.Equal(t, uint64(2), counts.Total)
	assert.Equal(t, uint32(2), counts.Active)
}

func TestService_CreateTableFull(t *testing.T) {
	table := newTestTable(t, 2, 256, 32*1024)
	_, err := table.Create("a", 0, 0)
	assert.NoError(t, err)
	_, err = table.Create("b", 0, 0)
	assert.NoError(t, err)
	_, err = table.Create("c", 0, 0)
	assert.ErrorIs(t, err, ErrTableFull)

	counts := table.Counts()
	assert.Equal(t, uint64(2), counts.Total)
}

func TestService_CreateOutOfMemory(t *testing.T) {
	// Arena too small for a single stack: creation must fail without
	// consuming a slot or a pid.
	table := newTestTable(t, 4, 4096, 1024)
	_, err := table.Create("a", 0, 0)
	assert.ErrorIs(t, err, allocator.ErrOutOfMemory)

	counts := table.Counts()
	assert.Equal(t, uint64(0), counts.Total)
	assert.Equal(t, uint32(0), counts.Active)

	p, lookupErr := table.Lookup(1)
	assert.Nil(t, p)
	assert.ErrorIs(t, lookupErr, ErrNotFound)
}

func TestService_DestroyAndLookup(t *testing.T) {
	table := newTestTable(t, 4, 512, 32*1024)
	arenaBefore := table.allocator.Stats()

	p1, err := table.Create("p1", 0, 0)
	assert.NoError(t, err)
	table.Destroy(p1.PID)

	_, err = table.Lookup(p1.PID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, proc.StateTerminated, p1.State)

	// Stack released back to the arena.
	assert.Equal(t, arenaBefore, table.allocator.Stats())

	// Destroy is idempotent.
	table.Destroy(p1.PID)
	assert.Equal(t, uint32(0), table.Counts().Active)
}

func TestService_PIDNeverReused(t *testing.T) {
	table := newTestTable(t, 1, 256, 32*1024)

	p1, err := table.Create("first", 0, 0)
	assert.NoError(t, err)
	table.Destroy(p1.PID)

	// The single slot is reused but the pid keeps climbing.
	p2, err := table.Create("second", 0, 0)
	assert.NoError(t, err)
	assert.True(t, p2.PID > p1.PID)

	_, err = table.Lookup(p1.PID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_NameTruncated(t *testing.T) {
	table := newTestTable(t, 2, 256, 32*1024)
	long := "this-name-is-way-longer-than-the-pcb-field-allows"
	p, err := table.Create(long, 0, 0)
	assert.NoError(t, err)
	assert.Equal(t, 32, len(p.Name))
	assert.Equal(t, long[:32], p.Name)
}
