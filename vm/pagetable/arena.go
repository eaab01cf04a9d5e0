package pagetable

import (
	"github.com/sarchlab/pagesim/vm"
)

const absent = -1

// An arena owns all the tables of one page table. Leaf tables are runs of
// entries; inner tables are runs of slots that hold the position of the child
// run they own, or absent.
type arena struct {
	entries []Entry
	slots   []int
	tables  [3]int
}

func (a *arena) allocLeaf(level, size int) int {
	base := len(a.entries)
	for i := 0; i < size; i++ {
		a.entries = append(a.entries, Entry{Frame: vm.NoFrame})
	}

	a.tables[level]++

	return base
}

func (a *arena) allocInner(level, size int) int {
	base := len(a.slots)
	for i := 0; i < size; i++ {
		a.slots = append(a.slots, absent)
	}

	a.tables[level]++

	return base
}

// childOf returns the child run owned by a slot, allocating it with alloc
// when the slot is still empty.
func (a *arena) childOf(slot int, alloc func() int) int {
	if a.slots[slot] == absent {
		child := alloc()
		a.slots[slot] = child
	}

	return a.slots[slot]
}

func (a *arena) mustBeEntry(id vm.EntryID) {
	if id < 0 || int(id) >= len(a.entries) {
		vm.IntegrityViolation("entry %d does not exist", id)
	}
}

func (a *arena) Entry(id vm.EntryID) Entry {
	a.mustBeEntry(id)
	return a.entries[id]
}

func (a *arena) Map(id vm.EntryID, frame int) {
	a.mustBeEntry(id)

	e := &a.entries[id]
	e.Valid = true
	e.Frame = int32(frame)
}

func (a *arena) Unmap(id vm.EntryID) {
	a.mustBeEntry(id)

	e := &a.entries[id]
	e.Valid = false
	e.Frame = vm.NoFrame
}

func (a *arena) NumTables(level int) int {
	if level < 0 || level >= len(a.tables) {
		return 0
	}

	return a.tables[level]
}

func (a *arena) Walk(fn func(id vm.EntryID, e Entry)) {
	for i, e := range a.entries {
		fn(vm.EntryID(i), e)
	}
}
