// Package pagetable implements the page-table organizations of the
// simulator. Tables are stored in an arena and refer to each other by integer
// position, so an entry is addressed by a vm.EntryID that stays valid for the
// lifetime of the table.
package pagetable

import (
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/addressing"
)

// MaxTableEntries is the largest table the simulator agrees to allocate.
const MaxTableEntries = 1 << 26

// An Entry is a leaf block of a hierarchical page table.
type Entry struct {
	Valid bool
	Frame int32
}

// A PageTable maps virtual pages to frames by direct indexing.
type PageTable interface {
	// Type returns the organization of the table.
	Type() vm.TableType

	// LookupOrCreate returns the entry that translates the given indices,
	// allocating the inner tables along the path on first use.
	LookupOrCreate(ix addressing.Indices) vm.EntryID

	// Entry returns a copy of an entry.
	Entry(id vm.EntryID) Entry

	// Map marks the entry as resident in a frame.
	Map(id vm.EntryID, frame int)

	// Unmap marks the entry as not resident.
	Unmap(id vm.EntryID)

	// NumTables returns how many tables have been allocated at a level,
	// where level 0 is the outer table.
	NumTables(level int) int

	// Walk visits every allocated entry.
	Walk(fn func(id vm.EntryID, e Entry))
}

// New creates a hierarchical page table for the layout. Inverted tables are
// built with NewInverted instead, as they are sized by the frame count.
func New(layout addressing.Layout) (PageTable, error) {
	switch layout.Type {
	case vm.Dense:
		return newDenseTable(layout)
	case vm.TwoLevel:
		return newTwoLevelTable(layout)
	case vm.ThreeLevel:
		return newThreeLevelTable(layout)
	}

	return nil, &vm.ConfigurationError{
		Field:  "table type",
		Value:  layout.Type,
		Reason: "not a hierarchical table organization",
	}
}

func mustFitInArena(what string, layout addressing.Layout) error {
	for level := 0; level < layout.Levels(); level++ {
		size := uint64(1) << levelBits(layout, level)
		if size > MaxTableEntries {
			return &vm.ResourceError{
				What:      what,
				Requested: size,
				Limit:     MaxTableEntries,
			}
		}
	}

	return nil
}

func levelBits(layout addressing.Layout, level int) uint {
	switch level {
	case 0:
		return layout.OuterBits
	case 1:
		return layout.SecondBits
	default:
		return layout.ThirdBits
	}
}

func checkIndex(level, index, size int) {
	if index < 0 || index >= size {
		vm.IntegrityViolation("index %d out of range at level %d (size %d)",
			index, level, size)
	}
}
