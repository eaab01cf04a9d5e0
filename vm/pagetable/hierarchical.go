package pagetable

import (
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/addressing"
)

// denseTable is a single flat table indexed by the whole page number.
type denseTable struct {
	arena
	size int
	base int
}

func newDenseTable(layout addressing.Layout) (*denseTable, error) {
	err := mustFitInArena("dense page table", layout)
	if err != nil {
		return nil, err
	}

	t := &denseTable{size: layout.TableSize(0)}
	t.base = t.allocLeaf(0, t.size)

	return t, nil
}

func (t *denseTable) Type() vm.TableType {
	return vm.Dense
}

func (t *denseTable) LookupOrCreate(ix addressing.Indices) vm.EntryID {
	checkIndex(0, ix.Outer, t.size)

	return vm.EntryID(t.base + ix.Outer)
}

// twoLevelTable has an outer table whose slots own dense inner tables.
type twoLevelTable struct {
	arena
	outerSize  int
	secondSize int
	outer      int
}

func newTwoLevelTable(layout addressing.Layout) (*twoLevelTable, error) {
	err := mustFitInArena("two-level page table", layout)
	if err != nil {
		return nil, err
	}

	t := &twoLevelTable{
		outerSize:  layout.TableSize(0),
		secondSize: layout.TableSize(1),
	}
	t.outer = t.allocInner(0, t.outerSize)

	return t, nil
}

func (t *twoLevelTable) Type() vm.TableType {
	return vm.TwoLevel
}

func (t *twoLevelTable) LookupOrCreate(ix addressing.Indices) vm.EntryID {
	checkIndex(0, ix.Outer, t.outerSize)
	checkIndex(1, ix.Second, t.secondSize)

	leaf := t.childOf(t.outer+ix.Outer, func() int {
		return t.allocLeaf(1, t.secondSize)
	})

	return vm.EntryID(leaf + ix.Second)
}

// threeLevelTable has an outer table whose slots own second-level tables,
// whose slots in turn own dense leaf tables.
type threeLevelTable struct {
	arena
	outerSize  int
	secondSize int
	thirdSize  int
	outer      int
}

func newThreeLevelTable(layout addressing.Layout) (*threeLevelTable, error) {
	err := mustFitInArena("three-level page table", layout)
	if err != nil {
		return nil, err
	}

	t := &threeLevelTable{
		outerSize:  layout.TableSize(0),
		secondSize: layout.TableSize(1),
		thirdSize:  layout.TableSize(2),
	}
	t.outer = t.allocInner(0, t.outerSize)

	return t, nil
}

func (t *threeLevelTable) Type() vm.TableType {
	return vm.ThreeLevel
}

func (t *threeLevelTable) LookupOrCreate(ix addressing.Indices) vm.EntryID {
	checkIndex(0, ix.Outer, t.outerSize)
	checkIndex(1, ix.Second, t.secondSize)
	checkIndex(2, ix.Third, t.thirdSize)

	second := t.childOf(t.outer+ix.Outer, func() int {
		return t.allocInner(1, t.secondSize)
	})

	leaf := t.childOf(second+ix.Second, func() int {
		return t.allocLeaf(2, t.thirdSize)
	})

	return vm.EntryID(leaf + ix.Third)
}
