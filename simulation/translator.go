package simulation

import (
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/addressing"
	"github.com/sarchlab/pagesim/vm/frame"
	"github.com/sarchlab/pagesim/vm/pagetable"
	"github.com/sarchlab/pagesim/vm/replacement"
)

// A translator resolves one access against a page table organization.
type translator interface {
	translate(rec trace.Record, now uint64) AccessInfo
}

// hierarchicalTranslator serves the dense, two-level and three-level tables.
// The frames own the back references to the entries.
type hierarchicalTranslator struct {
	layout addressing.Layout
	table  pagetable.PageTable
	frames *frame.Pool
	finder replacement.VictimFinder
}

func (t *hierarchicalTranslator) translate(
	rec trace.Record,
	now uint64,
) AccessInfo {
	info := AccessInfo{
		Moment: now,
		Record: rec,
		Page:   t.layout.PageNumber(rec.Address),
		Levels: t.layout.Levels(),
	}
	isWrite := rec.Op.IsWrite()

	id := t.table.LookupOrCreate(t.layout.Decompose(rec.Address))
	entry := t.table.Entry(id)

	if entry.Valid {
		info.Outcome = Hit
		info.Frame = int(entry.Frame)
		t.frames.Touch(info.Frame, isWrite, now)

		return info
	}

	if index, ok := t.frames.FindFree(); ok {
		info.Outcome = FaultFreeFrame
		info.Frame = index
		t.frames.AssignFree(index, t.table, id, isWrite, now)

		return info
	}

	victim := t.finder.FindVictim(t.frames)
	info.Outcome = FaultEviction
	info.Frame = victim
	info.EvictedDirty = t.frames.EvictAndAssign(
		victim, t.table, id, isWrite, now)

	return info
}

// invertedTranslator serves the inverted table. Slot i of the table and
// frame i describe the same physical frame, so both are updated together.
type invertedTranslator struct {
	layout addressing.Layout
	table  *pagetable.Inverted
	frames *frame.Pool
	finder replacement.VictimFinder
}

func (t *invertedTranslator) translate(
	rec trace.Record,
	now uint64,
) AccessInfo {
	page := t.layout.PageNumber(rec.Address)
	info := AccessInfo{
		Moment: now,
		Record: rec,
		Page:   page,
		Levels: t.layout.Levels(),
	}
	isWrite := rec.Op.IsWrite()

	index, res := t.table.FindOrReserve(page)

	switch res {
	case pagetable.Found:
		info.Outcome = Hit
		info.Frame = index
		t.table.Touch(index, isWrite, now)
		t.frames.Touch(index, isWrite, now)
	case pagetable.Reserved:
		info.Outcome = FaultFreeFrame
		info.Frame = index
		t.table.Install(index, page, isWrite, now)
		t.frames.AssignFree(index, nil, vm.NoEntry, isWrite, now)
	default:
		victim := t.finder.FindVictim(t.table)
		info.Outcome = FaultEviction
		info.Frame = victim
		info.EvictedDirty = t.table.Install(victim, page, isWrite, now)
		t.frames.EvictAndAssign(victim, nil, vm.NoEntry, isWrite, now)
	}

	return info
}
