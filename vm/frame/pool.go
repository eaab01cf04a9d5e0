// Package frame models the physical frames of the simulated memory.
package frame

import (
	"github.com/sarchlab/pagesim/vm"
)

// MaxFrames is the largest frame pool the simulator agrees to allocate.
const MaxFrames = 1 << 26

// A Frame is a slot of physical memory that can hold one page.
type Frame struct {
	Allocated   bool
	Modified    bool
	LastAccess  uint64
	AccessCount uint32
	Owner       vm.EntryID
}

// An Owner is the page-table side of the frame-entry relation. The pool calls
// it so that an entry and its frame always point at each other.
type Owner interface {
	Map(id vm.EntryID, frame int)
	Unmap(id vm.EntryID)
}

// A Pool is the fixed set of physical frames of a run. Frames are never
// freed; once allocated they are only reassigned.
type Pool struct {
	frames []Frame
}

// NewPool creates memorySize / pageSize frames. A remainder smaller than one
// page is ignored.
func NewPool(memorySize, pageSize uint64) (*Pool, error) {
	if pageSize == 0 {
		return nil, &vm.ConfigurationError{
			Field:  "page size",
			Value:  pageSize,
			Reason: "must be positive",
		}
	}

	n := memorySize / pageSize
	if n == 0 {
		return nil, &vm.ConfigurationError{
			Field:  "memory size",
			Value:  memorySize,
			Reason: "must hold at least one page",
		}
	}

	if n > MaxFrames {
		return nil, &vm.ResourceError{
			What:      "frame pool",
			Requested: n,
			Limit:     MaxFrames,
		}
	}

	p := &Pool{frames: make([]Frame, n)}
	for i := range p.frames {
		p.frames[i].Owner = vm.NoEntry
	}

	return p, nil
}

// Len returns the number of frames.
func (p *Pool) Len() int {
	return len(p.frames)
}

// LastAccess returns the moment the frame was last accessed.
func (p *Pool) LastAccess(index int) uint64 {
	return p.frames[index].LastAccess
}

// AccessCount returns how many times the resident page has been accessed.
func (p *Pool) AccessCount(index int) uint32 {
	return p.frames[index].AccessCount
}

// Frame returns a copy of a frame.
func (p *Pool) Frame(index int) Frame {
	p.mustBeIndex(index)
	return p.frames[index]
}

// NumAllocated returns the number of frames that hold a page.
func (p *Pool) NumAllocated() int {
	n := 0
	for i := range p.frames {
		if p.frames[i].Allocated {
			n++
		}
	}

	return n
}

// FindFree returns the first frame that has never been allocated.
func (p *Pool) FindFree() (int, bool) {
	for i := range p.frames {
		if !p.frames[i].Allocated {
			return i, true
		}
	}

	return -1, false
}

// AssignFree places the page of an entry into a free frame. The owner may be
// nil when the frame only mirrors an inverted table slot.
func (p *Pool) AssignFree(
	index int,
	owner Owner,
	id vm.EntryID,
	isWrite bool,
	now uint64,
) {
	p.mustBeIndex(index)

	if p.frames[index].Allocated {
		vm.IntegrityViolation("frame %d is not free", index)
	}

	p.assign(index, owner, id, isWrite, now)
}

// EvictAndAssign replaces the page held by a frame with the page of another
// entry. It returns whether the evicted page had been modified.
func (p *Pool) EvictAndAssign(
	index int,
	owner Owner,
	id vm.EntryID,
	isWrite bool,
	now uint64,
) (wasDirty bool) {
	p.mustBeIndex(index)

	f := &p.frames[index]
	if !f.Allocated {
		vm.IntegrityViolation("frame %d holds no page to evict", index)
	}

	wasDirty = f.Modified

	if owner != nil && f.Owner != vm.NoEntry {
		owner.Unmap(f.Owner)
	}

	p.assign(index, owner, id, isWrite, now)

	return wasDirty
}

func (p *Pool) assign(
	index int,
	owner Owner,
	id vm.EntryID,
	isWrite bool,
	now uint64,
) {
	f := &p.frames[index]
	f.Allocated = true
	f.Modified = isWrite
	f.LastAccess = now
	f.AccessCount = 1
	f.Owner = vm.NoEntry

	if owner != nil {
		f.Owner = id
		owner.Map(id, index)
	}
}

// Touch records a hit on a frame. A write marks the frame dirty; a read never
// clears the flag.
func (p *Pool) Touch(index int, isWrite bool, now uint64) {
	p.mustBeIndex(index)

	f := &p.frames[index]
	if !f.Allocated {
		vm.IntegrityViolation("frame %d is touched but holds no page", index)
	}

	f.LastAccess = now
	f.AccessCount++
	f.Modified = f.Modified || isWrite
}

func (p *Pool) mustBeIndex(index int) {
	if index < 0 || index >= len(p.frames) {
		vm.IntegrityViolation("frame %d out of range (size %d)",
			index, len(p.frames))
	}
}
