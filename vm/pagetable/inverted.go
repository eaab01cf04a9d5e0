package pagetable

import (
	"github.com/sarchlab/pagesim/vm"
)

// An InvertedEntry describes the page held by one physical frame.
type InvertedEntry struct {
	PageID      uint32
	Occupied    bool
	Modified    bool
	LastAccess  uint64
	AccessCount uint32
}

// Resolution is the outcome of looking a page up in an inverted table.
type Resolution int

// The possible outcomes of FindOrReserve.
const (
	// Found means the page is resident at the returned index.
	Found Resolution = iota

	// Reserved means the page is not resident and the returned index is the
	// first free slot.
	Reserved

	// Full means the page is not resident and no slot is free.
	Full
)

func (r Resolution) String() string {
	switch r {
	case Found:
		return "found"
	case Reserved:
		return "reserved"
	default:
		return "full"
	}
}

// Inverted is a page table with one entry per physical frame. Pages are
// located by scanning for their page number.
type Inverted struct {
	entries []InvertedEntry
}

// NewInverted creates an inverted table with one entry per frame.
func NewInverted(numFrames int) (*Inverted, error) {
	if numFrames <= 0 {
		return nil, &vm.ConfigurationError{
			Field:  "frame count",
			Value:  numFrames,
			Reason: "must be positive",
		}
	}

	if numFrames > MaxTableEntries {
		return nil, &vm.ResourceError{
			What:      "inverted page table",
			Requested: uint64(numFrames),
			Limit:     MaxTableEntries,
		}
	}

	return &Inverted{
		entries: make([]InvertedEntry, numFrames),
	}, nil
}

// Type returns vm.Inverted.
func (t *Inverted) Type() vm.TableType {
	return vm.Inverted
}

// FindOrReserve scans the table for the page. A resident page anywhere in the
// table wins over a free slot seen earlier in the scan.
func (t *Inverted) FindOrReserve(pageID uint32) (int, Resolution) {
	free := -1

	for i := range t.entries {
		e := &t.entries[i]
		if e.Occupied && e.PageID == pageID {
			return i, Found
		}

		if free == -1 && !e.Occupied {
			free = i
		}
	}

	if free != -1 {
		return free, Reserved
	}

	return -1, Full
}

// Touch records a hit on the entry.
func (t *Inverted) Touch(index int, isWrite bool, now uint64) {
	e := t.mustBeOccupied(index)

	e.LastAccess = now
	e.AccessCount++
	e.Modified = e.Modified || isWrite
}

// Install places a page in the slot and returns whether the page it replaced
// had been modified.
func (t *Inverted) Install(
	index int,
	pageID uint32,
	isWrite bool,
	now uint64,
) (wasDirty bool) {
	t.mustBeIndex(index)

	e := &t.entries[index]
	wasDirty = e.Occupied && e.Modified

	*e = InvertedEntry{
		PageID:      pageID,
		Occupied:    true,
		Modified:    isWrite,
		LastAccess:  now,
		AccessCount: 1,
	}

	return wasDirty
}

// Entry returns a copy of the entry at the index.
func (t *Inverted) Entry(index int) InvertedEntry {
	t.mustBeIndex(index)
	return t.entries[index]
}

// Len returns the number of entries, which is the number of frames.
func (t *Inverted) Len() int {
	return len(t.entries)
}

// LastAccess returns the moment the entry was last accessed.
func (t *Inverted) LastAccess(index int) uint64 {
	return t.entries[index].LastAccess
}

// AccessCount returns how many times the resident page has been accessed.
func (t *Inverted) AccessCount(index int) uint32 {
	return t.entries[index].AccessCount
}

func (t *Inverted) mustBeIndex(index int) {
	if index < 0 || index >= len(t.entries) {
		vm.IntegrityViolation("inverted entry %d out of range (size %d)",
			index, len(t.entries))
	}
}

func (t *Inverted) mustBeOccupied(index int) *InvertedEntry {
	t.mustBeIndex(index)

	e := &t.entries[index]
	if !e.Occupied {
		vm.IntegrityViolation("inverted entry %d holds no page", index)
	}

	return e
}
