// Package addressing splits virtual addresses into the per-level indices of a
// page table.
package addressing

import (
	"math/bits"

	"github.com/sarchlab/pagesim/vm"
)

// NoIndex marks an index that the active table organization does not use.
const NoIndex = -1

// Indices are the components of one virtual address.
type Indices struct {
	Outer  int
	Second int
	Third  int
	Offset uint32
}

// A Layout describes how many address bits each part of an address takes.
type Layout struct {
	Type       vm.TableType
	OffsetBits uint
	OuterBits  uint
	SecondBits uint
	ThirdBits  uint
}

// NewLayout computes the layout for the given page size (in bytes) and table
// organization.
func NewLayout(pageSize uint64, tableType vm.TableType) (Layout, error) {
	if pageSize == 0 || pageSize&(pageSize-1) != 0 {
		return Layout{}, &vm.ConfigurationError{
			Field:  "page size",
			Value:  pageSize,
			Reason: "must be a power of two",
		}
	}

	offsetBits := uint(bits.TrailingZeros64(pageSize))
	if offsetBits > vm.AddressBits {
		return Layout{}, &vm.ConfigurationError{
			Field:  "page size",
			Value:  pageSize,
			Reason: "must not exceed the 32-bit address space",
		}
	}

	l := Layout{
		Type:       tableType,
		OffsetBits: offsetBits,
	}

	remaining := vm.AddressBits - offsetBits

	switch tableType {
	case vm.Dense:
		l.OuterBits = remaining
	case vm.TwoLevel:
		l.SecondBits = remaining / 2
		l.OuterBits = remaining - l.SecondBits
	case vm.ThreeLevel:
		l.ThirdBits = remaining / 3
		l.SecondBits = remaining / 3
		l.OuterBits = remaining - l.SecondBits - l.ThirdBits
	case vm.Inverted:
	default:
		return Layout{}, &vm.ConfigurationError{
			Field:  "table type",
			Value:  tableType,
			Reason: "unknown table organization",
		}
	}

	return l, nil
}

// Levels returns the number of tables consulted per translation.
func (l Layout) Levels() int {
	return l.Type.Levels()
}

// TableSize returns the number of slots of a table at the given level, where
// level 0 is the outer table.
func (l Layout) TableSize(level int) int {
	switch level {
	case 0:
		return 1 << l.OuterBits
	case 1:
		return 1 << l.SecondBits
	case 2:
		return 1 << l.ThirdBits
	}

	vm.IntegrityViolation("table level %d does not exist", level)

	return 0
}

// PageNumber returns the virtual page number of an address.
func (l Layout) PageNumber(addr uint32) uint32 {
	return uint32(uint64(addr) >> l.OffsetBits)
}

// Decompose splits an address into table indices and the in-page offset.
func (l Layout) Decompose(addr uint32) Indices {
	ix := Indices{
		Outer:  NoIndex,
		Second: NoIndex,
		Third:  NoIndex,
		Offset: uint32(uint64(addr) & mask(l.OffsetBits)),
	}

	page := uint64(addr) >> l.OffsetBits

	switch l.Type {
	case vm.Dense:
		ix.Outer = int(page & mask(l.OuterBits))
	case vm.TwoLevel:
		ix.Second = int(page & mask(l.SecondBits))
		ix.Outer = int((page >> l.SecondBits) & mask(l.OuterBits))
	case vm.ThreeLevel:
		ix.Third = int(page & mask(l.ThirdBits))
		ix.Second = int((page >> l.ThirdBits) & mask(l.SecondBits))
		ix.Outer = int((page >> (l.ThirdBits + l.SecondBits)) &
			mask(l.OuterBits))
	}

	return ix
}

// Compose rebuilds an address from its indices. It is the inverse of
// Decompose for the hierarchical organizations.
func (l Layout) Compose(ix Indices) uint32 {
	var page uint64

	switch l.Type {
	case vm.Dense:
		page = uint64(ix.Outer)
	case vm.TwoLevel:
		page = uint64(ix.Outer)<<l.SecondBits | uint64(ix.Second)
	case vm.ThreeLevel:
		page = uint64(ix.Outer)<<(l.SecondBits+l.ThirdBits) |
			uint64(ix.Second)<<l.ThirdBits |
			uint64(ix.Third)
	default:
		vm.IntegrityViolation("cannot compose an address for a %s table",
			l.Type)
	}

	return uint32(page<<l.OffsetBits | uint64(ix.Offset))
}

func mask(width uint) uint64 {
	return (uint64(1) << width) - 1
}
