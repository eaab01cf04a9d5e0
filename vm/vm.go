// Package vm defines the vocabulary shared by the virtual-memory components
// of the simulator: table organizations, access kinds, entry handles, the
// logical clock and the error taxonomy.
package vm

import (
	"fmt"
	"strings"
)

// AddressBits is the width of a virtual address.
const AddressBits = 32

// TableType selects the organization of the page table.
type TableType int

// The page table organizations supported by the simulator. The numeric
// values match the table-type argument of the command line.
const (
	Dense TableType = iota
	TwoLevel
	ThreeLevel
	Inverted
)

var tableTypeNames = map[TableType]string{
	Dense:      "dense",
	TwoLevel:   "two-level",
	ThreeLevel: "three-level",
	Inverted:   "inverted",
}

func (t TableType) String() string {
	name, ok := tableTypeNames[t]
	if !ok {
		return fmt.Sprintf("TableType(%d)", int(t))
	}

	return name
}

// Levels returns the number of tables consulted to translate one address.
func (t TableType) Levels() int {
	switch t {
	case TwoLevel:
		return 2
	case ThreeLevel:
		return 3
	default:
		return 1
	}
}

// IsHierarchical returns true for the organizations that are indexed by the
// address bits rather than scanned by page number.
func (t TableType) IsHierarchical() bool {
	return t == Dense || t == TwoLevel || t == ThreeLevel
}

// ParseTableType converts a table name or its numeric code into a
// TableType.
func ParseTableType(s string) (TableType, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.ReplaceAll(normalized, "_", "-")

	switch normalized {
	case "0", "dense":
		return Dense, nil
	case "1", "two-level", "twolevel", "2level":
		return TwoLevel, nil
	case "2", "three-level", "threelevel", "3level":
		return ThreeLevel, nil
	case "3", "inverted":
		return Inverted, nil
	}

	return 0, &ConfigurationError{
		Field:  "table type",
		Value:  s,
		Reason: "must be one of dense, two-level, three-level, inverted",
	}
}

// Op is the kind of a memory access.
type Op int

// The access kinds that appear in a trace.
const (
	Read Op = iota
	Write
)

func (o Op) String() string {
	if o == Write {
		return "W"
	}

	return "R"
}

// IsWrite returns true if the access modifies the page.
func (o Op) IsWrite() bool {
	return o == Write
}

// ParseOp converts the single-letter trace notation into an Op.
func ParseOp(s string) (Op, error) {
	switch s {
	case "R", "r":
		return Read, nil
	case "W", "w":
		return Write, nil
	}

	return Read, fmt.Errorf("unknown operation %q, expecting R or W", s)
}

// EntryID identifies a page-table entry by its position in the table arena.
type EntryID int

// NoEntry marks the absence of an entry.
const NoEntry EntryID = -1

// NoFrame marks the absence of a frame.
const NoFrame = -1
