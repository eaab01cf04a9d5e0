package simulation

import (
	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/trace"
)

// HookPosAccess is triggered after every access has been resolved. The item
// is the trace.Record and the detail is an AccessInfo.
var HookPosAccess = &sim.HookPos{Name: "Access"}

// HookPosRunEnd is triggered once the whole trace has been replayed. The
// detail is the final Stats.
var HookPosRunEnd = &sim.HookPos{Name: "RunEnd"}

// Outcome is the state an access resolves to.
type Outcome int

// The outcomes of an access.
const (
	// Hit means the page was resident.
	Hit Outcome = iota

	// FaultFreeFrame means the page was loaded into a never-used frame.
	FaultFreeFrame

	// FaultEviction means the page replaced a resident page.
	FaultEviction
)

func (o Outcome) String() string {
	switch o {
	case Hit:
		return "hit"
	case FaultFreeFrame:
		return "fault-free-frame"
	case FaultEviction:
		return "fault-eviction"
	default:
		return "unknown"
	}
}

// IsFault returns true when the page was not resident.
func (o Outcome) IsFault() bool {
	return o != Hit
}

// AccessInfo describes how one access was resolved.
type AccessInfo struct {
	Moment       uint64
	Record       trace.Record
	Page         uint32
	Outcome      Outcome
	Frame        int
	EvictedDirty bool
	Levels       int
}

// Stats are the counters of a run.
type Stats struct {
	// Events is the number of trace records replayed.
	Events uint64

	// TotalAccesses counts the memory accesses, one per table level
	// consulted by each translation.
	TotalAccesses uint64

	PageFaults uint64
	DirtyPages uint64
}

func (s *Stats) count(info AccessInfo) {
	s.Events++
	s.TotalAccesses += uint64(info.Levels)

	if info.Outcome.IsFault() {
		s.PageFaults++
	}

	if info.EvictedDirty {
		s.DirtyPages++
	}
}
