package tracing

import (
	"sync"

	"github.com/sarchlab/pagesim/simulation"
)

// OutcomeCountTracer counts how many accesses resolved to each outcome.
type OutcomeCountTracer struct {
	lock     sync.Mutex
	outcomes []simulation.Outcome
	count    map[simulation.Outcome]uint64
	runs     int
}

// NewOutcomeCountTracer creates a new OutcomeCountTracer
func NewOutcomeCountTracer() *OutcomeCountTracer {
	return &OutcomeCountTracer{
		count: make(map[simulation.Outcome]uint64),
	}
}

// Outcomes returns the outcomes seen, in the order they were first seen.
func (t *OutcomeCountTracer) Outcomes() []simulation.Outcome {
	t.lock.Lock()
	defer t.lock.Unlock()

	return append([]simulation.Outcome(nil), t.outcomes...)
}

// Count returns the number of accesses that resolved to the outcome.
func (t *OutcomeCountTracer) Count(o simulation.Outcome) uint64 {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.count[o]
}

// Runs returns how many runs have ended.
func (t *OutcomeCountTracer) Runs() int {
	t.lock.Lock()
	defer t.lock.Unlock()

	return t.runs
}

// TraceAccess counts the access.
func (t *OutcomeCountTracer) TraceAccess(info simulation.AccessInfo) {
	t.lock.Lock()
	defer t.lock.Unlock()

	if _, ok := t.count[info.Outcome]; !ok {
		t.outcomes = append(t.outcomes, info.Outcome)
	}

	t.count[info.Outcome]++
}

// EndRun records the end of a run.
func (t *OutcomeCountTracer) EndRun(_ simulation.Stats) {
	t.lock.Lock()
	defer t.lock.Unlock()

	t.runs++
}
