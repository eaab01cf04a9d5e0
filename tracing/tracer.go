// Package tracing collects per-access and per-run data from simulation
// engines.
package tracing

import (
	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/simulation"
)

// A Tracer can collect access traces
type Tracer interface {
	TraceAccess(info simulation.AccessInfo)
	EndRun(stats simulation.Stats)
}

// NamedHookable is a hookable domain that has a name.
type NamedHookable interface {
	sim.Hookable
	Name() string
}
