package vm

import (
	"fmt"
	"log"
)

// A ConfigurationError reports an invalid simulator setting. It is raised
// before any access is simulated.
type ConfigurationError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s %v: %s", e.Field, e.Value, e.Reason)
}

// A ResourceError reports that a structure of the simulator could not be
// allocated.
type ResourceError struct {
	What      string
	Requested uint64
	Limit     uint64
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("cannot allocate %s with %d entries, the limit is %d",
		e.What, e.Requested, e.Limit)
}

// IntegrityViolation aborts the process because an internal invariant does
// not hold. It is not a recoverable condition.
func IntegrityViolation(format string, args ...any) {
	log.Panicf("integrity violation: "+format, args...)
}
