package sim

import (
	"io"
	"log"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*log.Logger
}

// NewLogHookBase creates a LogHookBase that writes to w. Log lines carry no
// prefix and no timestamp so that the output can be diffed between runs.
func NewLogHookBase(w io.Writer) LogHookBase {
	return LogHookBase{
		Logger: log.New(w, "", 0),
	}
}
