package simulation

import (
	"io"

	"github.com/sarchlab/pagesim/sim"
)

// AccessLogger prints one line per access.
type AccessLogger struct {
	sim.LogHookBase
}

// NewAccessLogger creates an AccessLogger that writes to w.
func NewAccessLogger(w io.Writer) *AccessLogger {
	return &AccessLogger{LogHookBase: sim.NewLogHookBase(w)}
}

// Func writes the log line.
func (l *AccessLogger) Func(ctx sim.HookCtx) {
	switch ctx.Pos {
	case HookPosAccess:
		info := ctx.Detail.(AccessInfo)
		l.Printf("%d %s page=%x frame=%d %s dirty=%t",
			info.Moment, info.Record, info.Page, info.Frame,
			info.Outcome, info.EvictedDirty)
	case HookPosRunEnd:
		s := ctx.Detail.(Stats)
		l.Printf("end events=%d accesses=%d faults=%d dirty=%d",
			s.Events, s.TotalAccesses, s.PageFaults, s.DirtyPages)
	}
}
