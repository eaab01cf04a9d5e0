package simulation

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/trace"
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/addressing"
	"github.com/sarchlab/pagesim/vm/frame"
)

// A Source provides trace records. Next returns io.EOF after the last
// record.
type Source interface {
	Next() (trace.Record, error)
}

// Engine replays memory accesses against one page table organization, one
// frame pool and one replacement policy.
type Engine struct {
	*sim.HookableBase

	name       string
	config     Config
	layout     addressing.Layout
	clock      *vm.Clock
	frames     *frame.Pool
	translator translator
	stats      Stats
}

// Name returns the name of the engine.
func (e *Engine) Name() string {
	return e.name
}

// Config returns the configuration the engine was built with.
func (e *Engine) Config() Config {
	return e.config
}

// Layout returns how addresses are split.
func (e *Engine) Layout() addressing.Layout {
	return e.layout
}

// Frames exposes the frame pool for inspection.
func (e *Engine) Frames() *frame.Pool {
	return e.frames
}

// Stats returns the counters accumulated so far.
func (e *Engine) Stats() Stats {
	return e.stats
}

// Access resolves a single access.
func (e *Engine) Access(rec trace.Record) AccessInfo {
	now := e.clock.Tick()

	info := e.translator.translate(rec, now)
	e.stats.count(info)

	if e.NumHooks() > 0 {
		e.InvokeHook(sim.HookCtx{
			Domain: e,
			Pos:    HookPosAccess,
			Item:   rec,
			Detail: info,
		})
	}

	return info
}

// Run replays every record of the source. The statistics are only returned
// when the whole source has been consumed.
func (e *Engine) Run(ctx context.Context, src Source) (Stats, error) {
	for {
		if err := ctx.Err(); err != nil {
			return Stats{}, err
		}

		rec, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			return Stats{}, fmt.Errorf("reading trace: %w", err)
		}

		e.Access(rec)
	}

	e.InvokeHook(sim.HookCtx{
		Domain: e,
		Pos:    HookPosRunEnd,
		Detail: e.stats,
	})

	return e.stats, nil
}
