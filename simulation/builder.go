package simulation

import (
	"fmt"

	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/vm"
	"github.com/sarchlab/pagesim/vm/addressing"
	"github.com/sarchlab/pagesim/vm/frame"
	"github.com/sarchlab/pagesim/vm/pagetable"
	"github.com/sarchlab/pagesim/vm/replacement"
)

// Config is the configuration an Engine is built from.
type Config struct {
	Algorithm  string
	PageSize   uint64
	MemorySize uint64
	TableType  vm.TableType
	Seed       int64
}

// Builder can be used to build an Engine.
type Builder struct {
	config Config
}

// MakeBuilder creates a new builder with 4 KB pages, a dense table and seed
// 1. The algorithm and the memory size have no default.
func MakeBuilder() Builder {
	return Builder{
		config: Config{
			PageSize:  4096,
			TableType: vm.Dense,
			Seed:      1,
		},
	}
}

// WithAlgorithm sets the replacement policy by name.
func (b Builder) WithAlgorithm(name string) Builder {
	b.config.Algorithm = name
	return b
}

// WithPageSize sets the page size in bytes.
func (b Builder) WithPageSize(n uint64) Builder {
	b.config.PageSize = n
	return b
}

// WithMemorySize sets the physical memory size in bytes.
func (b Builder) WithMemorySize(n uint64) Builder {
	b.config.MemorySize = n
	return b
}

// WithTableType sets the page table organization.
func (b Builder) WithTableType(t vm.TableType) Builder {
	b.config.TableType = t
	return b
}

// WithSeed sets the seed of the random policy.
func (b Builder) WithSeed(seed int64) Builder {
	b.config.Seed = seed
	return b
}

// WithConfig replaces all the settings at once.
func (b Builder) WithConfig(c Config) Builder {
	b.config = c
	return b
}

// Build validates the configuration and creates an Engine. Nothing is
// returned if any part cannot be built.
func (b Builder) Build(name string) (*Engine, error) {
	layout, err := addressing.NewLayout(b.config.PageSize, b.config.TableType)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	finder, err := replacement.New(b.config.Algorithm, b.config.Seed)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	frames, err := frame.NewPool(b.config.MemorySize, b.config.PageSize)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	t, err := b.buildTranslator(layout, frames, finder)
	if err != nil {
		return nil, fmt.Errorf("building %s: %w", name, err)
	}

	e := &Engine{
		HookableBase: sim.NewHookableBase(),
		name:         name,
		config:       b.config,
		layout:       layout,
		clock:        vm.NewClock(),
		frames:       frames,
		translator:   t,
	}

	return e, nil
}

func (b Builder) buildTranslator(
	layout addressing.Layout,
	frames *frame.Pool,
	finder replacement.VictimFinder,
) (translator, error) {
	if b.config.TableType == vm.Inverted {
		table, err := pagetable.NewInverted(frames.Len())
		if err != nil {
			return nil, err
		}

		return &invertedTranslator{
			layout: layout,
			table:  table,
			frames: frames,
			finder: finder,
		}, nil
	}

	table, err := pagetable.New(layout)
	if err != nil {
		return nil, err
	}

	return &hierarchicalTranslator{
		layout: layout,
		table:  table,
		frames: frames,
		finder: finder,
	}, nil
}
