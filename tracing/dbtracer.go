package tracing

import (
	"sync"

	"github.com/sarchlab/pagesim/datarecording"
	"github.com/sarchlab/pagesim/sim"
	"github.com/sarchlab/pagesim/simulation"
	"github.com/tebeka/atexit"
)

// The table names written by DBTracer.
const (
	AccessTableName = "access"
	RunTableName    = "run"
)

// AccessEntry is one row of the access table.
type AccessEntry struct {
	RunID        string
	Moment       uint64
	Address      uint32
	Op           string
	Page         uint32
	Outcome      string
	Frame        int
	EvictedDirty bool
}

// RunEntry is one row of the run table.
type RunEntry struct {
	ID            string
	Engine        string
	Trace         string
	Algorithm     string
	TableType     string
	PageSize      uint64
	MemorySize    uint64
	Seed          int64
	Events        uint64
	TotalAccesses uint64
	PageFaults    uint64
	DirtyPages    uint64
}

// DBTracer stores the accesses and the summary of a run into a
// DataRecorder.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder

	run          RunEntry
	recordAccess bool
}

// NewDBTracer creates a new DBTracer. The tables are created the first time
// a tracer uses the recorder.
func NewDBTracer(
	dataRecorder datarecording.DataRecorder,
	engineName string,
	traceName string,
	config simulation.Config,
) *DBTracer {
	createTablesIfMissing(dataRecorder)

	t := &DBTracer{
		backend:      dataRecorder,
		recordAccess: true,
		run: RunEntry{
			ID:         sim.GetIDGenerator().Generate(),
			Engine:     engineName,
			Trace:      traceName,
			Algorithm:  config.Algorithm,
			TableType:  config.TableType.String(),
			PageSize:   config.PageSize,
			MemorySize: config.MemorySize,
			Seed:       config.Seed,
		},
	}

	atexit.Register(func() {
		t.Terminate()
	})

	return t
}

func createTablesIfMissing(r datarecording.DataRecorder) {
	existing := make(map[string]bool)
	for _, name := range r.ListTables() {
		existing[name] = true
	}

	if !existing[AccessTableName] {
		r.CreateTable(AccessTableName, AccessEntry{})
	}

	if !existing[RunTableName] {
		r.CreateTable(RunTableName, RunEntry{})
	}
}

// RunID returns the ID the rows of this tracer carry.
func (t *DBTracer) RunID() string {
	return t.run.ID
}

// SkipAccesses makes the tracer only write the run summary.
func (t *DBTracer) SkipAccesses() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.recordAccess = false
}

// TraceAccess writes one access row.
func (t *DBTracer) TraceAccess(info simulation.AccessInfo) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.recordAccess {
		return
	}

	t.backend.InsertData(AccessTableName, AccessEntry{
		RunID:        t.run.ID,
		Moment:       info.Moment,
		Address:      info.Record.Address,
		Op:           info.Record.Op.String(),
		Page:         info.Page,
		Outcome:      info.Outcome.String(),
		Frame:        info.Frame,
		EvictedDirty: info.EvictedDirty,
	})
}

// EndRun writes the run summary.
func (t *DBTracer) EndRun(stats simulation.Stats) {
	t.mu.Lock()
	defer t.mu.Unlock()

	run := t.run
	run.Events = stats.Events
	run.TotalAccesses = stats.TotalAccesses
	run.PageFaults = stats.PageFaults
	run.DirtyPages = stats.DirtyPages

	t.backend.InsertData(RunTableName, run)
	t.backend.Flush()
}

// Terminate flushes what has not been written yet.
func (t *DBTracer) Terminate() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.backend.Flush()
}
