package tracing

import (
	"fmt"
	"os"

	"github.com/rs/xid"
	"github.com/sarchlab/pagesim/simulation"
	"github.com/tebeka/atexit"
)

// CSVTraceWriter is a tracer that stores the accesses into a CSV file.
type CSVTraceWriter struct {
	path string
	file *os.File

	accesses   []simulation.AccessInfo
	bufferSize int
}

// NewCSVTraceWriter creates a new CSVTraceWriter.
func NewCSVTraceWriter(path string) *CSVTraceWriter {
	return &CSVTraceWriter{
		path:       path,
		bufferSize: 1000,
	}
}

// Path returns the name of the file written, once Init has been called.
func (t *CSVTraceWriter) Path() string {
	return t.path + ".csv"
}

// Init creates the csv file. An existing file is never overwritten.
func (t *CSVTraceWriter) Init() error {
	if t.path == "" {
		t.path = "pagesim_trace_" + xid.New().String()
	}

	filename := t.Path()
	_, err := os.Stat(filename)
	if err == nil {
		return fmt.Errorf("file %s already exists", filename)
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	t.file = file

	fmt.Fprintf(file, "Moment, Address, Op, Page, Outcome, Frame, EvictedDirty\n")

	atexit.Register(func() {
		t.Close()
	})

	return nil
}

// TraceAccess buffers one access.
func (t *CSVTraceWriter) TraceAccess(info simulation.AccessInfo) {
	t.accesses = append(t.accesses, info)
	if len(t.accesses) >= t.bufferSize {
		t.Flush()
	}
}

// EndRun writes the buffered accesses.
func (t *CSVTraceWriter) EndRun(_ simulation.Stats) {
	t.Flush()
}

// Flush writes the buffered accesses to the CSV file.
func (t *CSVTraceWriter) Flush() {
	if t.file == nil {
		return
	}

	for _, a := range t.accesses {
		fmt.Fprintf(t.file, "%d, %08x, %s, %x, %s, %d, %t\n",
			a.Moment,
			a.Record.Address,
			a.Record.Op,
			a.Page,
			a.Outcome,
			a.Frame,
			a.EvictedDirty,
		)
	}

	t.accesses = nil
}

// Close flushes and closes the file. It is safe to call more than once.
func (t *CSVTraceWriter) Close() error {
	if t.file == nil {
		return nil
	}

	t.Flush()

	err := t.file.Close()
	t.file = nil

	return err
}
