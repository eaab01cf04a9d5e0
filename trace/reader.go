// Package trace reads memory-access traces. A trace is a text file with one
// access per line: a hexadecimal address followed by R or W.
package trace

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sarchlab/pagesim/vm"
)

// A Record is one access of a trace.
type Record struct {
	Address uint32
	Op      vm.Op
}

func (r Record) String() string {
	return fmt.Sprintf("%08x %s", r.Address, r.Op)
}

// A ParseError reports a malformed trace line.
type ParseError struct {
	Line int
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("trace line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// A Reader produces the records of a trace one at a time.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader that consumes r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		scanner: bufio.NewScanner(r),
	}
}

// Next returns the next record, or io.EOF when the trace is exhausted.
func (r *Reader) Next() (Record, error) {
	for r.scanner.Scan() {
		r.line++

		text := strings.TrimSpace(r.scanner.Text())
		if text == "" {
			continue
		}

		rec, err := ParseLine(text)
		if err != nil {
			return Record{}, &ParseError{Line: r.line, Text: text, Err: err}
		}

		return rec, nil
	}

	err := r.scanner.Err()
	if err != nil {
		return Record{}, err
	}

	return Record{}, io.EOF
}

// ParseLine decodes one non-empty trace line.
func ParseLine(text string) (Record, error) {
	fields := strings.Fields(text)
	if len(fields) != 2 {
		return Record{}, fmt.Errorf("expecting 2 fields, got %d", len(fields))
	}

	hex := strings.TrimPrefix(strings.ToLower(fields[0]), "0x")

	addr, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Record{}, fmt.Errorf("bad address: %w", err)
	}

	op, err := vm.ParseOp(fields[1])
	if err != nil {
		return Record{}, err
	}

	return Record{Address: uint32(addr), Op: op}, nil
}

// A File is a trace read from disk. It counts the bytes consumed so that
// progress can be reported while the trace is replayed.
type File struct {
	*Reader

	file    *os.File
	counter *countingReader
	size    int64
}

// Open opens the named trace. A relative name is resolved against dir when
// dir is not empty.
func Open(dir, name string) (*File, error) {
	path := name
	if dir != "" && !filepath.IsAbs(name) {
		path = filepath.Join(dir, name)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("opening trace: %w", err)
	}

	counter := &countingReader{r: f}

	return &File{
		Reader:  NewReader(counter),
		file:    f,
		counter: counter,
		size:    info.Size(),
	}, nil
}

// Size returns the size of the trace file in bytes.
func (f *File) Size() int64 {
	return f.size
}

// BytesRead returns how many bytes of the file have been consumed.
func (f *File) BytesRead() int64 {
	return f.counter.n
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.file.Close()
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)

	return n, err
}
