package report

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Sink is a destination for formatted output.
type Sink interface {
	WriteString(s string) (int, error)
}

// flusher is implemented by buffered sinks.
type flusher interface {
	Flush() error
}

// Reporter writes the same text to every attached sink.
type Reporter struct {
	sinks []Sink
}

// NewReporter creates a reporter over the given sinks. Nil sinks are skipped.
func NewReporter(sinks ...Sink) *Reporter {
	r := &Reporter{}
	for _, s := range sinks {
		r.Attach(s)
	}
	return r
}

// Attach adds a sink.
func (r *Reporter) Attach(s Sink) {
	if s == nil {
		return
	}
	r.sinks = append(r.sinks, s)
}

// Len returns the number of attached sinks.
func (r *Reporter) Len() int {
	return len(r.sinks)
}

// Printf formats once and writes the result to all sinks. Every sink is
// attempted; the first error is returned.
func (r *Reporter) Printf(format string, args ...interface{}) error {
	if len(r.sinks) == 0 {
		return nil
	}

	text := fmt.Sprintf(format, args...)

	var firstErr error
	for _, s := range r.sinks {
		if _, err := s.WriteString(text); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Flush flushes every buffered sink.
func (r *Reporter) Flush() error {
	var firstErr error
	for _, s := range r.sinks {
		f, ok := s.(flusher)
		if !ok {
			continue
		}
		if err := f.Flush(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Console returns a buffered sink over w, normally os.Stdout.
func Console(w io.Writer) *bufio.Writer {
	return bufio.NewWriter(w)
}

// FileSink is an output file opened once at startup.
type FileSink struct {
	*bufio.Writer
	file *os.File
}

// OpenFile creates or truncates the file at path for writing.
func OpenFile(path string) (*FileSink, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return nil, err
	}
	return &FileSink{
		Writer: bufio.NewWriter(file),
		file:   file,
	}, nil
}

// Name returns the path the sink was opened with.
func (f *FileSink) Name() string {
	return f.file.Name()
}

// Close flushes pending output and closes the file.
func (f *FileSink) Close() error {
	flushErr := f.Flush()
	closeErr := f.file.Close()
	if flushErr != nil {
		return flushErr
	}
	return closeErr
}
