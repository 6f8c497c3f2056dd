package notelog

import (
	"io"
	"strings"
	"sync"

	"github.com/justyntemme/notelog/pkg/framework/debug"
)

// Sink receives formatted log lines.
type Sink interface {
	LogMessage(line string)
}

// FuncSink adapts a function to Sink.
type FuncSink func(line string)

// LogMessage calls f(line).
func (f FuncSink) LogMessage(line string) {
	f(line)
}

// Discard drops every line.
var Discard Sink = FuncSink(func(string) {})

// WriterSink writes each line followed by a newline to an io.Writer.
// Write errors are dropped; a logger never fails its caller.
type WriterSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriterSink wraps w.
func NewWriterSink(w io.Writer) *WriterSink {
	return &WriterSink{w: w}
}

// LogMessage writes line to the underlying writer.
func (s *WriterSink) LogMessage(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !strings.HasSuffix(line, "\n") {
		line += "\n"
	}
	_, _ = io.WriteString(s.w, line)
}

// LoggerSink forwards lines to a framework logger at a fixed level.
type LoggerSink struct {
	Logger *debug.Logger
	Level  debug.LogLevel
}

// LogMessage logs line at the configured level.
func (s LoggerSink) LogMessage(line string) {
	s.Logger.Log(s.Level, line)
}

// MultiSink fans a line out to several sinks in order.
type MultiSink []Sink

// LogMessage forwards line to every sink.
func (m MultiSink) LogMessage(line string) {
	for _, s := range m {
		s.LogMessage(line)
	}
}
