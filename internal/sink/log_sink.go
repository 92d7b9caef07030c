// Package sink holds event consumers that print what a session delivers.
package sink

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/leandrodaf/drumkit/internal/drums"
	"github.com/leandrodaf/drumkit/sdk/contracts"
)

// LogSink writes one line per event to an io.Writer.
type LogSink struct {
	mu     sync.Mutex
	out    io.Writer
	logger contracts.Logger
	lines  uint64
}

var _ contracts.Sink = (*LogSink)(nil)

// NewLogSink creates a sink writing to out. Streaming errors are also sent to logger.
func NewLogSink(out io.Writer, logger contracts.Logger) *LogSink {
	return &LogSink{out: out, logger: logger}
}

// OnEvent writes ev as "<timestamp> <kind> ch=<1-16> ...".
func (s *LogSink) OnEvent(ev contracts.Event) {
	s.write(FormatEvent(ev))
}

// OnError writes an "error:" line and logs err.
func (s *LogSink) OnError(err error) {
	s.write("error: " + err.Error())
	s.logger.Error("MIDI stream failed", s.logger.Field().Error("error", err))
}

// Lines returns how many lines were written.
func (s *LogSink) Lines() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lines
}

func (s *LogSink) write(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := fmt.Fprintln(s.out, line); err != nil {
		s.logger.Warn("Failed to write event line", s.logger.Field().Error("error", err))
		return
	}
	s.lines++
}

// FormatEvent renders ev on one line. Channels are printed 1-based.
func FormatEvent(ev contracts.Event) string {
	ts := ev.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	stamp := ts.Format(time.RFC3339Nano)

	switch ev.Kind {
	case contracts.NoteOn, contracts.NoteOff:
		return fmt.Sprintf("%s %-13s ch=%-2d note=%-3d %-20s vel=%d",
			stamp, ev.Kind, ev.Channel+1, ev.Note(), "("+drums.Label(ev.Note())+")", ev.Velocity())
	case contracts.ControlChange:
		return fmt.Sprintf("%s %-13s ch=%-2d cc=%-3d value=%d",
			stamp, ev.Kind, ev.Channel+1, ev.Controller(), ev.Value())
	default:
		return fmt.Sprintf("%s %s", stamp, ev.String())
	}
}
