package tracing

import (
	"log"

	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// LogTracer logs one line per tick.
type LogTracer struct {
	logger *log.Logger
}

// NewLogTracer creates a tracer that writes to logger.
func NewLogTracer(logger *log.Logger) *LogTracer {
	return &LogTracer{logger: logger}
}

// Trace logs the snapshot.
func (t *LogTracer) Trace(s stopwatch.Snapshot) {
	t.logger.Printf(
		"cycle=%d state=%s next=%s enable=%t clear=%t overflow=%t "+
			"time=%02d:%02d",
		s.Cycle, s.State, s.NextState, s.Enable, s.Clear, s.Overflow,
		s.Minutes, s.Seconds)
}
