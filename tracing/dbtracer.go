package tracing

import (
	"sync"

	"github.com/NasaHari/bitsilicon-dd-assignments/datarecording"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// TableTicks is the table DBTracer writes snapshots into.
const TableTicks = "ticks"

// DBTracer stores every snapshot as a row of the ticks table.
type DBTracer struct {
	mu      sync.Mutex
	backend datarecording.DataRecorder
	err     error
	count   uint64
}

// NewDBTracer creates the ticks table in the recorder.
func NewDBTracer(recorder datarecording.DataRecorder) (*DBTracer, error) {
	if err := recorder.CreateTable(TableTicks, stopwatch.Snapshot{}); err != nil {
		return nil, err
	}

	return &DBTracer{backend: recorder}, nil
}

// Trace buffers one row. The first insert error is kept and reported by
// Terminate; later snapshots are dropped.
func (t *DBTracer) Trace(s stopwatch.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.err != nil {
		return
	}

	t.err = t.backend.InsertData(TableTicks, s)
	if t.err == nil {
		t.count++
	}
}

// Count returns the number of rows recorded.
func (t *DBTracer) Count() uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.count
}

// Terminate flushes the recorder.
func (t *DBTracer) Terminate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.err != nil {
		return t.err
	}

	return t.backend.Flush()
}
