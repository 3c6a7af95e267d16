package tracing

import (
	"encoding/csv"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/structs"

	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// CSVTracer writes one CSV row per snapshot. The header holds the snapshot
// field names and is written before the first row.
type CSVTracer struct {
	mu            sync.Mutex
	w             *csv.Writer
	headerWritten bool
}

// NewCSVTracer creates a tracer writing to w.
func NewCSVTracer(w io.Writer) *CSVTracer {
	return &CSVTracer{w: csv.NewWriter(w)}
}

// Trace buffers a row. Write errors surface from Terminate.
func (t *CSVTracer) Trace(s stopwatch.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.headerWritten {
		_ = t.w.Write(structs.Names(s))
		t.headerWritten = true
	}

	values := structs.Values(s)
	record := make([]string, len(values))

	for i, v := range values {
		switch v := v.(type) {
		case bool:
			record[i] = boolBit(v)
		default:
			record[i] = fmt.Sprint(v)
		}
	}

	_ = t.w.Write(record)
}

// Terminate flushes buffered rows.
func (t *CSVTracer) Terminate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.w.Flush()

	return t.w.Error()
}

func boolBit(b bool) string {
	if b {
		return "1"
	}

	return "0"
}
