// Package tracing collects per-tick records of a stopwatch simulation.
//
// Tracers attach to a hookable that reports stopwatch.Snapshot items, such as
// the driver at its sample position, and receive one snapshot per tick.
package tracing

import (
	"fmt"
	"reflect"

	"github.com/NasaHari/bitsilicon-dd-assignments/instrumentation/hooking"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// Tracer receives the snapshot of every tick.
type Tracer interface {
	Trace(s stopwatch.Snapshot)
}

// A Terminator holds buffered output that must be written out when the
// simulation ends.
type Terminator interface {
	Terminate() error
}

// CollectTrace lets the tracer collect snapshots from a domain. Attaching the
// same tracer twice panics.
func CollectTrace(domain hooking.Hookable, tracer Tracer) {
	for _, hook := range domain.Hooks() {
		hook, ok := hook.(*traceHook)
		if ok && hook.t == tracer {
			panic(fmt.Sprintf(
				"domain already has tracer %s", reflect.TypeOf(tracer)))
		}
	}

	domain.AcceptHook(&traceHook{t: tracer})
}

// A traceHook forwards snapshots to a tracer and ignores other items.
type traceHook struct {
	t Tracer
}

func (h *traceHook) Func(ctx hooking.HookCtx) {
	if s, ok := ctx.Item.(stopwatch.Snapshot); ok {
		h.t.Trace(s)
	}
}
