package tracing

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

type vcdVar struct {
	id    string
	name  string
	width int
}

// The signal set of the hardware stopwatch waveform.
var vcdVars = []vcdVar{
	{"!", "clk", 1},
	{"\"", "rst_n", 1},
	{"#", "start", 1},
	{"$", "stop", 1},
	{"%", "reset", 1},
	{"&", "minutes", 8},
	{"'", "seconds", 6},
	{"(", "status", 2},
	{")", "enable", 1},
	{"*", "sec_overflow", 1},
	{"+", "state", 2},
	{",", "next_state", 2},
}

// VCDTracer writes a Value Change Dump waveform. Tick n occupies time steps
// 2n-1 and 2n: the rising edge carries the values sampled in that tick and
// the falling edge only lowers clk. rst_n is the active-low master reset.
type VCDTracer struct {
	mu        sync.Mutex
	w         *bufio.Writer
	timescale string
	module    string
	started   bool
	last      map[string]string
}

// NewVCDTracer creates a tracer writing to w, with the given timescale such
// as "1ns".
func NewVCDTracer(w io.Writer, timescale string) *VCDTracer {
	return &VCDTracer{
		w:         bufio.NewWriter(w),
		timescale: timescale,
		module:    "stopwatch_top",
		last:      make(map[string]string),
	}
}

func (t *VCDTracer) writeHeader() {
	fmt.Fprintf(t.w, "$version swsim $end\n")
	fmt.Fprintf(t.w, "$timescale %s $end\n", t.timescale)
	fmt.Fprintf(t.w, "$scope module %s $end\n", t.module)

	for _, v := range vcdVars {
		if v.width == 1 {
			fmt.Fprintf(t.w, "$var wire 1 %s %s $end\n", v.id, v.name)
			continue
		}

		fmt.Fprintf(t.w, "$var wire %d %s %s [%d:0] $end\n",
			v.width, v.id, v.name, v.width-1)
	}

	fmt.Fprintf(t.w, "$upscope $end\n$enddefinitions $end\n")
	fmt.Fprintf(t.w, "#0\n$dumpvars\n")

	for _, v := range vcdVars {
		value := "x"
		if v.name == "clk" {
			value = "0"
		}

		t.emit(v, value)
	}

	fmt.Fprintf(t.w, "$end\n")
}

func (t *VCDTracer) emit(v vcdVar, value string) {
	if v.width == 1 {
		fmt.Fprintf(t.w, "%s%s\n", value, v.id)
	} else {
		fmt.Fprintf(t.w, "b%s %s\n", value, v.id)
	}

	t.last[v.id] = value
}

func (t *VCDTracer) change(v vcdVar, value string) {
	if t.last[v.id] == value {
		return
	}

	t.emit(v, value)
}

// Trace appends the two time steps of one tick.
func (t *VCDTracer) Trace(s stopwatch.Snapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.started {
		t.writeHeader()
		t.started = true
	}

	values := map[string]string{
		"clk":          "1",
		"rst_n":        boolBit(!s.MasterResetActive),
		"start":        boolBit(s.Start),
		"stop":         boolBit(s.Stop),
		"reset":        boolBit(s.LocalReset),
		"minutes":      strconv.FormatUint(uint64(s.Minutes), 2),
		"seconds":      strconv.FormatUint(uint64(s.Seconds), 2),
		"status":       strconv.FormatUint(uint64(s.Status), 2),
		"enable":       boolBit(s.Enable),
		"sec_overflow": boolBit(s.Overflow),
		"state":        strconv.FormatUint(uint64(s.State), 2),
		"next_state":   strconv.FormatUint(uint64(s.NextState), 2),
	}

	fmt.Fprintf(t.w, "#%d\n", 2*s.Cycle-1)

	for _, v := range vcdVars {
		t.change(v, values[v.name])
	}

	fmt.Fprintf(t.w, "#%d\n", 2*s.Cycle)
	t.change(vcdVars[0], "0")
}

// Terminate flushes the waveform.
func (t *VCDTracer) Terminate() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.w.Flush()
}
