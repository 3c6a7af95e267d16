// Package driver clocks a stopwatch device and applies stimulus to it.
//
// One call to Tick is one clock period: the rising edge commits the next
// values of every register, the tick counter advances, the falling edge
// settles without changing state, the optional pacing delay elapses, and the
// outputs are sampled and reported. Control lines are level sensitive, so a
// caller that wants a one-tick pulse sets the line, ticks once and clears it.
package driver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/NasaHari/bitsilicon-dd-assignments/instrumentation/hooking"
	"github.com/NasaHari/bitsilicon-dd-assignments/report"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/timing"
)

// ErrUnknownLine is returned for a control line the device does not have.
var ErrUnknownLine = errors.New("driver: unknown control line")

// HookPosSample fires once per tick after the outputs are sampled. The item
// is a stopwatch.Snapshot.
var HookPosSample = &hooking.HookPos{Name: "Sample"}

// ProgressTracker is told how many ticks a scripted run has completed.
type ProgressTracker interface {
	IncrementFinished(amount uint64)
}

// Driver owns a device and advances it one clock period at a time.
type Driver struct {
	*hooking.HookableBase

	device    *stopwatch.Device
	tickDelay time.Duration
	pacer     timing.Pacer
	out       io.Writer
	styler    report.Styler
	logger    *log.Logger
	progress  ProgressTracker

	stateLock  sync.RWMutex
	now        timing.VTimeInCycle
	lastSample stopwatch.Snapshot
	hasSample  bool

	isPaused     bool
	isPausedLock sync.Mutex
	pauseLock    sync.Mutex
}

func newDriver(device *stopwatch.Device) *Driver {
	return &Driver{
		HookableBase: hooking.NewHookableBase(),
		device:       device,
	}
}

// Device returns the driven device. Callers other than the driver must only
// read from it between ticks.
func (d *Driver) Device() *stopwatch.Device {
	return d.device
}

// TickDelay returns the pacing delay applied after each tick.
func (d *Driver) TickDelay() time.Duration {
	return d.tickDelay
}

// CurrentTime returns the number of ticks issued so far.
func (d *Driver) CurrentTime() timing.VTimeInCycle {
	d.stateLock.RLock()
	defer d.stateLock.RUnlock()

	return d.now
}

// LastSample returns the snapshot of the most recent tick. The second value
// is false before the first tick.
func (d *Driver) LastSample() (stopwatch.Snapshot, bool) {
	d.stateLock.RLock()
	defer d.stateLock.RUnlock()

	return d.lastSample, d.hasSample
}

// Inspect runs f while no tick can modify the device. f must not modify the
// device.
func (d *Driver) Inspect(f func(*stopwatch.Device)) {
	d.stateLock.RLock()
	defer d.stateLock.RUnlock()

	f(d.device)
}

// Set drives a control line to the given level.
func (d *Driver) Set(line Line, level bool) error {
	d.stateLock.Lock()
	defer d.stateLock.Unlock()

	switch line {
	case LineMasterReset:
		d.device.SetMasterReset(level)
	case LineStart:
		d.device.SetStart(level)
	case LineStop:
		d.device.SetStop(level)
	case LineLocalReset:
		d.device.SetLocalReset(level)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLine, string(line))
	}

	return nil
}

// Pulse asserts a line for exactly one tick.
func (d *Driver) Pulse(line Line) error {
	if err := d.Set(line, true); err != nil {
		return err
	}

	d.Tick()

	return d.Set(line, false)
}

// Tick advances the device by one clock period.
func (d *Driver) Tick() {
	d.pauseLock.Lock()
	defer d.pauseLock.Unlock()

	d.stateLock.Lock()
	edge := d.device.RisingEdge()
	d.now++
	d.device.FallingEdge()
	sample := edge.Snapshot(d.now)
	d.lastSample = sample
	d.hasSample = true
	d.stateLock.Unlock()

	if d.tickDelay > 0 {
		d.pacer.Pace(d.tickDelay)
	}

	d.reportSample(sample)
}

func (d *Driver) reportSample(sample stopwatch.Snapshot) {
	fmt.Fprintln(d.out, d.styler.Render(sample.Status, sample.Minutes, sample.Seconds))

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosSample,
		Item:   sample,
	})
}

// Wait issues n ticks one after another.
func (d *Driver) Wait(n int) {
	for i := 0; i < n; i++ {
		d.Tick()
	}
}

// Say writes a free-form message between status lines.
func (d *Driver) Say(msg string) {
	fmt.Fprintln(d.out, msg)
}

// Summary writes the total number of ticks issued.
func (d *Driver) Summary() {
	fmt.Fprintf(d.out, "Total clock cycles: %d\n", d.CurrentTime())
}

// Pause blocks further ticks until Continue is called.
func (d *Driver) Pause() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if d.isPaused {
		return
	}

	d.pauseLock.Lock()
	d.isPaused = true
	d.logger.Printf("paused at cycle %d", d.CurrentTime())
}

// Continue resumes ticking after a Pause.
func (d *Driver) Continue() {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	if !d.isPaused {
		return
	}

	d.pauseLock.Unlock()
	d.isPaused = false
	d.logger.Printf("continued at cycle %d", d.CurrentTime())
}

// IsPaused reports whether ticking is currently blocked by Pause.
func (d *Driver) IsPaused() bool {
	d.isPausedLock.Lock()
	defer d.isPausedLock.Unlock()

	return d.isPaused
}
