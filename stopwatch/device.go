package stopwatch

import (
	"github.com/NasaHari/bitsilicon-dd-assignments/instrumentation/hooking"
)

// HookPosBeforeEdge fires on a rising edge after the next values are
// evaluated and before they are committed. The item is the Edge.
var HookPosBeforeEdge = &hooking.HookPos{Name: "BeforeEdge"}

// HookPosAfterEdge fires on a rising edge once the next values are committed.
// The item is the Edge.
var HookPosAfterEdge = &hooking.HookPos{Name: "AfterEdge"}

// HookPosFallingEdge fires on a falling edge. The item is the Outputs.
var HookPosFallingEdge = &hooking.HookPos{Name: "FallingEdge"}

// Signals is the combinational view of one cycle.
type Signals struct {
	Enable    bool
	Clear     bool
	Overflow  bool
	NextState ControlState
}

// Outputs are the values on the output pins.
type Outputs struct {
	Minutes uint8
	Seconds uint8
	Status  StatusCode
}

// Edge records what happened on one rising edge.
type Edge struct {
	Inputs  Inputs
	Signals Signals

	// State is the state held during the cycle, before the edge.
	State ControlState

	// Outputs are sampled after the commit.
	Outputs Outputs
}

// Device is the stopwatch: the control machine and the seconds and minutes
// counters, updated in lockstep on the rising edge.
type Device struct {
	*hooking.HookableBase

	name    string
	spec    Spec
	inputs  Inputs
	fsm     FSM
	seconds BoundedCounter
	minutes BoundedCounter
}

func newDevice(name string, spec Spec) *Device {
	return &Device{
		HookableBase: hooking.NewHookableBase(),
		name:         name,
		spec:         spec,
		fsm:          FSM{State: Idle},
		seconds:      NewBoundedCounter(SecondsModulus),
		minutes:      NewBoundedCounter(MinutesModulus),
	}
}

// Name returns the name of the device.
func (d *Device) Name() string {
	return d.name
}

// Spec returns the configuration the device was built with.
func (d *Device) Spec() Spec {
	return d.spec
}

// Inputs returns the current levels of the control lines.
func (d *Device) Inputs() Inputs {
	return d.inputs
}

// SetInputs drives all control lines at once.
func (d *Device) SetInputs(in Inputs) {
	d.inputs = in
	d.applyAsyncReset()
}

// SetMasterReset drives the master reset line. active means the active-low
// line is pulled low.
func (d *Device) SetMasterReset(active bool) {
	d.inputs.MasterResetActive = active
	d.applyAsyncReset()
}

// SetStart drives the start line.
func (d *Device) SetStart(level bool) {
	d.inputs.Start = level
}

// SetStop drives the stop line.
func (d *Device) SetStop(level bool) {
	d.inputs.Stop = level
}

// SetLocalReset drives the local reset line.
func (d *Device) SetLocalReset(level bool) {
	d.inputs.LocalReset = level
}

func (d *Device) applyAsyncReset() {
	if !d.spec.AsyncMasterReset || !d.inputs.MasterResetActive {
		return
	}

	d.fsm.Commit(Idle)
	d.seconds.Commit(CounterStep{})
	d.minutes.Commit(CounterStep{})
}

// Eval returns the combinational signals for the current state and inputs
// without changing anything.
func (d *Device) Eval() Signals {
	s, _, _ := d.eval()
	return s
}

func (d *Device) eval() (Signals, CounterStep, CounterStep) {
	clr := d.inputs.clear()
	enable := d.fsm.Enable()

	sec := d.seconds.Eval(clr, enable)
	minute := d.minutes.Eval(clr, sec.Carry)

	signals := Signals{
		Enable:    enable,
		Clear:     clr,
		Overflow:  sec.Carry,
		NextState: d.fsm.Next(d.inputs),
	}

	return signals, sec, minute
}

// RisingEdge evaluates every element against the pre-edge state and then
// commits them together.
func (d *Device) RisingEdge() Edge {
	signals, sec, minute := d.eval()

	edge := Edge{
		Inputs:  d.inputs,
		Signals: signals,
		State:   d.fsm.State,
	}

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosBeforeEdge,
		Item:   edge,
	})

	d.fsm.Commit(signals.NextState)
	d.seconds.Commit(sec)
	d.minutes.Commit(minute)

	edge.Outputs = d.Outputs()

	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosAfterEdge,
		Item:   edge,
	})

	return edge
}

// FallingEdge settles the device. Nothing is committed on this phase.
func (d *Device) FallingEdge() {
	d.InvokeHook(hooking.HookCtx{
		Domain: d,
		Pos:    HookPosFallingEdge,
		Item:   d.Outputs(),
	})
}

// State returns the current control state.
func (d *Device) State() ControlState {
	return d.fsm.State
}

// Seconds returns the seconds counter.
func (d *Device) Seconds() uint8 {
	return uint8(d.seconds.Value)
}

// Minutes returns the minutes counter.
func (d *Device) Minutes() uint8 {
	return uint8(d.minutes.Value)
}

// Status returns the encoded control state.
func (d *Device) Status() StatusCode {
	return d.fsm.State.Code()
}

// Outputs samples the output pins.
func (d *Device) Outputs() Outputs {
	return Outputs{
		Minutes: d.Minutes(),
		Seconds: d.Seconds(),
		Status:  d.Status(),
	}
}
