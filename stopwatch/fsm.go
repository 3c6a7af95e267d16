package stopwatch

// Inputs are the control lines sampled on every rising edge.
type Inputs struct {
	// MasterResetActive is true while the active-low master reset line is
	// held low.
	MasterResetActive bool
	Start             bool
	Stop              bool
	LocalReset        bool
}

// clear reports whether either reset line forces the counters to zero.
func (in Inputs) clear() bool {
	return in.MasterResetActive || in.LocalReset
}

// FSM is the control machine deciding whether the counters run.
type FSM struct {
	State ControlState
}

// Enable is true iff the machine is Running. It reflects the state held
// during the current cycle.
func (f FSM) Enable() bool {
	return f.State == Running
}

// Next returns the state the machine moves to on the next rising edge.
//
// Priority, highest first: master reset, local reset, then start/stop. Start
// only matters in Idle and Paused and stop only matters in Running, so a tick
// with both asserted resumes a stopped machine and pauses a running one.
func (f FSM) Next(in Inputs) ControlState {
	if in.clear() {
		return Idle
	}

	switch f.State {
	case Idle, Paused:
		if in.Start {
			return Running
		}
	case Running:
		if in.Stop {
			return Paused
		}
	}

	return f.State
}

// Commit stores the next state.
func (f *FSM) Commit(next ControlState) {
	f.State = next
}
