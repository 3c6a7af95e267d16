package stopwatch

import "github.com/NasaHari/bitsilicon-dd-assignments/timing"

// Snapshot is the per-tick diagnostic record: every input, output and
// internal signal of one clock period. Fields are flat scalars so a snapshot
// can be stored as a table row.
type Snapshot struct {
	Cycle uint64 `json:"cycle"`

	MasterResetActive bool `json:"master_reset_active"`
	Start             bool `json:"start"`
	Stop              bool `json:"stop"`
	LocalReset        bool `json:"local_reset"`

	Enable   bool `json:"enable"`
	Overflow bool `json:"overflow"`
	Clear    bool `json:"clear"`

	// State is the state held during the cycle; NextState is the state
	// committed by its rising edge.
	State     ControlState `json:"state"`
	NextState ControlState `json:"next_state"`

	Minutes uint8      `json:"minutes"`
	Seconds uint8      `json:"seconds"`
	Status  StatusCode `json:"status"`
}

// Snapshot flattens the edge into the record for the given cycle.
func (e Edge) Snapshot(cycle timing.VTimeInCycle) Snapshot {
	return Snapshot{
		Cycle:             uint64(cycle),
		MasterResetActive: e.Inputs.MasterResetActive,
		Start:             e.Inputs.Start,
		Stop:              e.Inputs.Stop,
		LocalReset:        e.Inputs.LocalReset,
		Enable:            e.Signals.Enable,
		Overflow:          e.Signals.Overflow,
		Clear:             e.Signals.Clear,
		State:             e.State,
		NextState:         e.Signals.NextState,
		Minutes:           e.Outputs.Minutes,
		Seconds:           e.Outputs.Seconds,
		Status:            e.Outputs.Status,
	}
}
