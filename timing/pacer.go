package timing

import "time"

// A Pacer slows the simulation down to a human-observable speed. Pacing only
// changes how fast ticks are observed, never what they compute.
type Pacer interface {
	Pace(d time.Duration)
}

// WallClockPacer blocks the caller for the requested duration.
type WallClockPacer struct{}

// Pace sleeps for d.
func (WallClockPacer) Pace(d time.Duration) {
	if d <= 0 {
		return
	}

	time.Sleep(d)
}

// NoPacer never blocks.
type NoPacer struct{}

// Pace returns immediately.
func (NoPacer) Pace(time.Duration) {}
