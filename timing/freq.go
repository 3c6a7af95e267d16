// Package timing defines how simulated cycles relate to wall-clock time.
package timing

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrZeroFrequency is returned when a clock is configured with 0 Hz.
	ErrZeroFrequency = errors.New("timing: frequency cannot be 0")

	// ErrNegativeFrequency is returned when a clock is configured with a
	// negative frequency.
	ErrNegativeFrequency = errors.New("timing: frequency cannot be negative")
)

// VTimeInCycle counts clock cycles since power-up.
type VTimeInCycle uint64

// TimeTeller exposes the current simulation cycle.
type TimeTeller interface {
	CurrentTime() VTimeInCycle
}

// Freq defines the type of frequency
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
	GHz Freq = 1e9
)

// Period returns the wall-clock time between two consecutive ticks.
func (f Freq) Period() (time.Duration, error) {
	if f == 0 {
		return 0, ErrZeroFrequency
	}

	if f < 0 {
		return 0, fmt.Errorf("%w: %g Hz", ErrNegativeFrequency, float64(f))
	}

	return time.Duration(float64(time.Second) / float64(f)), nil
}

// Cycles converts a wall-clock duration to the number of whole cycles that fit
// in it.
func (f Freq) Cycles(d time.Duration) VTimeInCycle {
	if f <= 0 || d <= 0 {
		return 0
	}

	return VTimeInCycle(d.Seconds() * float64(f))
}

func (f Freq) String() string {
	switch {
	case f >= GHz:
		return fmt.Sprintf("%gGHz", float64(f/GHz))
	case f >= MHz:
		return fmt.Sprintf("%gMHz", float64(f/MHz))
	case f >= KHz:
		return fmt.Sprintf("%gKHz", float64(f/KHz))
	default:
		return fmt.Sprintf("%gHz", float64(f))
	}
}
