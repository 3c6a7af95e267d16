package driver

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/NasaHari/bitsilicon-dd-assignments/report"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/timing"
)

var (
	// ErrNegativeTickDelay is returned when the pacing delay is negative.
	ErrNegativeTickDelay = errors.New("driver: tick delay cannot be negative")

	// ErrNoDevice is returned when building a driver without a device.
	ErrNoDevice = errors.New("driver: a device is required")
)

// Builder can be used to build a Driver.
type Builder struct {
	tickDelay time.Duration
	freq      timing.Freq
	useFreq   bool
	pacer     timing.Pacer
	out       io.Writer
	styler    report.Styler
	logger    *log.Logger
	progress  ProgressTracker
}

// MakeBuilder creates a builder with no pacing that reports to stdout.
func MakeBuilder() Builder {
	return Builder{
		pacer:  timing.WallClockPacer{},
		out:    os.Stdout,
		styler: report.PlainStyler{},
		logger: log.New(io.Discard, "", 0),
	}
}

// WithTickDelay sets the wall-clock pause after every tick. Zero disables
// pacing.
func (b Builder) WithTickDelay(d time.Duration) Builder {
	b.tickDelay = d
	b.useFreq = false
	return b
}

// WithFreq paces ticks at the given clock frequency.
func (b Builder) WithFreq(f timing.Freq) Builder {
	b.freq = f
	b.useFreq = true
	return b
}

// WithPacer replaces the wall-clock pacer.
func (b Builder) WithPacer(p timing.Pacer) Builder {
	b.pacer = p
	return b
}

// WithOutput sets where status lines are written.
func (b Builder) WithOutput(w io.Writer) Builder {
	b.out = w
	return b
}

// WithStyler sets how status lines are rendered.
func (b Builder) WithStyler(s report.Styler) Builder {
	b.styler = s
	return b
}

// WithLogger sets the diagnostic logger.
func (b Builder) WithLogger(l *log.Logger) Builder {
	b.logger = l
	return b
}

// WithProgressTracker reports the ticks of scripted runs to p.
func (b Builder) WithProgressTracker(p ProgressTracker) Builder {
	b.progress = p
	return b
}

func (b Builder) resolveTickDelay() (time.Duration, error) {
	delay := b.tickDelay
	if b.useFreq {
		period, err := b.freq.Period()
		if err != nil {
			return 0, fmt.Errorf("driver: invalid clock frequency: %w", err)
		}

		delay = period
	}

	if delay < 0 {
		return 0, fmt.Errorf("%w: %s", ErrNegativeTickDelay, delay)
	}

	return delay, nil
}

// Build creates a driver that exclusively owns device.
func (b Builder) Build(device *stopwatch.Device) (*Driver, error) {
	if device == nil {
		return nil, ErrNoDevice
	}

	delay, err := b.resolveTickDelay()
	if err != nil {
		return nil, err
	}

	d := newDriver(device)
	d.tickDelay = delay
	d.pacer = b.pacer
	d.out = b.out
	d.styler = b.styler
	d.logger = b.logger
	d.progress = b.progress

	if d.pacer == nil {
		d.pacer = timing.NoPacer{}
	}

	if d.styler == nil {
		d.styler = report.PlainStyler{}
	}

	if d.out == nil {
		d.out = io.Discard
	}

	if d.logger == nil {
		d.logger = log.New(io.Discard, "", 0)
	}

	return d, nil
}
