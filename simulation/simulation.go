// Package simulation assembles a stopwatch, its driver and the optional
// recorders and monitor into one runnable unit.
package simulation

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/NasaHari/bitsilicon-dd-assignments/datarecording"
	"github.com/NasaHari/bitsilicon-dd-assignments/driver"
	"github.com/NasaHari/bitsilicon-dd-assignments/monitoring"
	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
	"github.com/NasaHari/bitsilicon-dd-assignments/tracing"
)

// A Simulation provides the service requires to define a simulation.
type Simulation struct {
	id string

	device       *stopwatch.Device
	driver       *driver.Driver
	dataRecorder datarecording.DataRecorder
	monitor      *monitoring.Monitor

	terminators []tracing.Terminator
	closers     []io.Closer

	barLock sync.Mutex
	bar     *monitoring.ProgressBar

	terminated bool
}

// ID returns the unique id of the simulation.
func (s *Simulation) ID() string {
	return s.id
}

// GetDevice returns the simulated stopwatch.
func (s *Simulation) GetDevice() *stopwatch.Device {
	return s.device
}

// GetDriver returns the driver that clocks the device.
func (s *Simulation) GetDriver() *driver.Driver {
	return s.driver
}

// GetDataRecorder returns the data recorder, or nil if ticks are not
// recorded.
func (s *Simulation) GetDataRecorder() datarecording.DataRecorder {
	return s.dataRecorder
}

// GetMonitor returns the monitor, or nil if monitoring is off.
func (s *Simulation) GetMonitor() *monitoring.Monitor {
	return s.monitor
}

// RegisterTracer attaches a tracer to the driver. Tracers that buffer output
// are terminated by Terminate.
func (s *Simulation) RegisterTracer(t tracing.Tracer) {
	tracing.CollectTrace(s.driver, t)

	if term, ok := t.(tracing.Terminator); ok {
		s.terminators = append(s.terminators, term)
	}
}

// Run executes a script. With monitoring on, its progress is shown as a
// progress bar.
func (s *Simulation) Run(script driver.Script) error {
	if s.monitor != nil {
		bar := s.monitor.CreateProgressBar(script.Name, script.TotalCycles())
		s.setBar(bar)

		defer func() {
			s.setBar(nil)
			s.monitor.CompleteProgressBar(bar)
		}()
	}

	return s.driver.Run(script)
}

func (s *Simulation) setBar(bar *monitoring.ProgressBar) {
	s.barLock.Lock()
	defer s.barLock.Unlock()

	s.bar = bar
}

// IncrementFinished forwards the progress of the running script to its bar.
func (s *Simulation) IncrementFinished(amount uint64) {
	s.barLock.Lock()
	defer s.barLock.Unlock()

	if s.bar != nil {
		s.bar.IncrementFinished(amount)
	}
}

// Terminate flushes the tracers, closes the recorders and stops the monitor.
// Calling it again does nothing.
func (s *Simulation) Terminate() error {
	if s.terminated {
		return nil
	}

	s.terminated = true

	var errs []error

	for _, t := range s.terminators {
		errs = append(errs, t.Terminate())
	}

	for i := len(s.closers) - 1; i >= 0; i-- {
		errs = append(errs, s.closers[i].Close())
	}

	if s.monitor != nil {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()

		errs = append(errs, s.monitor.StopServer(ctx))
	}

	return errors.Join(errs...)
}

var _ driver.ProgressTracker = (*Simulation)(nil)
