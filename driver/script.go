package driver

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// ErrInvalidStep is returned for a script step that cannot be executed.
var ErrInvalidStep = errors.New("driver: invalid script step")

// Op is the kind of a script step.
type Op string

// Script operations.
const (
	// OpSay prints Message.
	OpSay Op = "say"
	// OpSet drives Line to Level.
	OpSet Op = "set"
	// OpTick issues one tick.
	OpTick Op = "tick"
	// OpWait issues Cycles ticks.
	OpWait Op = "wait"
	// OpPulse asserts Line for one tick.
	OpPulse Op = "pulse"
)

// Step is one instruction of a stimulus script.
type Step struct {
	Op      Op     `yaml:"op"`
	Line    Line   `yaml:"line,omitempty"`
	Level   bool   `yaml:"level,omitempty"`
	Cycles  int    `yaml:"cycles,omitempty"`
	Message string `yaml:"message,omitempty"`
}

// Script is a fixed, finite sequence of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

func (s Step) validate() error {
	switch s.Op {
	case OpSay, OpTick:
		return nil
	case OpSet, OpPulse:
		return s.Line.validate()
	case OpWait:
		if s.Cycles < 0 {
			return fmt.Errorf("%w: wait of %d cycles", ErrInvalidStep, s.Cycles)
		}

		return nil
	default:
		return fmt.Errorf("%w: unknown op %q", ErrInvalidStep, string(s.Op))
	}
}

// Validate checks every step before anything is executed.
func (s Script) Validate() error {
	for i, step := range s.Steps {
		if err := step.validate(); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
	}

	return nil
}

// TotalCycles returns the number of ticks the script issues.
func (s Script) TotalCycles() uint64 {
	var n uint64

	for _, step := range s.Steps {
		switch step.Op {
		case OpTick, OpPulse:
			n++
		case OpWait:
			if step.Cycles > 0 {
				n += uint64(step.Cycles)
			}
		}
	}

	return n
}

// LoadScript decodes and validates a YAML script.
func LoadScript(r io.Reader) (Script, error) {
	var s Script

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&s); err != nil {
		return Script{}, fmt.Errorf("driver: decoding script: %w", err)
	}

	if err := s.Validate(); err != nil {
		return Script{}, err
	}

	return s, nil
}

// WriteYAML encodes the script.
func (s Script) WriteYAML(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	if err := enc.Encode(s); err != nil {
		return err
	}

	return enc.Close()
}

// Run executes the script to completion and writes the summary line.
func (d *Driver) Run(s Script) error {
	if err := s.Validate(); err != nil {
		return err
	}

	d.logger.Printf("running script %q, %d cycles", s.Name, s.TotalCycles())

	for _, step := range s.Steps {
		if err := d.execute(step); err != nil {
			return err
		}
	}

	d.Summary()
	d.logger.Printf("script %q finished at cycle %d", s.Name, d.CurrentTime())

	return nil
}

func (d *Driver) execute(step Step) error {
	switch step.Op {
	case OpSay:
		d.Say(step.Message)
	case OpSet:
		return d.Set(step.Line, step.Level)
	case OpTick:
		d.Tick()
		d.advanceProgress(1)
	case OpWait:
		for i := 0; i < step.Cycles; i++ {
			d.Tick()
			d.advanceProgress(1)
		}
	case OpPulse:
		if err := d.Pulse(step.Line); err != nil {
			return err
		}
		d.advanceProgress(1)
	}

	return nil
}

func (d *Driver) advanceProgress(n uint64) {
	if d.progress == nil {
		return
	}

	d.progress.IncrementFinished(n)
}

func say(msg string) Step          { return Step{Op: OpSay, Message: msg} }
func set(l Line, level bool) Step  { return Step{Op: OpSet, Line: l, Level: level} }
func tickStep() Step               { return Step{Op: OpTick} }
func wait(n int) Step              { return Step{Op: OpWait, Cycles: n} }
func pulseAndSettle(l Line) []Step { return []Step{set(l, true), tickStep(), set(l, false), tickStep()} }

// ReferenceScript returns the reference run: reset, start, count, pause,
// resume, roll over into the first minute, and reset again.
func ReferenceScript() Script {
	steps := []Step{
		say(" Digital Stopwatch Controller "),
		say(" Cycle-Accurate Simulation Demo "),
		say(""),
		set(LineMasterReset, true),
		say("Applying reset..."),
		wait(2),
		set(LineMasterReset, false),
		wait(2),
		say(""),
		say("--- Test 1: Starting stopwatch ---"),
	}
	steps = append(steps, pulseAndSettle(LineStart)...)
	steps = append(steps,
		say("Counting for 10 seconds..."),
		wait(10),
		say(""),
		say("--- Test 2: Pausing stopwatch ---"),
	)
	steps = append(steps, pulseAndSettle(LineStop)...)
	steps = append(steps,
		say("Waiting 5 cycles while paused (time should not change)..."),
		wait(5),
		say(""),
		say("--- Test 3: Resuming stopwatch ---"),
	)
	steps = append(steps, pulseAndSettle(LineStart)...)
	steps = append(steps,
		say("Counting for 15 more seconds..."),
		wait(15),
		say(""),
		say("--- Test 4: Testing minute rollover ---"),
		wait(30),
		say("Counting past 59 seconds to see rollover..."),
		wait(5),
		say(""),
		say("--- Final Reset ---"),
	)
	steps = append(steps, pulseAndSettle(LineLocalReset)...)
	steps = append(steps,
		say(""),
		say(" Simulation Complete "),
	)

	return Script{Name: "reference", Steps: steps}
}
