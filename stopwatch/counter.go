package stopwatch

import "fmt"

// Moduli of the two cascaded fields.
const (
	SecondsModulus = 60
	MinutesModulus = 256
)

// CounterStep is the outcome of evaluating a counter for one cycle.
type CounterStep struct {
	Next  uint
	Carry bool
}

// BoundedCounter counts from 0 to Modulus-1 and wraps. Its carry output is
// asserted in the cycle the wrap happens, so counters cascade by feeding one
// counter's carry into the next counter's enable.
type BoundedCounter struct {
	Modulus uint
	Value   uint
}

// NewBoundedCounter creates a counter at zero.
func NewBoundedCounter(modulus uint) BoundedCounter {
	if modulus < 2 {
		panic(fmt.Sprintf("counter modulus must be at least 2, got %d", modulus))
	}

	return BoundedCounter{Modulus: modulus}
}

// Eval computes the next value. Clear wins over enable and never carries.
func (c BoundedCounter) Eval(clear, enable bool) CounterStep {
	switch {
	case clear:
		return CounterStep{Next: 0}
	case !enable:
		return CounterStep{Next: c.Value}
	case c.Value == c.Modulus-1:
		return CounterStep{Next: 0, Carry: true}
	default:
		return CounterStep{Next: c.Value + 1}
	}
}

// Commit stores the evaluated value.
func (c *BoundedCounter) Commit(step CounterStep) {
	c.Value = step.Next
}
