package tracing

import (
	"sync"

	"github.com/NasaHari/bitsilicon-dd-assignments/stopwatch"
)

// Transition is a change of the control state on one rising edge.
type Transition struct {
	From, To stopwatch.ControlState
}

// TransitionCounter counts state transitions, carries into the minutes and
// the cycles spent in each state.
type TransitionCounter struct {
	lock        sync.Mutex
	transitions map[Transition]uint64
	order       []Transition
	cyclesIn    map[stopwatch.ControlState]uint64
	overflows   uint64
}

// NewTransitionCounter creates an empty counter.
func NewTransitionCounter() *TransitionCounter {
	return &TransitionCounter{
		transitions: make(map[Transition]uint64),
		cyclesIn:    make(map[stopwatch.ControlState]uint64),
	}
}

// Trace records a snapshot.
func (c *TransitionCounter) Trace(s stopwatch.Snapshot) {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.cyclesIn[s.State]++

	if s.Overflow {
		c.overflows++
	}

	if s.State == s.NextState {
		return
	}

	tr := Transition{From: s.State, To: s.NextState}
	if _, ok := c.transitions[tr]; !ok {
		c.order = append(c.order, tr)
	}

	c.transitions[tr]++
}

// Count returns how many times the given transition happened.
func (c *TransitionCounter) Count(from, to stopwatch.ControlState) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.transitions[Transition{From: from, To: to}]
}

// Transitions returns the distinct transitions seen, in first-seen order.
func (c *TransitionCounter) Transitions() []Transition {
	c.lock.Lock()
	defer c.lock.Unlock()

	return append([]Transition(nil), c.order...)
}

// Overflows returns the number of seconds carries.
func (c *TransitionCounter) Overflows() uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.overflows
}

// CyclesIn returns the number of ticks that started in the given state.
func (c *TransitionCounter) CyclesIn(state stopwatch.ControlState) uint64 {
	c.lock.Lock()
	defer c.lock.Unlock()

	return c.cyclesIn[state]
}
