// Package stopwatch models a small synchronous digital stopwatch: a
// three-state control machine gating a seconds counter whose carry drives an
// 8-bit minutes counter.
//
// Every stateful element follows the same register discipline. A pure Eval
// computes the next value from the current value and the current inputs, and
// a separate Commit stores it. Device.RisingEdge evaluates all elements
// against the pre-edge state before committing any of them, which is what
// makes the counters see the state the control machine was in during the
// cycle rather than the one it is moving to.
//
// The device is not safe for concurrent use. It is owned by one driver that
// advances it tick by tick.
package stopwatch
