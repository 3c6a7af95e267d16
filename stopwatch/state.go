package stopwatch

// ControlState is the state of the control machine.
type ControlState uint8

// The control machine only ever holds one of these values.
const (
	Idle ControlState = iota
	Running
	Paused
)

func (s ControlState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Paused:
		return "Paused"
	default:
		return "Invalid"
	}
}

// Code encodes the state as the status code exposed on the output pins.
func (s ControlState) Code() StatusCode {
	switch s {
	case Idle:
		return StatusIdle
	case Running:
		return StatusRunning
	case Paused:
		return StatusPaused
	default:
		return StatusUnknown
	}
}

// StatusCode is the 2-bit status output of the device.
type StatusCode uint8

// Status codes. StatusUnknown is reserved and never produced by the device.
const (
	StatusIdle StatusCode = iota
	StatusRunning
	StatusPaused
	StatusUnknown
)
