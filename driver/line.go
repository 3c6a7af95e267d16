package driver

import "fmt"

// Line names one of the device's control inputs.
type Line string

// Control lines. Setting LineMasterReset to true asserts the active-low
// master reset, i.e. pulls the physical line low.
const (
	LineMasterReset Line = "master_reset"
	LineStart       Line = "start"
	LineStop        Line = "stop"
	LineLocalReset  Line = "local_reset"
)

// ParseLine converts a line name into a Line.
func ParseLine(name string) (Line, error) {
	l := Line(name)
	if err := l.validate(); err != nil {
		return "", err
	}

	return l, nil
}

func (l Line) validate() error {
	switch l {
	case LineMasterReset, LineStart, LineStop, LineLocalReset:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLine, string(l))
	}
}
