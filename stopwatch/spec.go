package stopwatch

// Spec holds the immutable configuration of a Device.
type Spec struct {
	// AsyncMasterReset makes the master reset line act the moment it is
	// asserted instead of waiting for the next rising edge. Either way the
	// line keeps the device cleared at every edge while it is held.
	AsyncMasterReset bool
}

// Defaults returns the Spec matching the reference circuit.
func Defaults() Spec {
	return Spec{AsyncMasterReset: true}
}
