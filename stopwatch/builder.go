package stopwatch

import "github.com/NasaHari/bitsilicon-dd-assignments/instrumentation/hooking"

// Builder constructs a Device either from a Spec or per-field setters.
type Builder struct {
	spec  Spec
	hooks []hooking.Hook
}

// MakeBuilder returns a new Builder with the default Spec.
func MakeBuilder() Builder {
	return Builder{spec: Defaults()}
}

// WithSpec replaces the whole Spec.
func (b Builder) WithSpec(spec Spec) Builder {
	b.spec = spec
	return b
}

// WithAsyncMasterReset sets whether the master reset acts without a clock
// edge.
func (b Builder) WithAsyncMasterReset(async bool) Builder {
	b.spec.AsyncMasterReset = async
	return b
}

// WithHook attaches a hook to the device being built.
func (b Builder) WithHook(hook hooking.Hook) Builder {
	b.hooks = append(b.hooks[:len(b.hooks):len(b.hooks)], hook)
	return b
}

// Build creates the device in its power-up condition: Idle, both counters at
// zero, every input deasserted.
func (b Builder) Build(name string) *Device {
	d := newDevice(name, b.spec)

	for _, h := range b.hooks {
		d.AcceptHook(h)
	}

	return d
}
