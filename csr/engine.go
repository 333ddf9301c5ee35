package csr

import "github.com/michelleyho/ofs-platform-afu-bbb/sim"

// An Engine is the control-plane view of one compute engine. The control
// plane drives the reset and run-enable level signals and samples the active
// flag. Each engine also exposes 16 engine-local registers whose meaning is
// opaque to the control plane.
type Engine interface {
	sim.Named

	// SetReset drives the engine's reset-commanded level signal.
	SetReset(asserted bool)

	// SetRunEnable drives the engine's run-enabled level signal.
	SetRunEnable(enabled bool)

	// Active reports whether the engine still has work in flight. It may
	// stay true after run-enable drops.
	Active() bool

	// RegRead returns the value of one of the 16 engine-local registers.
	RegRead(slot int) uint64

	// RegWrite updates one of the 16 engine-local registers.
	RegWrite(slot int, value uint64)
}
