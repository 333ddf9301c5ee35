// Package csr implements the control plane of the platform: a word-addressed
// register file, the engine lifecycle state machine, and the activity cycle
// counters.
package csr

// The register space is word-addressed and split into 16-slot blocks. The
// low 4 address bits select a slot within a block, the remaining bits select
// the block.
const (
	BlockSize      = 16
	blockAddrShift = 4
	slotAddrMask   = BlockSize - 1
)

// Block indices.
const (
	BlockIdentity = 0
	BlockControl  = 1
	BlockGlobal   = 2

	// Per-engine blocks follow, one block per engine.
	BlockEngine0 = 3
)

// Identity block slots (read-only).
const (
	RegDFH     = BlockIdentity*BlockSize + 0
	RegGUIDLo  = BlockIdentity*BlockSize + 1
	RegGUIDHi  = BlockIdentity*BlockSize + 2
	RegNextAFU = BlockIdentity*BlockSize + 3
)

// Control block slots. Slot 0 reads back the engine count and accepts
// lifecycle commands when written.
const (
	RegCmd        = BlockControl*BlockSize + 0
	RegNumEngines = BlockControl*BlockSize + 0
	RegClockHint  = BlockControl*BlockSize + 1
	RegRunMask    = BlockControl*BlockSize + 2
	RegActiveMask = BlockControl*BlockSize + 3
	RegCycles     = BlockControl*BlockSize + 4
	RegCtrCycles  = BlockControl*BlockSize + 5
)

// GlobalBase is the first slot of the global engine block. Its 16 slots are
// shared by all engines and their meaning is opaque to the control plane.
const GlobalBase = BlockGlobal * BlockSize

// EngineBase is the first slot of engine 0's block. Engine n's 16 slots
// start at EngineBase + n*BlockSize.
const EngineBase = BlockEngine0 * BlockSize

// A command word written to RegCmd selects an operation in its two low bits
// and carries a per-engine bitmask in the remaining bits.
const (
	CmdEnable  = 1 << 0
	CmdDisable = 1 << 1

	cmdMaskShift = 2
)

// MakeCommand builds a command word from an operation bit and an engine
// bitmask.
func MakeCommand(op uint64, engineMask uint64) uint64 {
	return op | engineMask<<cmdMaskShift
}

func commandMask(cmd uint64) uint64 {
	return cmd >> cmdMaskShift
}

func blockOf(addr uint64) int {
	return int(addr >> blockAddrShift)
}

func slotOf(addr uint64) int {
	return int(addr & slotAddrMask)
}
