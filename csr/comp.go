package csr

import (
	"fmt"

	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// FSMState is a state of the engine lifecycle state machine.
type FSMState int

// Lifecycle states.
const (
	// StateReady waits for a command.
	StateReady FSMState = iota

	// StateHoldReset holds newly-enabled engines in reset for a fixed
	// number of ticks so that the cross-domain counters can settle.
	StateHoldReset

	// StateEngStart releases reset and raises run-enable, then returns to
	// StateReady on the next tick.
	StateEngStart
)

func (s FSMState) String() string {
	switch s {
	case StateReady:
		return "Ready"
	case StateHoldReset:
		return "HoldReset"
	case StateEngStart:
		return "EngStart"
	}

	return fmt.Sprintf("FSMState(%d)", int(s))
}

type readStage1 struct {
	req         *ReadReq
	blockValues []uint64
}

type readStage2 struct {
	req   *ReadReq
	value uint64
}

type writeStage struct {
	block int
	slot  int
	data  uint64
	isCmd bool
}

// Comp is the control plane. A single external agent reads and writes the
// register space through CtrlPort. The component drives the reset and
// run-enable signals of every engine and keeps two activity cycle counters,
// one in its own timing domain and one in the counter domain.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	CtrlPort sim.Port

	engines    []Engine
	globalRegs [BlockSize]uint64

	dfh          uint64
	guidLo       uint64
	guidHi       uint64
	nextAFU      uint64
	clockHintMHz uint64

	state             FSMState
	stateAtTickStart  FSMState
	holdDuration      int
	holdCount         int
	pendingMask       uint64
	resetMask         uint64
	runMask           uint64
	counterResetArmed bool

	counterMask uint64
	cycles      uint64

	readS1 *readStage1
	readS2 *readStage2
	writeS *writeStage

	activeOut     *sim.DomainCrossing
	cyclesIn      *sim.DomainCrossing
	counterDomain *CounterDomain
}

// Tick updates the state of the control plane for one cycle.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// State returns the current lifecycle state.
func (c *Comp) State() FSMState {
	return c.state
}

// RunEnabledMask returns the bitmask of engines with run-enable asserted.
func (c *Comp) RunEnabledMask() uint64 {
	return c.runMask
}

// ResetMask returns the bitmask of engines held in reset.
func (c *Comp) ResetMask() uint64 {
	return c.resetMask
}

// Cycles returns the control-domain cycle counter.
func (c *Comp) Cycles() uint64 {
	return c.cycles
}

// CounterDomain returns the component that keeps the counter-domain cycle
// counter. It must be registered with the same event engine as the control
// plane.
func (c *Comp) CounterDomain() *CounterDomain {
	return c.counterDomain
}

// Reset wipes all lifecycle state. Engines are released from reset with
// run-enable deasserted, and the cycle-counter reset is armed.
func (c *Comp) Reset() {
	c.state = StateReady
	c.holdCount = 0
	c.pendingMask = 0
	c.resetMask = 0
	c.runMask = 0
	c.counterResetArmed = true
	c.cycles = 0

	for _, e := range c.engines {
		e.SetReset(false)
		e.SetRunEnable(false)
	}
}

func (c *Comp) activeMask() uint64 {
	var mask uint64
	for i, e := range c.engines {
		if e.Active() {
			mask |= 1 << i
		}
	}

	return mask
}

func (c *Comp) allEnginesMask() uint64 {
	return 1<<len(c.engines) - 1
}

// reduceBlocks is the first read stage. It narrows every register block down
// to the one slot the address selects.
func (c *Comp) reduceBlocks(addr uint64) []uint64 {
	slot := slotOf(addr)

	values := make([]uint64, BlockEngine0+len(c.engines))
	values[BlockIdentity] = c.identityValue(slot)
	values[BlockControl] = c.controlValue(slot)
	values[BlockGlobal] = c.globalRegs[slot]
	for i, e := range c.engines {
		values[BlockEngine0+i] = e.RegRead(slot)
	}

	return values
}

func (c *Comp) identityValue(slot int) uint64 {
	switch slot {
	case slotOf(RegDFH):
		return c.dfh
	case slotOf(RegGUIDLo):
		return c.guidLo
	case slotOf(RegGUIDHi):
		return c.guidHi
	case slotOf(RegNextAFU):
		return c.nextAFU
	}

	return 0
}

func (c *Comp) controlValue(slot int) uint64 {
	switch slot {
	case slotOf(RegNumEngines):
		return uint64(len(c.engines))
	case slotOf(RegClockHint):
		return c.clockHintMHz
	case slotOf(RegRunMask):
		return c.runMask
	case slotOf(RegActiveMask):
		return c.activeMask()
	case slotOf(RegCycles):
		return c.cycles
	case slotOf(RegCtrCycles):
		return c.cyclesIn.Get()
	}

	return 0
}

// selectBlock is the second read stage. Undefined addresses read as zero.
func selectBlock(addr uint64, blockValues []uint64) uint64 {
	block := blockOf(addr)
	if block < 0 || block >= len(blockValues) {
		return 0
	}

	return blockValues[block]
}

type ctrlMiddleware struct {
	*Comp
}

func (m *ctrlMiddleware) Tick() bool {
	// Commands are judged against the state the tick started in, the way
	// synchronous logic samples its inputs.
	m.stateAtTickStart = m.state

	madeProgress := m.respondReads()
	madeProgress = m.advanceReadPipeline() || madeProgress
	madeProgress = m.updateLifecycle() || madeProgress
	madeProgress = m.applyWrite() || madeProgress
	madeProgress = m.acceptRequests() || madeProgress
	madeProgress = m.updateCounters() || madeProgress

	return madeProgress
}

// respondReads sends the stage-2 value back to the agent. The two-stage read
// pipeline answers two ticks after a read is accepted; if the agent stops
// draining CtrlPort, the response waits here intact, stretching the latency
// of that read, and later reads back up behind it in stage 1.
func (m *ctrlMiddleware) respondReads() bool {
	if m.readS2 == nil {
		return false
	}

	if !m.CtrlPort.CanSend() {
		return false
	}

	rsp := ReadRspBuilder{}.
		WithSrc(m.CtrlPort.AsRemote()).
		WithDst(m.readS2.req.Src).
		WithRspTo(m.readS2.req.ID).
		WithData(m.readS2.value).
		Build()

	if err := m.CtrlPort.Send(rsp); err != nil {
		return false
	}

	m.readS2 = nil

	return true
}

func (m *ctrlMiddleware) advanceReadPipeline() bool {
	if m.readS1 == nil || m.readS2 != nil {
		return false
	}

	m.readS2 = &readStage2{
		req:   m.readS1.req,
		value: selectBlock(m.readS1.req.Addr, m.readS1.blockValues),
	}
	m.readS1 = nil

	return true
}

func (m *ctrlMiddleware) updateLifecycle() bool {
	switch m.state {
	case StateHoldReset:
		m.holdCount++
		if m.holdCount >= m.holdDuration {
			m.startEngines()
		}
		return true
	case StateEngStart:
		m.state = StateReady
		return true
	}

	return false
}

func (m *ctrlMiddleware) startEngines() {
	m.state = StateEngStart
	m.runMask |= m.pendingMask
	m.resetMask &^= m.pendingMask
	m.counterResetArmed = false

	for i, e := range m.engines {
		if m.pendingMask&(1<<i) != 0 {
			e.SetReset(false)
			e.SetRunEnable(true)
		}
	}

	m.pendingMask = 0
}

func (m *ctrlMiddleware) applyWrite() bool {
	if m.writeS == nil {
		return false
	}

	w := m.writeS
	m.writeS = nil

	switch {
	case w.isCmd:
		m.applyCommand(w.data)
	case w.block == BlockGlobal:
		m.globalRegs[w.slot] = w.data
	case w.block >= BlockEngine0 &&
		w.block < BlockEngine0+len(m.engines):
		m.engines[w.block-BlockEngine0].RegWrite(w.slot, w.data)
	}
	// Writes to any other block have no effect.

	return true
}

func (m *ctrlMiddleware) applyCommand(data uint64) {
	if data&CmdEnable != 0 {
		m.applyEnable(commandMask(data) & m.allEnginesMask())
	}

	if data&CmdDisable != 0 {
		m.applyDisable(commandMask(data) & m.allEnginesMask())
	}
}

func (m *ctrlMiddleware) applyEnable(mask uint64) {
	if mask == 0 || m.stateAtTickStart != StateReady {
		return
	}

	if m.runMask == 0 {
		m.counterResetArmed = true
		m.cycles = 0
	}

	m.state = StateHoldReset
	m.holdCount = 0
	m.pendingMask = mask
	m.resetMask |= mask

	for i, e := range m.engines {
		if mask&(1<<i) != 0 {
			e.SetReset(true)
		}
	}
}

func (m *ctrlMiddleware) applyDisable(mask uint64) {
	if m.stateAtTickStart != StateReady {
		return
	}

	m.runMask &^= mask

	for i, e := range m.engines {
		if mask&(1<<i) != 0 {
			e.SetRunEnable(false)
		}
	}
}

func (m *ctrlMiddleware) acceptRequests() bool {
	msg := m.CtrlPort.PeekIncoming()
	if msg == nil {
		return false
	}

	switch req := msg.(type) {
	case *ReadReq:
		if m.readS1 != nil {
			return false
		}
		m.readS1 = &readStage1{
			req:         req,
			blockValues: m.reduceBlocks(req.Addr),
		}
	case *WriteReq:
		if m.writeS != nil {
			return false
		}
		m.writeS = &writeStage{
			block: blockOf(req.Addr),
			slot:  slotOf(req.Addr),
			data:  req.Data,
			isCmd: req.Addr == RegCmd,
		}
	default:
		panic("control plane received a message of unknown type")
	}

	m.CtrlPort.RetrieveIncoming()

	return true
}

func (m *ctrlMiddleware) updateCounters() bool {
	anyActive := m.activeMask() != 0

	switch {
	case m.counterResetArmed:
		m.cycles = 0
	case anyActive:
		m.cycles = (m.cycles + 1) & m.counterMask
	}

	var signal uint64
	if anyActive {
		signal |= crossingActiveBit
	}
	if m.counterResetArmed {
		signal |= crossingArmedBit
	}
	m.activeOut.Put(signal)
	m.cyclesIn.Sync()

	if anyActive || m.counterResetArmed {
		m.counterDomain.TickLater()
		return true
	}

	return false
}
