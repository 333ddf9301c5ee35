// Package dma provides a reference compute engine that copies a region of
// host memory through the canonical host-channel interface, under the
// control of the platform's register file.
package dma

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// Engine-local register slots.
const (
	RegSrcAddr   = 0
	RegDstAddr   = 1
	RegCount     = 2
	RegBurst     = 3
	RegIssued    = 4
	RegCompleted = 5
)

// Comp is a copy engine. Once run-enable rises it reads countWords words
// from srcAddr in bursts, and writes each completed burst to dstAddr. The
// engine stays active until every issued burst has been written back, even
// after run-enable drops.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	MemPort sim.Port

	reqARemote sim.RemotePort
	reqBRemote sim.RemotePort

	srcAddr    uint64
	dstAddr    uint64
	countWords uint64
	burstWords uint64

	readOffset     uint64
	issuedWords    uint64
	completedWords uint64

	resetHeld  bool
	runEnabled bool

	readOffsets map[string]uint64
	writeWords  map[string]uint64
}

// Tick updates the state of the engine for one cycle.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// SetReset drives the reset level signal. Raising it wipes all copy
// progress.
func (c *Comp) SetReset(asserted bool) {
	c.resetHeld = asserted
	if asserted {
		c.readOffset = 0
		c.issuedWords = 0
		c.completedWords = 0
		c.readOffsets = make(map[string]uint64)
		c.writeWords = make(map[string]uint64)
	}
}

// SetRunEnable drives the run-enable level signal.
func (c *Comp) SetRunEnable(enabled bool) {
	c.runEnabled = enabled
	if enabled {
		c.TickLater()
	}
}

// Active reports whether the engine still has work in flight.
func (c *Comp) Active() bool {
	if c.issuedWords > c.completedWords {
		return true
	}

	return c.runEnabled && !c.resetHeld && c.remaining() > 0
}

// RegRead returns one of the engine-local registers.
func (c *Comp) RegRead(slot int) uint64 {
	switch slot {
	case RegSrcAddr:
		return c.srcAddr
	case RegDstAddr:
		return c.dstAddr
	case RegCount:
		return c.countWords
	case RegBurst:
		return c.burstWords
	case RegIssued:
		return c.issuedWords
	case RegCompleted:
		return c.completedWords
	}

	return 0
}

// RegWrite updates one of the engine-local registers. The progress
// registers are read-only.
func (c *Comp) RegWrite(slot int, value uint64) {
	switch slot {
	case RegSrcAddr:
		c.srcAddr = value
	case RegDstAddr:
		c.dstAddr = value
	case RegCount:
		c.countWords = value
	case RegBurst:
		c.burstWords = value
	}
}

func (c *Comp) remaining() uint64 {
	return c.countWords - c.readOffset
}

type middleware struct {
	*Comp
}

func (m *middleware) Tick() bool {
	madeProgress := m.processRsps()
	madeProgress = m.issueRead() || madeProgress

	return madeProgress
}

func (m *middleware) processRsps() bool {
	madeProgress := false

	for {
		msg := m.MemPort.PeekIncoming()
		if msg == nil {
			break
		}

		switch rsp := msg.(type) {
		case *hostchan.DataReadyRsp:
			if !m.writeBack(rsp) {
				return madeProgress
			}
		case *hostchan.WriteDoneRsp:
			m.completedWords += m.writeWords[rsp.RspTo]
			delete(m.writeWords, rsp.RspTo)
		default:
			panic("copy engine received a message of unknown type")
		}

		m.MemPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

func (m *middleware) writeBack(rsp *hostchan.DataReadyRsp) bool {
	if !m.MemPort.CanSend() {
		return false
	}

	offset, found := m.readOffsets[rsp.RspTo]
	if !found {
		panic("copy engine received a response to an unknown read")
	}

	wr := hostchan.WriteReqBuilder{}.
		WithSrc(m.MemPort.AsRemote()).
		WithDst(m.reqARemote).
		WithAddr(m.dstAddr + offset).
		WithData(rsp.Data).
		Build()

	if err := m.MemPort.Send(wr); err != nil {
		return false
	}

	m.writeWords[wr.ID] = uint64(len(rsp.Data))
	delete(m.readOffsets, rsp.RspTo)

	return true
}

func (m *middleware) issueRead() bool {
	if !m.runEnabled || m.resetHeld {
		return false
	}

	if m.burstWords == 0 || m.remaining() == 0 {
		return false
	}

	if !m.MemPort.CanSend() {
		return false
	}

	length := min(m.burstWords, m.remaining())
	rd := hostchan.ReadReqBuilder{}.
		WithSrc(m.MemPort.AsRemote()).
		WithDst(m.reqBRemote).
		WithAddr(m.srcAddr + m.readOffset).
		WithLengthWords(int(length)).
		Build()

	if err := m.MemPort.Send(rd); err != nil {
		return false
	}

	m.readOffsets[rd.ID] = m.readOffset
	m.readOffset += length
	m.issuedWords += length

	return true
}
