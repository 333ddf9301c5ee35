package hostchan

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan/chanevents"
	"github.com/michelleyho/ofs-platform-afu-bbb/pipelining"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// Comp is the host-channel adapter. It accepts canonical requests from
// compute engines on two sub-channels, frames them into wire-encoded flits
// toward the host, and turns inbound completion flits back into canonical
// responses.
//
// Sub-channel B is reserved for read requests so that reads never queue
// behind large writes. Sub-channel A carries everything.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	// Engine-facing ports.
	ReqAPort sim.Port
	ReqBPort sim.Port
	RspPort  sim.Port

	// Host-facing port. Outgoing flits go to hostRemote.
	HostPort   sim.Port
	hostRemote sim.RemotePort

	codec    Codec
	numLanes int

	tracker *chanevents.Tracker

	reorderEnabled bool
	rob            *reorderBuffer
	pendingReads   []*ReadReq
	pendingWrites  []*WriteReq
	nextTag        uint8

	rxUnitBuf   sim.Buffer
	cplPipeline pipelining.Pipeline
	cplOutBuf   sim.Buffer
}

// Tick updates the state of the channel for one cycle.
func (c *Comp) Tick() bool {
	prevReq, prevRsp := c.tracker.Sample()
	c.tracker.Sync()

	madeProgress := c.MiddlewareHolder.Tick()

	// The registered sample needs one more tick to flush back to zero
	// after traffic stops.
	if prevReq != 0 || prevRsp != 0 {
		madeProgress = true
	}

	return madeProgress
}

// Tracker returns the traffic tracker of the channel.
func (c *Comp) Tracker() *chanevents.Tracker {
	return c.tracker
}

// cplFlight wraps a canonical response while it traverses the completion
// pipeline.
type cplFlight struct {
	rsp sim.Msg
}

// TaskID returns the ID of the wrapped response.
func (f cplFlight) TaskID() string {
	return f.rsp.Meta().ID
}

type txMiddleware struct {
	*Comp
}

func (m *txMiddleware) Tick() bool {
	madeProgress := m.issueFromPort(m.ReqBPort, true)
	madeProgress = m.issueFromPort(m.ReqAPort, false) || madeProgress

	return madeProgress
}

func (m *txMiddleware) issueFromPort(port sim.Port, readOnly bool) bool {
	msg := port.PeekIncoming()
	if msg == nil {
		return false
	}

	switch req := msg.(type) {
	case *ReadReq:
		return m.issueRead(port, req)
	case *WriteReq:
		if readOnly {
			panic("write request arrived on the read-only sub-channel")
		}
		return m.issueWrite(port, req)
	}

	panic("host channel received a message of unknown type")
}

func (m *txMiddleware) issueRead(port sim.Port, req *ReadReq) bool {
	if !m.HostPort.CanSend() {
		return false
	}

	if m.reorderEnabled && !m.rob.canAllocate() {
		return false
	}

	var tag uint8
	if m.reorderEnabled {
		tag = m.rob.allocate(req)
	} else {
		tag = m.nextTag
		m.nextTag++
		m.pendingReads = append(m.pendingReads, req)
	}

	unit := TransferUnit{
		Kind:   KindMemRdReq,
		SOT:    true,
		Length: req.LengthWords,
		Tag:    tag,
		Addr:   req.Addr,
	}
	m.sendFlit(unit)

	m.tracker.AddRequested(req.LengthWords)
	port.RetrieveIncoming()

	return true
}

func (m *txMiddleware) issueWrite(port sim.Port, req *WriteReq) bool {
	if !m.HostPort.CanSend() {
		return false
	}

	unit := TransferUnit{
		Kind:    KindMemWrReq,
		SOT:     true,
		Length:  len(req.Data),
		Addr:    req.Addr,
		Payload: req.Data,
	}
	m.sendFlit(unit)

	m.pendingWrites = append(m.pendingWrites, req)
	port.RetrieveIncoming()

	return true
}

func (m *txMiddleware) sendFlit(unit TransferUnit) {
	flit := RawFlitBuilder{}.
		WithSrc(m.HostPort.AsRemote()).
		WithDst(m.hostRemote).
		WithWords(m.codec.Pack([]TransferUnit{unit})).
		Build()

	err := m.HostPort.Send(flit)
	if err != nil {
		panic("sending on the host port after CanSend returned true")
	}
}

type rxMiddleware struct {
	*Comp
}

func (m *rxMiddleware) Tick() bool {
	madeProgress := m.deliverRsps()
	madeProgress = m.cplPipeline.Tick() || madeProgress
	madeProgress = m.drainReorderBuffer() || madeProgress
	madeProgress = m.classifyUnits() || madeProgress
	madeProgress = m.acceptFlits() || madeProgress

	return madeProgress
}

// acceptFlits pulls up to one flit per lane from the host port and decodes
// it into transfer units. Word counts are observed here, at the raw side of
// the channel, before reordering and pipelining.
func (m *rxMiddleware) acceptFlits() bool {
	madeProgress := false

	for lane := 0; lane < m.numLanes; lane++ {
		msg := m.HostPort.PeekIncoming()
		if msg == nil {
			break
		}

		spaceLeft := m.rxUnitBuf.Capacity() - m.rxUnitBuf.Size()
		if spaceLeft < m.codec.MaxUnitsPerFlit() {
			break
		}

		flit := msg.(*RawFlit)
		for _, unit := range m.codec.Unpack(flit.Words) {
			if unit.Kind == KindCplData && unit.SOT {
				m.tracker.AddReturned(unit.Length)
			}
			m.rxUnitBuf.Push(unit)
		}

		m.HostPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

func (m *rxMiddleware) classifyUnits() bool {
	madeProgress := false

	for {
		item := m.rxUnitBuf.Peek()
		if item == nil {
			break
		}

		if !m.classifyOneUnit(item.(TransferUnit)) {
			break
		}

		m.rxUnitBuf.Pop()
		madeProgress = true
	}

	return madeProgress
}

func (m *rxMiddleware) classifyOneUnit(unit TransferUnit) bool {
	switch unit.Kind {
	case KindCplData:
		return m.handleReadCpl(unit)
	case KindCpl:
		return m.handleWriteCpl(unit)
	}

	panic("host sent a request to the channel")
}

func (m *rxMiddleware) handleReadCpl(unit TransferUnit) bool {
	if m.reorderEnabled {
		req := m.rob.reqByTag(unit.Tag)
		if req == nil {
			panic("read completion carries a tag with no outstanding read")
		}

		rsp := m.readRsp(req, unit.Payload)
		m.rob.complete(unit.Tag, rsp)

		return true
	}

	if !m.cplPipeline.CanAccept() {
		return false
	}

	if len(m.pendingReads) == 0 {
		panic("read completion arrived with no outstanding read")
	}

	req := m.pendingReads[0]
	m.pendingReads = m.pendingReads[1:]
	m.cplPipeline.Accept(cplFlight{rsp: m.readRsp(req, unit.Payload)})

	return true
}

func (m *rxMiddleware) handleWriteCpl(_ TransferUnit) bool {
	if !m.cplPipeline.CanAccept() {
		return false
	}

	if len(m.pendingWrites) == 0 {
		panic("write completion arrived with no outstanding write")
	}

	req := m.pendingWrites[0]
	m.pendingWrites = m.pendingWrites[1:]

	rsp := WriteDoneRspBuilder{}.
		WithSrc(m.RspPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		Build()
	m.cplPipeline.Accept(cplFlight{rsp: rsp})

	return true
}

func (m *rxMiddleware) readRsp(req *ReadReq, data []uint64) *DataReadyRsp {
	return DataReadyRspBuilder{}.
		WithSrc(m.RspPort.AsRemote()).
		WithDst(req.Src).
		WithRspTo(req.ID).
		WithData(data).
		Build()
}

func (m *rxMiddleware) drainReorderBuffer() bool {
	if !m.reorderEnabled {
		return false
	}

	madeProgress := false
	for m.rob.headReady() && m.cplPipeline.CanAccept() {
		_, rsp := m.rob.popHead()
		m.cplPipeline.Accept(cplFlight{rsp: rsp})
		madeProgress = true
	}

	return madeProgress
}

func (m *rxMiddleware) deliverRsps() bool {
	madeProgress := false

	for {
		item := m.cplOutBuf.Peek()
		if item == nil {
			break
		}

		rsp := item.(cplFlight).rsp
		if err := m.RspPort.Send(rsp); err != nil {
			break
		}

		m.cplOutBuf.Pop()
		madeProgress = true
	}

	return madeProgress
}
