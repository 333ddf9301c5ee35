package hostmem

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// A respondEvent marks that a completion becomes ready to leave the host.
type respondEvent struct {
	*sim.EventBase

	dst  sim.RemotePort
	unit hostchan.TransferUnit
}

type pendingRsp struct {
	dst  sim.RemotePort
	unit hostchan.TransferUnit
}

// Comp models host memory. It consumes request flits from a host channel,
// applies a fixed access latency, and sends completion flits back.
//
// With jitter enabled, reads take a per-request extra delay, so completions
// can leave the host in a different order than their requests arrived. Write
// completions always take the base latency.
type Comp struct {
	*sim.TickingComponent
	sim.MiddlewareHolder

	TopPort sim.Port

	codec   hostchan.Codec
	storage *Storage
	latency int

	maxJitter int
	lcgState  uint64

	pendingRsps []pendingRsp
}

// Handle either updates the component state on a tick or releases a
// completion that reached its latency.
func (c *Comp) Handle(e sim.Event) error {
	switch evt := e.(type) {
	case *respondEvent:
		c.pendingRsps = append(c.pendingRsps,
			pendingRsp{dst: evt.dst, unit: evt.unit})
		c.TickLater()
		return nil
	default:
		return c.TickingComponent.Handle(e)
	}
}

// Tick updates the state of the component for one cycle.
func (c *Comp) Tick() bool {
	return c.MiddlewareHolder.Tick()
}

// Storage returns the backing store of the host memory.
func (c *Comp) Storage() *Storage {
	return c.storage
}

type middleware struct {
	*Comp
}

func (m *middleware) Tick() bool {
	madeProgress := m.sendRsps()
	madeProgress = m.acceptReqs() || madeProgress

	return madeProgress
}

func (m *middleware) acceptReqs() bool {
	madeProgress := false

	for {
		msg := m.TopPort.PeekIncoming()
		if msg == nil {
			break
		}

		flit := msg.(*hostchan.RawFlit)
		for _, unit := range m.codec.Unpack(flit.Words) {
			m.serveUnit(flit.Src, unit)
		}

		m.TopPort.RetrieveIncoming()
		madeProgress = true
	}

	return madeProgress
}

func (m *middleware) serveUnit(src sim.RemotePort, unit hostchan.TransferUnit) {
	switch unit.Kind {
	case hostchan.KindMemRdReq:
		m.serveRead(src, unit)
	case hostchan.KindMemWrReq:
		m.serveWrite(src, unit)
	default:
		panic("host received a completion")
	}
}

func (m *middleware) serveRead(src sim.RemotePort, unit hostchan.TransferUnit) {
	cpl := hostchan.TransferUnit{
		Kind:    hostchan.KindCplData,
		SOT:     true,
		Length:  unit.Length,
		Tag:     unit.Tag,
		Payload: m.storage.Read(unit.Addr, unit.Length),
	}

	m.scheduleRsp(src, cpl, m.latency+m.nextJitter())
}

func (m *middleware) serveWrite(src sim.RemotePort, unit hostchan.TransferUnit) {
	m.storage.Write(unit.Addr, unit.Payload)

	cpl := hostchan.TransferUnit{
		Kind: hostchan.KindCpl,
		SOT:  true,
		Tag:  unit.Tag,
	}

	m.scheduleRsp(src, cpl, m.latency)
}

func (m *middleware) scheduleRsp(
	dst sim.RemotePort,
	unit hostchan.TransferUnit,
	cycles int,
) {
	now := m.CurrentTime()
	evt := &respondEvent{
		EventBase: sim.NewEventBase(
			m.Freq.NCyclesLater(cycles, now), m.Comp),
		dst:  dst,
		unit: unit,
	}

	m.Engine.Schedule(evt)
}

func (m *middleware) sendRsps() bool {
	madeProgress := false

	for len(m.pendingRsps) > 0 {
		if !m.TopPort.CanSend() {
			break
		}

		rsp := m.pendingRsps[0]
		flit := hostchan.RawFlitBuilder{}.
			WithSrc(m.TopPort.AsRemote()).
			WithDst(rsp.dst).
			WithWords(m.codec.Pack(
				[]hostchan.TransferUnit{rsp.unit})).
			Build()

		if err := m.TopPort.Send(flit); err != nil {
			break
		}

		m.pendingRsps = m.pendingRsps[1:]
		madeProgress = true
	}

	return madeProgress
}

// nextJitter draws the extra read latency for one request. The sequence is
// a fixed LCG so that runs are reproducible.
func (c *Comp) nextJitter() int {
	if c.maxJitter == 0 {
		return 0
	}

	c.lcgState = c.lcgState*6364136223846793005 + 1442695040888963407

	return int((c.lcgState >> 33) % uint64(c.maxJitter+1))
}
