package main

import (
	"github.com/michelleyho/ofs-platform-afu-bbb/csr"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

// ctrlAgent plays the role of the host software. It feeds a queue of
// register accesses into the control plane, one per tick.
type ctrlAgent struct {
	*sim.TickingComponent

	CtrlPort sim.Port

	ctrlRemote sim.RemotePort
	toSend     []sim.Msg
	rsps       []*csr.ReadRsp
}

func newCtrlAgent(engine sim.Engine, ctrlRemote sim.RemotePort) *ctrlAgent {
	a := new(ctrlAgent)
	a.TickingComponent = sim.NewTickingComponent(
		"Host", engine, 1*sim.GHz, a)
	a.ctrlRemote = ctrlRemote

	a.CtrlPort = sim.NewPort(a, 4, 4, "Host.Ctrl")
	a.AddPort("Ctrl", a.CtrlPort)

	return a
}

// Tick drains read responses and pushes the next queued access out.
func (a *ctrlAgent) Tick() bool {
	madeProgress := false

	for {
		msg := a.CtrlPort.PeekIncoming()
		if msg == nil {
			break
		}

		a.rsps = append(a.rsps, msg.(*csr.ReadRsp))
		a.CtrlPort.RetrieveIncoming()
		madeProgress = true
	}

	if len(a.toSend) > 0 && a.CtrlPort.CanSend() {
		if err := a.CtrlPort.Send(a.toSend[0]); err == nil {
			a.toSend = a.toSend[1:]
			madeProgress = true
		}
	}

	return madeProgress
}

func (a *ctrlAgent) write(addr, data uint64) {
	a.toSend = append(a.toSend, csr.WriteReqBuilder{}.
		WithSrc(a.CtrlPort.AsRemote()).
		WithDst(a.ctrlRemote).
		WithAddr(addr).
		WithData(data).
		Build())
}

func (a *ctrlAgent) read(addr uint64) {
	a.toSend = append(a.toSend, csr.ReadReqBuilder{}.
		WithSrc(a.CtrlPort.AsRemote()).
		WithDst(a.ctrlRemote).
		WithAddr(addr).
		Build())
}
