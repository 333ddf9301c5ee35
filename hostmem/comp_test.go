package hostmem

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/michelleyho/ofs-platform-afu-bbb/hostchan"
	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.MockEngine
		topPort  *sim.MockPort

		comp *Comp
		mw   *middleware
	)

	reqFlit := func(unit hostchan.TransferUnit) *hostchan.RawFlit {
		return hostchan.RawFlitBuilder{}.
			WithSrc("Chan.Host").
			WithDst("HostMem.Top").
			WithWords(comp.codec.Pack(
				[]hostchan.TransferUnit{unit})).
			Build()
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewMockEngine(mockCtrl)
		topPort = sim.NewMockPort(mockCtrl)

		comp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithEncoding(hostchan.EncodingPerLane).
			WithLatency(10).
			Build("HostMem")
		comp.TopPort = topPort
		mw = &middleware{Comp: comp}

		engine.EXPECT().
			CurrentTime().
			Return(sim.VTimeInSec(0)).
			AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should schedule a read completion after the latency", func() {
		comp.storage.Write(0x40, []uint64{7, 8})
		flit := reqFlit(hostchan.TransferUnit{
			Kind:   hostchan.KindMemRdReq,
			SOT:    true,
			Length: 2,
			Tag:    3,
			Addr:   0x40,
		})

		var scheduled *respondEvent
		topPort.EXPECT().PeekIncoming().Return(flit)
		topPort.EXPECT().RetrieveIncoming().Return(flit)
		topPort.EXPECT().PeekIncoming().Return(nil)
		engine.EXPECT().
			Schedule(gomock.Any()).
			Do(func(e sim.Event) {
				scheduled = e.(*respondEvent)
			})

		madeProgress := mw.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(scheduled.Time()).To(
			BeNumerically("~", sim.VTimeInSec(10e-9), 1e-12))
		Expect(scheduled.dst).To(Equal(sim.RemotePort("Chan.Host")))
		Expect(scheduled.unit.Kind).To(Equal(hostchan.KindCplData))
		Expect(scheduled.unit.Tag).To(Equal(uint8(3)))
		Expect(scheduled.unit.Payload).To(Equal([]uint64{7, 8}))
	})

	It("should write the storage and schedule an ack", func() {
		flit := reqFlit(hostchan.TransferUnit{
			Kind:    hostchan.KindMemWrReq,
			SOT:     true,
			Length:  2,
			Tag:     5,
			Addr:    0x80,
			Payload: []uint64{1, 2},
		})

		var scheduled *respondEvent
		topPort.EXPECT().PeekIncoming().Return(flit)
		topPort.EXPECT().RetrieveIncoming().Return(flit)
		topPort.EXPECT().PeekIncoming().Return(nil)
		engine.EXPECT().
			Schedule(gomock.Any()).
			Do(func(e sim.Event) {
				scheduled = e.(*respondEvent)
			})

		mw.Tick()

		Expect(comp.storage.Read(0x80, 2)).To(Equal([]uint64{1, 2}))
		Expect(scheduled.unit.Kind).To(Equal(hostchan.KindCpl))
		Expect(scheduled.unit.Tag).To(Equal(uint8(5)))
	})

	It("should send a completion once it becomes ready", func() {
		evt := &respondEvent{
			EventBase: sim.NewEventBase(sim.VTimeInSec(10e-9), comp),
			dst:       "Chan.Host",
			unit: hostchan.TransferUnit{
				Kind:    hostchan.KindCplData,
				SOT:     true,
				Length:  1,
				Tag:     3,
				Payload: []uint64{7},
			},
		}

		engine.EXPECT().Schedule(gomock.Any())
		err := comp.Handle(evt)
		Expect(err).To(BeNil())

		var sent *hostchan.RawFlit
		topPort.EXPECT().CanSend().Return(true)
		topPort.EXPECT().
			AsRemote().
			Return(sim.RemotePort("HostMem.Top"))
		topPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				sent = msg.(*hostchan.RawFlit)
				return nil
			})
		topPort.EXPECT().PeekIncoming().Return(nil)

		madeProgress := mw.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(sent.Dst).To(Equal(sim.RemotePort("Chan.Host")))
		unit := comp.codec.Unpack(sent.Words)[0]
		Expect(unit.Kind).To(Equal(hostchan.KindCplData))
		Expect(unit.Payload).To(Equal([]uint64{7}))
	})

	It("should hold a ready completion while the port is busy", func() {
		comp.pendingRsps = append(comp.pendingRsps, pendingRsp{
			dst:  "Chan.Host",
			unit: hostchan.TransferUnit{Kind: hostchan.KindCpl, SOT: true},
		})

		topPort.EXPECT().CanSend().Return(false)
		topPort.EXPECT().PeekIncoming().Return(nil)

		madeProgress := mw.Tick()

		Expect(madeProgress).To(BeFalse())
		Expect(comp.pendingRsps).To(HaveLen(1))
	})

	It("should bound the read jitter", func() {
		comp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithEncoding(hostchan.EncodingPerLane).
			WithLatency(10).
			WithMaxJitter(8).
			Build("JitteryHostMem")
		comp.TopPort = topPort
		mw = &middleware{Comp: comp}

		for i := 0; i < 20; i++ {
			jitter := comp.nextJitter()
			Expect(jitter).To(BeNumerically(">=", 0))
			Expect(jitter).To(BeNumerically("<=", 8))
		}
	})
})
