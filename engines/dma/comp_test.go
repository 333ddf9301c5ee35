package dma

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
		memPort  *sim.MockPort

		comp *Comp
		mw   *middleware
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewMockEngine(mockCtrl)
		memPort = sim.NewMockPort(mockCtrl)

		engine.EXPECT().
			CurrentTime().
			Return(sim.VTimeInSec(0)).
			AnyTimes()
		engine.EXPECT().Schedule(gomock.Any()).AnyTimes()

		comp = MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithChannelRemotes("Chan.ReqA", "Chan.ReqB").
			Build("Copier")
		comp.MemPort = memPort
		mw = &middleware{Comp: comp}

		memPort.EXPECT().
			AsRemote().
			Return(sim.RemotePort("Copier.Mem")).
			AnyTimes()

		comp.RegWrite(RegSrcAddr, 0x100)
		comp.RegWrite(RegDstAddr, 0x200)
		comp.RegWrite(RegCount, 8)
		comp.RegWrite(RegBurst, 4)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should stay idle until run-enable rises", func() {
		memPort.EXPECT().PeekIncoming().Return(nil)

		madeProgress := mw.Tick()

		Expect(madeProgress).To(BeFalse())
		Expect(comp.Active()).To(BeFalse())
	})

	It("should issue burst reads on the read sub-channel", func() {
		comp.SetRunEnable(true)

		var reads []*hostchan.ReadReq
		memPort.EXPECT().PeekIncoming().Return(nil).Times(2)
		memPort.EXPECT().CanSend().Return(true).Times(2)
		memPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				reads = append(reads, msg.(*hostchan.ReadReq))
				return nil
			}).
			Times(2)

		mw.Tick()
		mw.Tick()

		Expect(reads).To(HaveLen(2))
		Expect(reads[0].Dst).To(Equal(sim.RemotePort("Chan.ReqB")))
		Expect(reads[0].Addr).To(Equal(uint64(0x100)))
		Expect(reads[0].LengthWords).To(Equal(4))
		Expect(reads[1].Addr).To(Equal(uint64(0x104)))
		Expect(comp.RegRead(RegIssued)).To(Equal(uint64(8)))
		Expect(comp.Active()).To(BeTrue())

		// All reads are in flight, nothing more to issue.
		memPort.EXPECT().PeekIncoming().Return(nil)
		madeProgress := mw.Tick()
		Expect(madeProgress).To(BeFalse())
	})

	It("should write a completed burst to the destination", func() {
		comp.readOffsets["read-1"] = 4
		comp.issuedWords = 8
		comp.readOffset = 8
		rsp := hostchan.DataReadyRspBuilder{}.
			WithSrc("Chan.Rsp").
			WithDst("Copier.Mem").
			WithRspTo("read-1").
			WithData([]uint64{1, 2, 3, 4}).
			Build()

		var wr *hostchan.WriteReq
		memPort.EXPECT().PeekIncoming().Return(rsp)
		memPort.EXPECT().RetrieveIncoming().Return(rsp)
		memPort.EXPECT().PeekIncoming().Return(nil)
		memPort.EXPECT().CanSend().Return(true)
		memPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				wr = msg.(*hostchan.WriteReq)
				return nil
			})

		madeProgress := mw.Tick()

		Expect(madeProgress).To(BeTrue())
		Expect(wr.Dst).To(Equal(sim.RemotePort("Chan.ReqA")))
		Expect(wr.Addr).To(Equal(uint64(0x204)))
		Expect(wr.Data).To(Equal([]uint64{1, 2, 3, 4}))
		Expect(comp.writeWords).To(HaveKey(wr.ID))
	})

	It("should count a write-done as completion", func() {
		comp.issuedWords = 4
		comp.readOffset = 4
		comp.writeWords["write-1"] = 4
		rsp := hostchan.WriteDoneRspBuilder{}.
			WithSrc("Chan.Rsp").
			WithDst("Copier.Mem").
			WithRspTo("write-1").
			Build()

		memPort.EXPECT().PeekIncoming().Return(rsp)
		memPort.EXPECT().RetrieveIncoming().Return(rsp)
		memPort.EXPECT().PeekIncoming().Return(nil)

		mw.Tick()

		Expect(comp.RegRead(RegCompleted)).To(Equal(uint64(4)))
	})

	It("should stay active after run-enable drops until drained", func() {
		comp.issuedWords = 4
		comp.completedWords = 0
		comp.SetRunEnable(false)

		Expect(comp.Active()).To(BeTrue())

		comp.completedWords = 4
		Expect(comp.Active()).To(BeFalse())
	})

	It("should wipe progress when reset rises", func() {
		comp.issuedWords = 4
		comp.readOffset = 4
		comp.readOffsets["read-1"] = 0

		comp.SetReset(true)

		Expect(comp.RegRead(RegIssued)).To(Equal(uint64(0)))
		Expect(comp.RegRead(RegCompleted)).To(Equal(uint64(0)))
		Expect(comp.readOffsets).To(BeEmpty())
	})

	It("should keep the progress registers read-only", func() {
		comp.RegWrite(RegIssued, 99)
		comp.RegWrite(RegCompleted, 99)

		Expect(comp.RegRead(RegIssued)).To(Equal(uint64(0)))
		Expect(comp.RegRead(RegCompleted)).To(Equal(uint64(0)))
	})
})
