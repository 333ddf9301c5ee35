package hostchan

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/michelleyho/ofs-platform-afu-bbb/sim"
)

var _ = Describe("Comp", func() {
	var (
		mockCtrl *gomock.Controller
		engine   *sim.MockEngine

		reqAPort *sim.MockPort
		reqBPort *sim.MockPort
		rspPort  *sim.MockPort
		hostPort *sim.MockPort

		comp *Comp
		tx   *txMiddleware
		rx   *rxMiddleware
	)

	buildComp := func(b Builder) {
		comp = b.
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithEncoding(EncodingPerLane).
			WithHostRemote("Host.Top").
			Build("Chan")

		comp.ReqAPort = reqAPort
		comp.ReqBPort = reqBPort
		comp.RspPort = rspPort
		comp.HostPort = hostPort

		tx = &txMiddleware{Comp: comp}
		rx = &rxMiddleware{Comp: comp}
	}

	newRead := func(addr uint64, lengthWords int) *ReadReq {
		return ReadReqBuilder{}.
			WithSrc("Engine.Mem").
			WithDst("Chan.ReqB").
			WithAddr(addr).
			WithLengthWords(lengthWords).
			Build()
	}

	issueRead := func(req *ReadReq) *RawFlit {
		var sent *RawFlit

		reqBPort.EXPECT().PeekIncoming().Return(req)
		reqBPort.EXPECT().RetrieveIncoming().Return(req)
		reqAPort.EXPECT().PeekIncoming().Return(nil)
		hostPort.EXPECT().CanSend().Return(true)
		hostPort.EXPECT().
			Send(gomock.Any()).
			DoAndReturn(func(msg sim.Msg) *sim.SendError {
				sent = msg.(*RawFlit)
				return nil
			})

		madeProgress := tx.Tick()
		Expect(madeProgress).To(BeTrue())

		return sent
	}

	cplFlit := func(tag uint8, data []uint64) *RawFlit {
		unit := TransferUnit{
			Kind:    KindCplData,
			SOT:     true,
			Length:  len(data),
			Tag:     tag,
			Payload: data,
		}

		return RawFlitBuilder{}.
			WithSrc("Host.Top").
			WithDst("Chan.Host").
			WithWords(comp.codec.Pack([]TransferUnit{unit})).
			Build()
	}

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		engine = sim.NewMockEngine(mockCtrl)

		reqAPort = sim.NewMockPort(mockCtrl)
		reqBPort = sim.NewMockPort(mockCtrl)
		rspPort = sim.NewMockPort(mockCtrl)
		hostPort = sim.NewMockPort(mockCtrl)

		hostPort.EXPECT().
			AsRemote().
			Return(sim.RemotePort("Chan.Host")).
			AnyTimes()
		rspPort.EXPECT().
			AsRemote().
			Return(sim.RemotePort("Chan.Rsp")).
			AnyTimes()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	Context("without completion reorder", func() {
		BeforeEach(func() {
			buildComp(MakeBuilder())
		})

		It("should frame a read request into a flit", func() {
			req := newRead(0x1040, 4)

			sent := issueRead(req)

			Expect(sent.Dst).To(Equal(sim.RemotePort("Host.Top")))
			unit := comp.codec.Unpack(sent.Words)[0]
			Expect(unit.Kind).To(Equal(KindMemRdReq))
			Expect(unit.SOT).To(BeTrue())
			Expect(unit.Length).To(Equal(4))
			Expect(unit.Addr).To(Equal(uint64(0x1040)))

			comp.tracker.Sync()
			Expect(comp.Tracker().TotalRequested()).To(Equal(uint64(4)))
		})

		It("should stall a read when the host port is busy", func() {
			req := newRead(0x1040, 4)

			reqBPort.EXPECT().PeekIncoming().Return(req)
			reqAPort.EXPECT().PeekIncoming().Return(nil)
			hostPort.EXPECT().CanSend().Return(false)

			madeProgress := tx.Tick()

			Expect(madeProgress).To(BeFalse())
		})

		It("should frame a write request with its payload", func() {
			req := WriteReqBuilder{}.
				WithSrc("Engine.Mem").
				WithDst("Chan.ReqA").
				WithAddr(0x2000).
				WithData([]uint64{0xdead, 0xbeef}).
				Build()
			var sent *RawFlit

			reqBPort.EXPECT().PeekIncoming().Return(nil)
			reqAPort.EXPECT().PeekIncoming().Return(req)
			reqAPort.EXPECT().RetrieveIncoming().Return(req)
			hostPort.EXPECT().CanSend().Return(true)
			hostPort.EXPECT().
				Send(gomock.Any()).
				DoAndReturn(func(msg sim.Msg) *sim.SendError {
					sent = msg.(*RawFlit)
					return nil
				})

			madeProgress := tx.Tick()

			Expect(madeProgress).To(BeTrue())
			unit := comp.codec.Unpack(sent.Words)[0]
			Expect(unit.Kind).To(Equal(KindMemWrReq))
			Expect(unit.Payload).To(Equal([]uint64{0xdead, 0xbeef}))

			comp.tracker.Sync()
			Expect(comp.Tracker().TotalRequested()).To(Equal(uint64(0)))
		})

		It("should reject a write on the read-only sub-channel", func() {
			req := WriteReqBuilder{}.
				WithSrc("Engine.Mem").
				WithDst("Chan.ReqB").
				WithData([]uint64{1}).
				Build()

			reqBPort.EXPECT().PeekIncoming().Return(req)

			Expect(func() { tx.Tick() }).To(Panic())
		})

		It("should turn a completion into a data-ready response", func() {
			req := newRead(0x1040, 2)
			comp.pendingReads = append(comp.pendingReads, req)
			flit := cplFlit(0, []uint64{10, 20})

			hostPort.EXPECT().PeekIncoming().Return(flit)
			hostPort.EXPECT().RetrieveIncoming().Return(flit)
			madeProgress := rx.Tick()
			Expect(madeProgress).To(BeTrue())

			hostPort.EXPECT().PeekIncoming().Return(nil)
			madeProgress = rx.Tick()
			Expect(madeProgress).To(BeTrue())

			var delivered *DataReadyRsp
			hostPort.EXPECT().PeekIncoming().Return(nil)
			rspPort.EXPECT().
				Send(gomock.Any()).
				DoAndReturn(func(msg sim.Msg) *sim.SendError {
					delivered = msg.(*DataReadyRsp)
					return nil
				})
			madeProgress = rx.Tick()
			Expect(madeProgress).To(BeTrue())

			Expect(delivered.Dst).To(Equal(req.Src))
			Expect(delivered.RspTo).To(Equal(req.ID))
			Expect(delivered.Data).To(Equal([]uint64{10, 20}))

			comp.tracker.Sync()
			Expect(comp.Tracker().TotalReturned()).To(Equal(uint64(2)))
		})

		It("should panic on a completion with no outstanding read", func() {
			flit := cplFlit(0, []uint64{10})

			hostPort.EXPECT().PeekIncoming().Return(flit)
			hostPort.EXPECT().RetrieveIncoming().Return(flit)
			rx.Tick()

			hostPort.EXPECT().PeekIncoming().Return(nil)
			Expect(func() { rx.Tick() }).To(Panic())
		})
	})

	Context("with completion pipeline stages", func() {
		var (
			inbound    []sim.Msg
			delivered  []sim.Msg
			sendBudget int
		)

		BeforeEach(func() {
			buildComp(MakeBuilder().
				WithNumLanes(2).
				WithNumPipelineStages(1))

			inbound = nil
			delivered = nil
			sendBudget = 0

			hostPort.EXPECT().
				PeekIncoming().
				DoAndReturn(func() sim.Msg {
					if len(inbound) == 0 {
						return nil
					}
					return inbound[0]
				}).
				AnyTimes()
			hostPort.EXPECT().
				RetrieveIncoming().
				DoAndReturn(func() sim.Msg {
					msg := inbound[0]
					inbound = inbound[1:]
					return msg
				}).
				AnyTimes()
			rspPort.EXPECT().
				Send(gomock.Any()).
				DoAndReturn(func(msg sim.Msg) *sim.SendError {
					if sendBudget == 0 {
						return sim.NewSendError()
					}
					sendBudget--
					delivered = append(delivered, msg)
					return nil
				}).
				AnyTimes()
		})

		It("should keep completions in request order under backpressure",
			func() {
				var reqs []*ReadReq
				for i := 0; i < 8; i++ {
					req := newRead(uint64(i)*0x40, 1)
					reqs = append(reqs, req)
					comp.pendingReads = append(comp.pendingReads, req)
					inbound = append(inbound,
						cplFlit(uint8(i), []uint64{uint64(100 + i)}))
				}

				// The engine does not drain its response port at first,
				// so completions pile up on the pipeline.
				for i := 0; i < 5; i++ {
					rx.Tick()
				}
				Expect(delivered).To(BeEmpty())

				// Then it drains one response per tick.
				for i := 0; i < 20 && len(delivered) < 8; i++ {
					sendBudget = 1
					rx.Tick()
				}

				Expect(delivered).To(HaveLen(8))
				for i, msg := range delivered {
					rsp := msg.(*DataReadyRsp)
					Expect(rsp.RspTo).To(Equal(reqs[i].ID))
					Expect(rsp.Data).To(Equal([]uint64{uint64(100 + i)}))
				}
			})
	})

	Context("with completion reorder", func() {
		BeforeEach(func() {
			buildComp(MakeBuilder().WithCompletionReorder(4))
		})

		It("should restore request order to completions", func() {
			req0 := newRead(0x00, 1)
			req1 := newRead(0x40, 1)

			flit0 := issueRead(req0)
			flit1 := issueRead(req1)
			tag0 := comp.codec.Unpack(flit0.Words)[0].Tag
			tag1 := comp.codec.Unpack(flit1.Words)[0].Tag
			Expect(tag0).NotTo(Equal(tag1))

			// The host returns the second read first.
			lateFlit := cplFlit(tag1, []uint64{11})
			earlyFlit := cplFlit(tag0, []uint64{10})

			hostPort.EXPECT().PeekIncoming().Return(lateFlit)
			hostPort.EXPECT().RetrieveIncoming().Return(lateFlit)
			rx.Tick()

			hostPort.EXPECT().PeekIncoming().Return(earlyFlit)
			hostPort.EXPECT().RetrieveIncoming().Return(earlyFlit)
			rx.Tick()

			hostPort.EXPECT().PeekIncoming().Return(nil)
			rx.Tick()

			var delivered []*DataReadyRsp
			hostPort.EXPECT().PeekIncoming().Return(nil).Times(2)
			rspPort.EXPECT().
				Send(gomock.Any()).
				DoAndReturn(func(msg sim.Msg) *sim.SendError {
					delivered = append(delivered, msg.(*DataReadyRsp))
					return nil
				}).
				Times(2)
			rx.Tick()
			rx.Tick()

			Expect(delivered).To(HaveLen(2))
			Expect(delivered[0].RspTo).To(Equal(req0.ID))
			Expect(delivered[0].Data).To(Equal([]uint64{10}))
			Expect(delivered[1].RspTo).To(Equal(req1.ID))
			Expect(delivered[1].Data).To(Equal([]uint64{11}))
		})

		It("should stall reads when the reorder buffer is full", func() {
			buildComp(MakeBuilder().WithCompletionReorder(1))

			issueRead(newRead(0x00, 1))

			req := newRead(0x40, 1)
			reqBPort.EXPECT().PeekIncoming().Return(req)
			reqAPort.EXPECT().PeekIncoming().Return(nil)
			hostPort.EXPECT().CanSend().Return(true)

			madeProgress := tx.Tick()

			Expect(madeProgress).To(BeFalse())
		})
	})
})
