package hostchan

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ReorderBuffer", func() {
	var rob *reorderBuffer

	newReq := func(addr uint64) *ReadReq {
		return ReadReqBuilder{}.
			WithSrc("Engine.Mem").
			WithDst("Chan.ReqB").
			WithAddr(addr).
			WithLengthWords(1).
			Build()
	}

	newRsp := func(req *ReadReq) *DataReadyRsp {
		return DataReadyRspBuilder{}.
			WithSrc("Chan.Rsp").
			WithDst(req.Src).
			WithRspTo(req.ID).
			Build()
	}

	BeforeEach(func() {
		rob = newReorderBuffer(4)
	})

	It("should release entries in allocation order", func() {
		req0 := newReq(0x00)
		req1 := newReq(0x40)

		tag0 := rob.allocate(req0)
		tag1 := rob.allocate(req1)

		rob.complete(tag1, newRsp(req1))
		Expect(rob.headReady()).To(BeFalse())

		rob.complete(tag0, newRsp(req0))
		Expect(rob.headReady()).To(BeTrue())

		head, rsp := rob.popHead()
		Expect(head).To(BeIdenticalTo(req0))
		Expect(rsp.RspTo).To(Equal(req0.ID))

		head, _ = rob.popHead()
		Expect(head).To(BeIdenticalTo(req1))
	})

	It("should apply backpressure when full", func() {
		for i := 0; i < 4; i++ {
			Expect(rob.canAllocate()).To(BeTrue())
			rob.allocate(newReq(uint64(i)))
		}

		Expect(rob.canAllocate()).To(BeFalse())
	})

	It("should reuse tags after the window moves", func() {
		req0 := newReq(0x00)
		tag0 := rob.allocate(req0)
		rob.complete(tag0, newRsp(req0))
		rob.popHead()

		for i := 0; i < 4; i++ {
			rob.allocate(newReq(uint64(i)))
		}

		Expect(rob.canAllocate()).To(BeFalse())
	})

	It("should reject a completion with a stale tag", func() {
		req0 := newReq(0x00)
		tag0 := rob.allocate(req0)
		rob.complete(tag0, newRsp(req0))

		Expect(func() {
			rob.complete(tag0, newRsp(req0))
		}).To(Panic())
	})

	It("should reject out-of-range depths", func() {
		Expect(func() { newReorderBuffer(0) }).To(Panic())
		Expect(func() { newReorderBuffer(512) }).To(Panic())
	})
})
