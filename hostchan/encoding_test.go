package hostchan

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Codec", func() {
	var (
		read  TransferUnit
		write TransferUnit
		cpl   TransferUnit
	)

	BeforeEach(func() {
		read = TransferUnit{
			Kind:   KindMemRdReq,
			SOT:    true,
			Length: 4,
			Tag:    7,
			Addr:   0x1040,
		}
		write = TransferUnit{
			Kind:    KindMemWrReq,
			SOT:     true,
			Length:  2,
			Addr:    0x2000,
			Payload: []uint64{0xdead, 0xbeef},
		}
		cpl = TransferUnit{
			Kind:    KindCplData,
			SOT:     true,
			Length:  2,
			Tag:     7,
			Payload: []uint64{1, 2},
		}
	})

	It("should round-trip headers", func() {
		decoded := DecodeHeader(EncodeHeader(read))

		Expect(decoded.Kind).To(Equal(KindMemRdReq))
		Expect(decoded.SOT).To(BeTrue())
		Expect(decoded.Length).To(Equal(4))
		Expect(decoded.Tag).To(Equal(uint8(7)))
		Expect(decoded.Addr).To(Equal(uint64(0x1040)))
	})

	It("should frame several units into one packed flit", func() {
		codec := NewCodec(EncodingPacked, 4)

		words := codec.Pack([]TransferUnit{read, write, cpl})
		units := codec.Unpack(words)

		Expect(units).To(HaveLen(3))
		Expect(units[0].Kind).To(Equal(KindMemRdReq))
		Expect(units[1].Kind).To(Equal(KindMemWrReq))
		Expect(units[1].Payload).To(Equal([]uint64{0xdead, 0xbeef}))
		Expect(units[2].Kind).To(Equal(KindCplData))
		Expect(units[2].Payload).To(Equal([]uint64{1, 2}))
	})

	It("should refuse to pack more units than a packed flit can start",
		func() {
			codec := NewCodec(EncodingPacked, 2)

			Expect(func() {
				codec.Pack([]TransferUnit{read, read, read})
			}).To(Panic())
		})

	It("should frame one unit per flit with the per-lane encoding", func() {
		codec := NewCodec(EncodingPerLane, 0)

		words := codec.Pack([]TransferUnit{write})
		units := codec.Unpack(words)

		Expect(units).To(HaveLen(1))
		Expect(units[0].Addr).To(Equal(uint64(0x2000)))
		Expect(units[0].Payload).To(Equal([]uint64{0xdead, 0xbeef}))
	})

	It("should refuse to pack two units with the per-lane encoding", func() {
		codec := NewCodec(EncodingPerLane, 0)

		Expect(func() {
			codec.Pack([]TransferUnit{read, cpl})
		}).To(Panic())
	})

	It("should panic on a malformed per-lane flit", func() {
		codec := NewCodec(EncodingPerLane, 0)

		words := codec.Pack([]TransferUnit{cpl})

		Expect(func() {
			codec.Unpack(words[:len(words)-1])
		}).To(Panic())
	})

	It("should panic on an unknown encoding", func() {
		Expect(func() {
			NewCodec(Encoding(42), 4)
		}).To(Panic())
	})
})
