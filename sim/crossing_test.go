package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("DomainCrossing", func() {
	var crossing *DomainCrossing

	BeforeEach(func() {
		crossing = NewDomainCrossing("Crossing")
	})

	It("should read zero before any value is put", func() {
		Expect(crossing.Get()).To(Equal(uint64(0)))
	})

	It("should expose the new value after two destination ticks", func() {
		crossing.Put(0x3)

		Expect(crossing.Get()).To(Equal(uint64(0)))

		crossing.Sync()
		Expect(crossing.Get()).To(Equal(uint64(0)))

		crossing.Sync()
		Expect(crossing.Get()).To(Equal(uint64(0x3)))
	})

	It("should never expose a torn value", func() {
		crossing.Put(0x1)
		crossing.Sync()
		crossing.Put(0x2)
		crossing.Sync()

		// The destination sees the old value or the new value, and nothing
		// else.
		Expect(crossing.Get()).To(Equal(uint64(0x1)))

		crossing.Sync()
		Expect(crossing.Get()).To(Equal(uint64(0x2)))
	})

	It("should hold the value once settled", func() {
		crossing.Put(0x7)
		crossing.Sync()
		crossing.Sync()
		crossing.Sync()
		crossing.Sync()

		Expect(crossing.Get()).To(Equal(uint64(0x7)))
	})
})
