package sim

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should calculate period", func() {
		f := 1 * GHz
		Expect(f.Period()).To(BeNumerically("~", 1e-9, 1e-15))
	})

	It("should calculate this tick", func() {
		f := 1 * GHz
		Expect(f.ThisTick(1.0000000001)).
			To(BeNumerically("~", 1.0000000010, 1e-12))
	})

	It("should calculate next tick", func() {
		f := 1 * GHz
		Expect(f.NextTick(1.0000000010)).
			To(BeNumerically("~", 1.0000000020, 1e-12))
	})

	It("should calculate n cycles later", func() {
		f := 1 * GHz
		Expect(f.NCyclesLater(10, 1.0000000010)).
			To(BeNumerically("~", 1.0000000110, 1e-12))
	})

	It("should convert time to cycle count", func() {
		f := 1 * GHz
		Expect(f.Cycle(1e-9 * 12)).To(Equal(uint64(12)))
	})
})
