package bitrev_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/bitrev/bitrev"
)

var _ = Describe("Reverse", func() {
	It("should map the only index of a 1-point frame to itself", func() {
		Expect(bitrev.FrameSize(0)).To(Equal(1))
		Expect(bitrev.Reverse(0, 0)).To(Equal(uint32(0)))
	})

	It("should match the known vectors of the 1024-point frame", func() {
		Expect(bitrev.Reverse(1, 10)).To(Equal(uint32(512)))
		Expect(bitrev.Reverse(3, 10)).To(Equal(uint32(768)))
		Expect(bitrev.Reverse(512, 10)).To(Equal(uint32(1)))
		Expect(bitrev.Reverse(1023, 10)).To(Equal(uint32(1023)))
	})

	It("should ignore bits above the width", func() {
		Expect(bitrev.Reverse(0xFFFFFC01, 10)).To(Equal(uint32(512)))
		Expect(bitrev.Reverse(0x80000000, 1)).To(Equal(uint32(0)))
	})

	It("should reverse a full 32-bit word", func() {
		Expect(bitrev.Reverse(1, 32)).To(Equal(uint32(0x80000000)))
		Expect(bitrev.Reverse(0x0000FFFF, 32)).To(Equal(uint32(0xFFFF0000)))
	})

	It("should panic on a width wider than the register", func() {
		Expect(func() { bitrev.Reverse(1, 33) }).To(Panic())
		Expect(bitrev.ValidWidth(33)).To(MatchError(bitrev.ErrWidth))
		Expect(bitrev.ValidWidth(32)).To(Succeed())
	})

	It("should size every frame the host can stream", func() {
		Expect(bitrev.ValidFrameBits(bitrev.MaxFrameBits)).To(Succeed())
		Expect(bitrev.FrameSize(bitrev.MaxFrameBits)).To(BeNumerically(">", 0))
		Expect(uint64(bitrev.FrameSize(bitrev.MaxFrameBits))).
			To(Equal(uint64(1) << bitrev.MaxFrameBits))
	})

	It("should refuse a frame too large for the host", func() {
		Expect(bitrev.ValidFrameBits(bitrev.MaxFrameBits + 1)).
			To(MatchError(bitrev.ErrWidth))
		Expect(func() { bitrev.FrameSize(bitrev.MaxFrameBits + 1) }).To(Panic())
	})

	DescribeTable("should be an involution",
		func(k uint) {
			for x := 0; x < bitrev.FrameSize(k); x++ {
				y := bitrev.Reverse(uint32(x), k)
				Expect(bitrev.Reverse(y, k)).To(Equal(uint32(x)))
			}
		},
		Entry("k=1", uint(1)),
		Entry("k=2", uint(2)),
		Entry("k=5", uint(5)),
		Entry("k=10", uint(10)),
		Entry("k=12", uint(12)),
	)

	DescribeTable("should be a bijection on the frame",
		func(k uint) {
			n := bitrev.FrameSize(k)
			seen := make([]bool, n)
			for _, v := range bitrev.Table(k) {
				Expect(v).To(BeNumerically("<", n))
				Expect(seen[v]).To(BeFalse())
				seen[v] = true
			}
			Expect(seen).NotTo(ContainElement(false))
		},
		Entry("k=0", uint(0)),
		Entry("k=3", uint(3)),
		Entry("k=8", uint(8)),
		Entry("k=10", uint(10)),
	)
})
