package accel_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/accel"
	"github.com/sarchlab/bitrev/bitrev"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/reg"
)

var _ = Describe("Comp", func() {
	var (
		engine  sim.Engine
		builder accel.Builder
		master  *bus.Master
		comp    *accel.Comp
	)

	build := func() {
		comp = builder.Build("Bitrev")
		master.MapDevice("Bitrev", reg.BitrevBase, reg.BitrevSize, comp.Top())
	}

	push := func(v uint32) {
		Expect(master.Write32(reg.BitrevBase+reg.OffIn, v)).To(Succeed())
	}

	stat := func() uint32 {
		v, err := master.Read32(reg.BitrevBase + reg.OffStat)
		Expect(err).NotTo(HaveOccurred())
		return v
	}

	pop := func() uint32 {
		v, err := master.Read32(reg.BitrevBase + reg.OffOut)
		Expect(err).NotTo(HaveOccurred())
		return v
	}

	pushFrame := func(k uint) {
		for i := 0; i < bitrev.FrameSize(k); i++ {
			push(uint32(i))
		}
	}

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		master = bus.Builder{}.
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Bus")
		builder = accel.MakeBuilder().
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			WithWidth(3).
			WithLatency(1)
	})

	It("should hold STAT low until the frame is full", func() {
		build()

		for i := 0; i < 7; i++ {
			push(uint32(i))
			Expect(stat()).To(BeZero())
		}

		push(7)
		Expect(stat()).To(Equal(reg.StatReady))
	})

	It("should emit the frame in bit-reversed order", func() {
		build()
		pushFrame(3)

		got := make([]uint32, 0, 8)
		for stat()&reg.StatReady != 0 {
			got = append(got, pop())
		}

		Expect(got).To(Equal(bitrev.Table(3)))
		Expect(comp.Stats().Frames).To(Equal(1))
	})

	It("should reorder arbitrary words", func() {
		build()
		for i := 0; i < 8; i++ {
			push(uint32(100 + i))
		}

		Expect(pop()).To(Equal(uint32(100)))
		Expect(pop()).To(Equal(uint32(104)))
		Expect(pop()).To(Equal(uint32(102)))
		Expect(pop()).To(Equal(uint32(106)))
	})

	It("should accept the next frame after the last pop", func() {
		build()

		for frame := 0; frame < 2; frame++ {
			pushFrame(3)
			for i := 0; i < 8; i++ {
				Expect(pop()).To(Equal(bitrev.Reverse(uint32(i), 3)))
			}
		}

		Expect(comp.Stats().Frames).To(Equal(2))
		Expect(comp.Stats().Overflows).To(BeZero())
	})

	It("should drop pushes while the frame drains", func() {
		build()
		pushFrame(3)

		push(42)

		Expect(comp.Stats().Overflows).To(Equal(1))
		Expect(pop()).To(Equal(uint32(0)))
	})

	It("should return zero on an empty OUT read", func() {
		build()

		Expect(pop()).To(BeZero())
		Expect(comp.Stats().Underflows).To(Equal(1))
	})

	It("should corrupt the selected word", func() {
		builder = builder.WithFaults(accel.Faults{
			Corrupt: map[int]uint32{2: 0xdead},
		})
		build()
		pushFrame(3)

		Expect(pop()).To(Equal(uint32(0)))
		Expect(pop()).To(Equal(uint32(4)))
		Expect(pop()).To(Equal(uint32(0xdead)))
		Expect(pop()).To(Equal(uint32(6)))
	})

	It("should stall before the selected word", func() {
		stall := 2
		builder = builder.WithFaults(accel.Faults{StallAt: &stall})
		build()
		pushFrame(3)

		Expect(pop()).To(Equal(uint32(0)))
		Expect(pop()).To(Equal(uint32(4)))
		Expect(stat()).To(BeZero())
	})

	It("should report the width in CAP only when exposed", func() {
		build()
		v, err := master.Read32(reg.BitrevBase + reg.OffCap)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(BeZero())
	})

	It("should report the width in CAP", func() {
		builder = builder.WithWidthReadout(true)
		build()

		v, err := master.Read32(reg.BitrevBase + reg.OffCap)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(3)))
	})

	It("should refuse widths it cannot hold", func() {
		Expect(func() {
			builder.WithWidth(accel.MaxSimWidth + 1).Build("Bitrev")
		}).To(Panic())
	})
})
