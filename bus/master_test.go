package bus_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/periph"
)

const (
	gpioBase = 0x03005000
	romBase  = 0x20000000
)

var _ = Describe("Master", func() {
	var (
		engine sim.Engine
		master *bus.Master
	)

	BeforeEach(func() {
		engine = sim.NewSerialEngine()
		master = bus.Builder{}.
			WithEngine(engine).
			WithFreq(1 * sim.GHz).
			Build("Bus")

		gpio := periph.NewGPIO("GPIO", engine, 1*sim.GHz, gpioBase)
		rom := periph.NewROM("ROM", engine, 1*sim.GHz, romBase, 0x10,
			[]byte{0x78, 0x56, 0x34, 0x12, 0xef, 0xbe, 0xad, 0xde})

		master.MapDevice("GPIO", gpioBase, periph.GPIOSize, gpio.Top())
		master.MapDevice("ROM", romBase, 0x10, rom.Top())
	})

	It("should read little-endian words", func() {
		v, err := master.Read32(romBase)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0x12345678)))

		v, err = master.Read32(romBase + 4)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0xdeadbeef)))
	})

	It("should route writes to the right device", func() {
		Expect(master.Write32(gpioBase+periph.GPIOOut, 0x5)).To(Succeed())

		v, err := master.Read32(gpioBase + periph.GPIOOut)
		Expect(err).NotTo(HaveOccurred())
		Expect(v).To(Equal(uint32(0x5)))

		reads, writes := master.Accesses()
		Expect(reads).To(Equal(uint64(1)))
		Expect(writes).To(Equal(uint64(1)))
	})

	It("should reject unmapped addresses", func() {
		_, err := master.Read32(romBase + 0x10)
		Expect(err).To(MatchError(bus.ErrUnmapped))

		err = master.Write32(0x1000, 1)
		Expect(err).To(MatchError(bus.ErrUnmapped))
	})

	It("should reject unaligned addresses", func() {
		_, err := master.Read32(romBase + 2)
		Expect(err).To(MatchError(bus.ErrUnaligned))
	})

	It("should refuse overlapping regions", func() {
		rom := periph.NewROM("ROM2", engine, 1*sim.GHz, romBase+8, 0x10, nil)

		Expect(func() {
			master.MapDevice("ROM2", romBase+8, 0x10, rom.Top())
		}).To(Panic())
	})
})
