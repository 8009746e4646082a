// Package periph models the SoC peripherals the demo harness touches
// besides the accelerator: GPIO, the user ROM and the UART.
package periph

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/trace"
)

// GPIO register offsets.
const (
	GPIODir    uint32 = 0x00 // 1 = output
	GPIOEnable uint32 = 0x04 // 1 = input sampled
	GPIOOut    uint32 = 0x08
	GPIOIn     uint32 = 0x0C // read only
	GPIOToggle uint32 = 0x10 // write 1 to flip OUT bits
	GPIOSize   uint32 = 0x20
)

// GPIO is a 32-pin GPIO block. On the bring-up board pins 3:0 are wired to
// pins 7:4, so a nibble written on the low pins reads back on the high ones.
type GPIO struct {
	*sim.TickingComponent

	top  sim.Port
	base uint32

	dir, enable, out uint32
}

// NewGPIO creates a GPIO block decoding at base.
func NewGPIO(name string, engine sim.Engine, freq sim.Freq, base uint32) *GPIO {
	g := &GPIO{base: base}
	g.TickingComponent = sim.NewTickingComponent(name, engine, freq, g)

	g.top = sim.NewPort(g, 1, 1, name+".Top")
	g.AddPort("Top", g.top)

	return g
}

// Top returns the port that answers register accesses.
func (g *GPIO) Top() sim.Port {
	return g.top
}

// Tick answers at most one access.
func (g *GPIO) Tick() bool {
	return bus.ServeOne(g.top, g.base, g)
}

func (g *GPIO) pads() uint32 {
	driven := g.out & g.dir
	loop := (driven & 0x0F) << 4

	return driven | loop
}

// Load answers a register read.
func (g *GPIO) Load(offset uint32) uint32 {
	switch offset {
	case GPIODir:
		return g.dir
	case GPIOEnable:
		return g.enable
	case GPIOOut:
		return g.out
	case GPIOIn:
		return g.pads() & g.enable &^ g.dir
	default:
		return 0
	}
}

// Store answers a register write.
func (g *GPIO) Store(offset, v uint32) {
	switch offset {
	case GPIODir:
		g.dir = v
	case GPIOEnable:
		g.enable = v
	case GPIOOut:
		g.out = v
	case GPIOToggle:
		g.out ^= v
	default:
		trace.Trace("GPIO",
			"Behavior", "WriteIgnored",
			"Offset", offset,
			"Data", v,
		)
		return
	}

	trace.Trace("GPIO",
		"Behavior", "Write",
		"Time", float64(g.Engine.CurrentTime()*1e9),
		"Offset", offset,
		"Data", v,
		"Pads", g.pads(),
	)
}
