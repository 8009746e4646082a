package accel

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/reg"
)

// MaxSimWidth bounds the frame memory the model allocates.
const MaxSimWidth = 24

// Builder can create accelerators.
type Builder struct {
	engine      sim.Engine
	freq        sim.Freq
	base        uint32
	width       uint
	latency     int
	exposeWidth bool
	faults      Faults
}

// MakeBuilder returns a builder for the reference configuration: the
// original register base and a 1024-point frame.
func MakeBuilder() Builder {
	return Builder{
		base:  reg.BitrevBase,
		width: 10,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the accelerator.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithBase sets the address of the IN register.
func (b Builder) WithBase(base uint32) Builder {
	b.base = base
	return b
}

// WithWidth sets K, the transform width the hardware is built with.
func (b Builder) WithWidth(width uint) Builder {
	b.width = width
	return b
}

// WithLatency sets the idle cycles between two output words.
func (b Builder) WithLatency(latency int) Builder {
	b.latency = latency
	return b
}

// WithWidthReadout makes the CAP register report the width.
func (b Builder) WithWidthReadout(expose bool) Builder {
	b.exposeWidth = expose
	return b
}

// WithFaults injects faults.
func (b Builder) WithFaults(faults Faults) Builder {
	b.faults = faults
	return b
}

// Build creates an accelerator.
func (b Builder) Build(name string) *Comp {
	if b.width > MaxSimWidth {
		panic(fmt.Sprintf("accel: width %d exceeds %d", b.width, MaxSimWidth))
	}
	if b.latency < 0 {
		panic("accel: negative latency")
	}

	c := &Comp{
		base:        b.base,
		width:       b.width,
		latency:     b.latency,
		exposeWidth: b.exposeWidth,
		faults:      b.faults,
		frame:       make([]uint32, 1<<b.width),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	c.top = sim.NewPort(c, 1, 1, name+".Top")
	c.AddPort("Top", c.top)

	return c
}
