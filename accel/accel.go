// Package accel models the bit-reversal accelerator as an akita component.
//
// The accelerator is a frame reorder buffer. Words written to IN fill a
// frame memory of 2^K entries in arrival order. Once the frame is full the
// accelerator emits frame[reverse(i)] for i = 0, 1, ... into an output FIFO,
// one word every Latency+1 cycles. STAT bit 0 is set while the FIFO holds a
// word and each read of OUT pops one. After the last word of the frame is
// popped the buffer accepts the next frame.
//
// There is no flow control on IN: a write that arrives while the frame is
// draining is dropped.
package accel

import (
	"fmt"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/bitrev"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/reg"
	"github.com/sarchlab/bitrev/trace"
)

// Faults make the model misbehave on purpose. Indices count output words
// within a frame.
type Faults struct {
	// Corrupt replaces the word emitted at an index.
	Corrupt map[int]uint32 `yaml:"corrupt"`

	// StallAt stops emission before the word at this index, so STAT never
	// rises for it.
	StallAt *int `yaml:"stall_at"`
}

func (f Faults) stalls(index int) bool {
	return f.StallAt != nil && *f.StallAt == index
}

// Stats counts events of interest across the component's lifetime.
type Stats struct {
	Frames     int
	Overflows  int
	Underflows int
}

// Comp is the simulated accelerator.
type Comp struct {
	*sim.TickingComponent

	top         sim.Port
	base        uint32
	width       uint
	latency     int
	exposeWidth bool
	faults      Faults

	frame     []uint32
	filled    int
	draining  bool
	emitted   int
	countdown int
	out       []uint32
	popped    int

	stats Stats
}

// Top returns the port that answers register accesses.
func (c *Comp) Top() sim.Port {
	return c.top
}

// Width returns the transform width the hardware was built with.
func (c *Comp) Width() uint {
	return c.width
}

// Stats returns the event counters.
func (c *Comp) Stats() Stats {
	return c.stats
}

// Tick emits at most one output word and answers at most one access.
func (c *Comp) Tick() (madeProgress bool) {
	madeProgress = c.emit() || madeProgress
	madeProgress = bus.ServeOne(c.top, c.base, c) || madeProgress

	return madeProgress
}

func (c *Comp) emit() bool {
	if !c.draining || c.emitted >= len(c.frame) {
		return false
	}

	if c.faults.stalls(c.emitted) {
		return false
	}

	if c.countdown > 0 {
		c.countdown--
		return true
	}

	word := c.frame[bitrev.Reverse(uint32(c.emitted), c.width)]
	if v, ok := c.faults.Corrupt[c.emitted]; ok {
		word = v
	}

	c.out = append(c.out, word)
	c.emitted++
	c.countdown = c.latency

	trace.Trace("Accel",
		"Behavior", "Emit",
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"Index", c.emitted-1,
		"Data", word,
	)

	return true
}

// Load answers a register read.
func (c *Comp) Load(offset uint32) uint32 {
	switch offset {
	case reg.OffStat:
		if len(c.out) > 0 {
			return reg.StatReady
		}
		return 0
	case reg.OffOut:
		return c.pop()
	case reg.OffCap:
		if c.exposeWidth {
			return uint32(c.width) & reg.CapWidthMask
		}
		return 0
	default:
		trace.Trace("Accel",
			"Behavior", "ReadReserved",
			"Offset", offset,
		)
		return 0
	}
}

// Store answers a register write.
func (c *Comp) Store(offset, v uint32) {
	if offset != reg.OffIn {
		trace.Trace("Accel",
			"Behavior", "WriteIgnored",
			"Offset", offset,
			"Data", v,
		)
		return
	}

	c.push(v)
}

func (c *Comp) push(v uint32) {
	if c.draining {
		c.stats.Overflows++
		trace.Trace("Accel",
			"Behavior", "Overflow",
			"Time", float64(c.Engine.CurrentTime()*1e9),
			"Data", v,
		)
		return
	}

	c.frame[c.filled] = v
	c.filled++

	if c.filled == len(c.frame) {
		c.draining = true
		c.emitted = 0
		c.countdown = c.latency
	}
}

func (c *Comp) pop() uint32 {
	if len(c.out) == 0 {
		c.stats.Underflows++
		trace.Trace("Accel",
			"Behavior", "Underflow",
			"Time", float64(c.Engine.CurrentTime()*1e9),
		)
		return 0
	}

	v := c.out[0]
	c.out = c.out[1:]
	c.popped++

	if c.popped == len(c.frame) {
		c.reset()
		c.stats.Frames++
	}

	return v
}

func (c *Comp) reset() {
	c.filled = 0
	c.draining = false
	c.emitted = 0
	c.countdown = 0
	c.out = c.out[:0]
	c.popped = 0
}

// String describes the component state for logs.
func (c *Comp) String() string {
	return fmt.Sprintf("%s(k=%d filled=%d emitted=%d queued=%d popped=%d)",
		c.Name(), c.width, c.filled, c.emitted, len(c.out), c.popped)
}
