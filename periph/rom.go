package periph

import (
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/trace"
)

// ROM is a read-only word memory. The identification image is a
// NUL-terminated string packed little-endian into words.
type ROM struct {
	*sim.TickingComponent

	top   sim.Port
	base  uint32
	words []uint32
}

// NewROM creates a ROM of size bytes at base holding image. The image is
// truncated if it does not fit.
func NewROM(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	base, size uint32,
	image []byte,
) *ROM {
	r := &ROM{
		base:  base,
		words: make([]uint32, size/4),
	}

	buf := make([]byte, len(r.words)*4)
	copy(buf, image)
	for i := range r.words {
		r.words[i] = bus.Order.Uint32(buf[i*4:])
	}

	r.TickingComponent = sim.NewTickingComponent(name, engine, freq, r)
	r.top = sim.NewPort(r, 1, 1, name+".Top")
	r.AddPort("Top", r.top)

	return r
}

// StringImage packs s followed by a NUL into a ROM image.
func StringImage(s string) []byte {
	return append([]byte(s), 0)
}

// Top returns the port that answers register accesses.
func (r *ROM) Top() sim.Port {
	return r.top
}

// Tick answers at most one access.
func (r *ROM) Tick() bool {
	return bus.ServeOne(r.top, r.base, r)
}

// Load answers a read.
func (r *ROM) Load(offset uint32) uint32 {
	i := offset / 4
	if int(i) >= len(r.words) {
		return 0
	}

	return r.words[i]
}

// Store drops the write.
func (r *ROM) Store(offset, v uint32) {
	trace.Trace("ROM",
		"Behavior", "WriteIgnored",
		"Offset", offset,
		"Data", v,
	)
}
