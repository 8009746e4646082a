package periph

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/trace"
)

// UART register offsets and line status bits, laid out like a 16550.
const (
	UARTTHR  uint32 = 0x00
	UARTLSR  uint32 = 0x14
	UARTSize uint32 = 0x20

	LSRTHREmpty uint32 = 1 << 5
	LSRTxIdle   uint32 = 1 << 6
)

// UARTFIFODepth is the depth of the transmit FIFO.
const UARTFIFODepth = 16

// UART is the transmit half of a 16550-style UART. Each character spends
// charCycles in the shift register before it is written to the sink.
type UART struct {
	*sim.TickingComponent

	top  sim.Port
	base uint32

	sink       io.Writer
	charCycles int

	fifo      []byte
	shifting  bool
	current   byte
	countdown int
	dropped   int
}

// NewUART creates a UART at base that writes transmitted bytes to sink.
func NewUART(
	name string,
	engine sim.Engine,
	freq sim.Freq,
	base uint32,
	charCycles int,
	sink io.Writer,
) *UART {
	u := &UART{
		base:       base,
		sink:       sink,
		charCycles: charCycles,
	}
	u.TickingComponent = sim.NewTickingComponent(name, engine, freq, u)

	u.top = sim.NewPort(u, 1, 1, name+".Top")
	u.AddPort("Top", u.top)

	return u
}

// Top returns the port that answers register accesses.
func (u *UART) Top() sim.Port {
	return u.top
}

// Dropped returns the number of bytes written while the FIFO was full.
func (u *UART) Dropped() int {
	return u.dropped
}

// Tick shifts characters out and answers at most one access.
func (u *UART) Tick() (madeProgress bool) {
	madeProgress = u.shift() || madeProgress
	madeProgress = bus.ServeOne(u.top, u.base, u) || madeProgress

	return madeProgress
}

func (u *UART) shift() bool {
	if !u.shifting {
		if len(u.fifo) == 0 {
			return false
		}

		u.current = u.fifo[0]
		u.fifo = u.fifo[1:]
		u.shifting = true
		u.countdown = u.charCycles

		return true
	}

	if u.countdown > 0 {
		u.countdown--
		return true
	}

	if _, err := u.sink.Write([]byte{u.current}); err != nil {
		trace.Trace("UART",
			"Behavior", "SinkError",
			"Error", err,
		)
	}
	u.shifting = false

	return true
}

// Load answers a register read.
func (u *UART) Load(offset uint32) uint32 {
	if offset != UARTLSR {
		return 0
	}

	var lsr uint32
	if len(u.fifo) == 0 {
		lsr |= LSRTHREmpty
		if !u.shifting {
			lsr |= LSRTxIdle
		}
	}

	return lsr
}

// Store answers a register write.
func (u *UART) Store(offset, v uint32) {
	if offset != UARTTHR {
		return
	}

	if len(u.fifo) >= UARTFIFODepth {
		u.dropped++
		trace.Trace("UART",
			"Behavior", "Overflow",
			"Data", v,
		)
		return
	}

	u.fifo = append(u.fifo, byte(v))
}
