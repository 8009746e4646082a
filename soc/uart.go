package soc

import (
	"context"
	"fmt"

	"github.com/sarchlab/bitrev/periph"
	"github.com/sarchlab/bitrev/reg"
)

// UARTConsole writes console text through the UART registers. Write waits
// for room in the transmit FIFO before each byte; Flush waits until the
// transmitter is idle.
type UARTConsole struct {
	bus    reg.Bus
	base   uint32
	budget reg.Budget
}

// NewUARTConsole returns a console on the UART at base. Each wait on the
// line status register is bounded by budget.
func NewUARTConsole(bus reg.Bus, base uint32, budget reg.Budget) *UARTConsole {
	return &UARTConsole{bus: bus, base: base, budget: budget}
}

func (u *UARTConsole) lsrHas(bits uint32) func() (bool, error) {
	return func() (bool, error) {
		lsr, err := u.bus.Read32(u.base + periph.UARTLSR)
		if err != nil {
			return false, err
		}
		return lsr&bits == bits, nil
	}
}

// Write transmits p byte by byte.
func (u *UARTConsole) Write(p []byte) (int, error) {
	for i, c := range p {
		if _, err := reg.Poll(context.Background(), u.budget,
			u.lsrHas(periph.LSRTHREmpty)); err != nil {
			return i, fmt.Errorf("uart: %w", err)
		}

		if err := u.bus.Write32(u.base+periph.UARTTHR, uint32(c)); err != nil {
			return i, fmt.Errorf("uart: %w", err)
		}
	}

	return len(p), nil
}

// Flush waits for the transmitter to drain.
func (u *UARTConsole) Flush() error {
	if _, err := reg.Poll(context.Background(), u.budget,
		u.lsrHas(periph.LSRTxIdle)); err != nil {
		return fmt.Errorf("uart flush: %w", err)
	}

	return nil
}
