package soc

import (
	"fmt"

	"github.com/sarchlab/bitrev/periph"
	"github.com/sarchlab/bitrev/reg"
)

// GPIO drives the GPIO register block.
type GPIO struct {
	bus  reg.Bus
	base uint32
}

// NewGPIO returns a driver for the block at base.
func NewGPIO(bus reg.Bus, base uint32) *GPIO {
	return &GPIO{bus: bus, base: base}
}

// SetDirection updates the direction of the pins selected by mask; a set
// bit in dir makes the pin an output.
func (g *GPIO) SetDirection(mask, dir uint32) error {
	cur, err := g.bus.Read32(g.base + periph.GPIODir)
	if err != nil {
		return fmt.Errorf("gpio direction: %w", err)
	}

	next := (cur &^ mask) | (dir & mask)
	if err := g.bus.Write32(g.base+periph.GPIODir, next); err != nil {
		return fmt.Errorf("gpio direction: %w", err)
	}

	return nil
}

// Enable sets the input-enable mask.
func (g *GPIO) Enable(mask uint32) error {
	return g.write(periph.GPIOEnable, mask)
}

// Write sets the output register.
func (g *GPIO) Write(v uint32) error {
	return g.write(periph.GPIOOut, v)
}

// Toggle flips the outputs selected by mask.
func (g *GPIO) Toggle(mask uint32) error {
	return g.write(periph.GPIOToggle, mask)
}

// Read samples the input register.
func (g *GPIO) Read() (uint32, error) {
	v, err := g.bus.Read32(g.base + periph.GPIOIn)
	if err != nil {
		return 0, fmt.Errorf("gpio read: %w", err)
	}

	return v, nil
}

func (g *GPIO) write(offset, v uint32) error {
	if err := g.bus.Write32(g.base+offset, v); err != nil {
		return fmt.Errorf("gpio write 0x%x: %w", offset, err)
	}

	return nil
}
