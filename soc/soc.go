// Package soc is the software driver layer of the bring-up SoC: thin
// register-level drivers for GPIO, the user ROM and the UART console, plus
// the cycle counter and sleep primitive used by the demo.
package soc

import (
	"io"

	"github.com/sarchlab/bitrev/reg"
)

// MemoryMap holds the base address of every peripheral the harness uses.
type MemoryMap struct {
	UART   uint32 `yaml:"uart"`
	GPIO   uint32 `yaml:"gpio"`
	ROM    uint32 `yaml:"rom"`
	Bitrev uint32 `yaml:"bitrev"`
}

// DefaultMemoryMap is the map of the reference SoC.
func DefaultMemoryMap() MemoryMap {
	return MemoryMap{
		UART:   0x03002000,
		GPIO:   0x03005000,
		ROM:    0x20000000,
		Bitrev: reg.BitrevBase,
	}
}

// A Sink receives console text. Output may be buffered until Flush.
type Sink interface {
	io.Writer
	Flush() error
}
