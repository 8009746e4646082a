// Package reg defines the register-level contract between the bring-up
// drivers and the hardware: a 32-bit load/store bus and the three
// registers of the bit-reversal accelerator.
package reg

import "errors"

// Register block of the bit-reversal accelerator.
const (
	BitrevBase uint32 = 0x20001000
	BitrevSize uint32 = 0x10

	OffIn   uint32 = 0x0 // write: push one index
	OffOut  uint32 = 0x4 // read: pop one transformed word
	OffStat uint32 = 0x8 // read: bit 0 set when a word is ready

	// OffCap is not part of the original block. Models that implement it
	// return the configured transform width in bits 5:0.
	OffCap uint32 = 0xC
)

// StatReady is the ready flag in the STAT register.
const StatReady uint32 = 1 << 0

// CapWidthMask selects the width field of the CAP register.
const CapWidthMask uint32 = 0x3F

var (
	// ErrTimeout means a peripheral did not become ready within the poll
	// budget.
	ErrTimeout = errors.New("peripheral timeout")

	// ErrBusy is returned when a register block is already owned.
	ErrBusy = errors.New("register block already open")

	// ErrClosed is returned by a handle after Close.
	ErrClosed = errors.New("register block closed")

	// ErrAddress is returned for unaligned or unmapped accesses.
	ErrAddress = errors.New("bad register address")

	// ErrWidthMismatch means the hardware reports a different transform
	// width than the software was configured with.
	ErrWidthMismatch = errors.New("transform width mismatch")

	// ErrNoWidth means the hardware has no width readout.
	ErrNoWidth = errors.New("width readout not available")

	// ErrBusIdentity means a bus cannot identify a register claim because
	// its type is not comparable.
	ErrBusIdentity = errors.New("bus cannot hold a register claim")
)

// A Bus performs 32-bit register accesses. Every call reaches the device:
// accesses are never cached, merged or reordered. Open needs a comparable
// implementation, usually a pointer.
type Bus interface {
	Read32(addr uint32) (uint32, error)
	Write32(addr, v uint32) error
}
