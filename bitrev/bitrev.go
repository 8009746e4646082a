// Package bitrev is the software reference model of the bit-reversal
// accelerator. Everything here is a pure function of its arguments.
package bitrev

import (
	"errors"
	"fmt"
	"math/bits"
)

// MaxWidth is the widest transform the 32-bit register interface can carry.
const MaxWidth = 32

// MaxFrameBits is the widest frame whose size fits in an int on this host:
// 32 on 64-bit hosts, 30 on 32-bit ones.
const MaxFrameBits = min(MaxWidth, bits.UintSize-2)

// ErrWidth is returned for a transform width the registers cannot hold.
var ErrWidth = errors.New("bitrev: width out of range")

// ValidWidth reports whether k can be used as a transform width.
func ValidWidth(k uint) error {
	if k > MaxWidth {
		return fmt.Errorf("%w: %d > %d", ErrWidth, k, MaxWidth)
	}

	return nil
}

// ValidFrameBits reports whether a frame of 2^k indices can be streamed on
// this host.
func ValidFrameBits(k uint) error {
	if err := ValidWidth(k); err != nil {
		return err
	}

	if k > MaxFrameBits {
		return fmt.Errorf("%w: a %d-bit frame does not fit in an int on this host (max %d)",
			ErrWidth, k, MaxFrameBits)
	}

	return nil
}

// FrameSize returns N = 2^k, the number of indices in one frame. It panics
// when ValidFrameBits rejects k.
func FrameSize(k uint) int {
	if err := ValidFrameBits(k); err != nil {
		panic(err)
	}

	return 1 << k
}

// Reverse returns the low k bits of x in reverse order. Bits of x at or
// above k are ignored and the upper bits of the result are zero.
func Reverse(x uint32, k uint) uint32 {
	if err := ValidWidth(k); err != nil {
		panic(err)
	}

	if k == 0 {
		return 0
	}

	x = ((x & 0x55555555) << 1) | ((x & 0xAAAAAAAA) >> 1)
	x = ((x & 0x33333333) << 2) | ((x & 0xCCCCCCCC) >> 2)
	x = ((x & 0x0F0F0F0F) << 4) | ((x & 0xF0F0F0F0) >> 4)
	x = ((x & 0x00FF00FF) << 8) | ((x & 0xFF00FF00) >> 8)
	x = (x << 16) | (x >> 16)

	return x >> (MaxWidth - k)
}

// Table returns the expected output frame for width k: entry i holds
// Reverse(i, k).
func Table(k uint) []uint32 {
	n := FrameSize(k)
	table := make([]uint32, n)

	for i := range table {
		table[i] = Reverse(uint32(i), k)
	}

	return table
}
