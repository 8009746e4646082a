package reg

import (
	"context"
	"fmt"
	"reflect"
	"sync"
)

type claimKey struct {
	bus  Bus
	base uint32
}

var (
	claimsMu sync.Mutex
	claims   = map[claimKey]bool{}
)

// Accel is the owning handle of one bit-reversal register block. Only the
// handle returned by Open may touch the block until it is closed.
type Accel struct {
	bus  Bus
	base uint32
	open bool
}

// Open claims the register block at base on bus. The bus identifies the
// claim, so its dynamic type must be comparable; pointer types always are.
func Open(bus Bus, base uint32) (*Accel, error) {
	if base%4 != 0 {
		return nil, fmt.Errorf("%w: base 0x%08x is not word aligned", ErrAddress, base)
	}

	if bus == nil || !reflect.TypeOf(bus).Comparable() {
		return nil, fmt.Errorf("%w: %T", ErrBusIdentity, bus)
	}

	claimsMu.Lock()
	defer claimsMu.Unlock()

	key := claimKey{bus: bus, base: base}
	if claims[key] {
		return nil, fmt.Errorf("%w: 0x%08x", ErrBusy, base)
	}
	claims[key] = true

	return &Accel{bus: bus, base: base, open: true}, nil
}

// Close releases the register block. Closing twice is a no-op.
func (a *Accel) Close() {
	claimsMu.Lock()
	defer claimsMu.Unlock()

	if !a.open {
		return
	}
	a.open = false
	delete(claims, claimKey{bus: a.bus, base: a.base})
}

// Base returns the address of the IN register.
func (a *Accel) Base() uint32 {
	return a.base
}

// Push writes one word to IN.
func (a *Accel) Push(word uint32) error {
	if !a.open {
		return ErrClosed
	}

	if err := a.bus.Write32(a.base+OffIn, word); err != nil {
		return fmt.Errorf("push 0x%x: %w", word, err)
	}

	return nil
}

// Ready reads STAT and reports whether an output word can be popped.
func (a *Accel) Ready() (bool, error) {
	if !a.open {
		return false, ErrClosed
	}

	stat, err := a.bus.Read32(a.base + OffStat)
	if err != nil {
		return false, fmt.Errorf("read status: %w", err)
	}

	return stat&StatReady != 0, nil
}

// Pop reads OUT. The read consumes the word, so callers must have observed
// Ready first.
func (a *Accel) Pop() (uint32, error) {
	if !a.open {
		return 0, ErrClosed
	}

	v, err := a.bus.Read32(a.base + OffOut)
	if err != nil {
		return 0, fmt.Errorf("pop: %w", err)
	}

	return v, nil
}

// WaitReady busy-polls STAT within budget and returns the number of reads.
func (a *Accel) WaitReady(ctx context.Context, budget Budget) (int, error) {
	return Poll(ctx, budget, a.Ready)
}

// Width reads the CAP register. A zero readout means the block does not
// implement it, which is reported as ErrNoWidth.
func (a *Accel) Width() (uint, error) {
	if !a.open {
		return 0, ErrClosed
	}

	capReg, err := a.bus.Read32(a.base + OffCap)
	if err != nil {
		return 0, fmt.Errorf("read capability: %w", err)
	}

	width := capReg & CapWidthMask
	if width == 0 {
		return 0, ErrNoWidth
	}

	return uint(width), nil
}
