package reg

import (
	"fmt"
	"log/slog"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DefaultDevMem is the physical memory device on Linux.
const DefaultDevMem = "/dev/mem"

type window struct {
	base, size uint32
	pageOff    uint32
	mem        []byte
}

func (w *window) contains(addr uint32) bool {
	return addr >= w.base && addr-w.base < w.size
}

// DevMem reaches physical registers through mappings of a memory device.
// Loads and stores go through sync/atomic so the compiler can neither elide
// nor reorder them.
type DevMem struct {
	file    *os.File
	windows []*window
}

// OpenDevMem opens the memory device at path (usually DefaultDevMem).
func OpenDevMem(path string) (*DevMem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	return &DevMem{file: f}, nil
}

// Map makes the physical range [base, base+size) accessible. The mapping is
// widened to whole pages.
func (d *DevMem) Map(base, size uint32) error {
	if base%4 != 0 || size == 0 {
		return fmt.Errorf("%w: window 0x%08x+0x%x", ErrAddress, base, size)
	}

	page := uint32(os.Getpagesize())
	pageBase := base &^ (page - 1)
	pageOff := base - pageBase
	length := (pageOff + size + page - 1) &^ (page - 1)

	mem, err := unix.Mmap(int(d.file.Fd()), int64(pageBase), int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return fmt.Errorf("mmap 0x%08x: %w", base, err)
	}

	d.windows = append(d.windows, &window{
		base:    base,
		size:    size,
		pageOff: pageOff,
		mem:     mem,
	})
	slog.Debug("DevMem", "Behavior", "Map", "Base", base, "Size", size)

	return nil
}

// Close unmaps every window and closes the device.
func (d *DevMem) Close() error {
	for _, w := range d.windows {
		if err := unix.Munmap(w.mem); err != nil {
			slog.Warn("DevMem", "Behavior", "Munmap", "Base", w.base, "Error", err)
		}
	}
	d.windows = nil

	return d.file.Close()
}

func (d *DevMem) word(addr uint32) (*uint32, error) {
	if addr%4 != 0 {
		return nil, fmt.Errorf("%w: 0x%08x is not word aligned", ErrAddress, addr)
	}

	for _, w := range d.windows {
		if w.contains(addr) {
			off := w.pageOff + addr - w.base
			return (*uint32)(unsafe.Pointer(&w.mem[off])), nil
		}
	}

	return nil, fmt.Errorf("%w: 0x%08x is not mapped", ErrAddress, addr)
}

// Read32 loads the register at addr.
func (d *DevMem) Read32(addr uint32) (uint32, error) {
	p, err := d.word(addr)
	if err != nil {
		return 0, err
	}

	return atomic.LoadUint32(p), nil
}

// Write32 stores v to the register at addr.
func (d *DevMem) Write32(addr, v uint32) error {
	p, err := d.word(addr)
	if err != nil {
		return err
	}

	atomic.StoreUint32(p, v)

	return nil
}
