package selftest_test

import (
	"bytes"
	"strings"

	"github.com/sarchlab/bitrev/bitrev"
	"github.com/sarchlab/bitrev/reg"
)

// fifoAccel answers the i-th pop with Reverse(i) in push order, optionally
// with faults.
type fifoAccel struct {
	width   uint
	corrupt map[int]uint32
	stallAt int
	hwWidth uint

	pushed []uint32
	popped int
}

func newFIFOAccel(width uint) *fifoAccel {
	return &fifoAccel{width: width, stallAt: -1}
}

func (f *fifoAccel) Push(word uint32) error {
	f.pushed = append(f.pushed, word)
	return nil
}

func (f *fifoAccel) Ready() (bool, error) {
	if f.popped == f.stallAt {
		return false, nil
	}
	return f.popped < len(f.pushed), nil
}

func (f *fifoAccel) Pop() (uint32, error) {
	i := f.popped
	f.popped++

	if f.popped == bitrev.FrameSize(f.width) {
		f.pushed = f.pushed[:0]
		f.popped = 0
	}

	if v, ok := f.corrupt[i]; ok {
		return v, nil
	}
	return bitrev.Reverse(uint32(i), f.width), nil
}

type widthAccel struct {
	*fifoAccel
}

func (w widthAccel) Width() (uint, error) {
	if w.hwWidth == 0 {
		return 0, reg.ErrNoWidth
	}
	return w.hwWidth, nil
}

// bufferSink records console output and how many times it was flushed.
type bufferSink struct {
	bytes.Buffer
	flushes int
}

func (b *bufferSink) Flush() error {
	b.flushes++
	return nil
}

func (b *bufferSink) Lines() []string {
	return strings.Split(strings.TrimRight(b.String(), "\n"), "\n")
}
