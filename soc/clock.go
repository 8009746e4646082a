package soc

import "time"

// A Clock provides the cycle counter and the millisecond sleep.
type Clock interface {
	Cycles() uint64
	SleepMs(ms uint32)
}

// HostClock derives cycles from the host's monotonic clock at a nominal
// core frequency.
type HostClock struct {
	freqHz float64
	start  time.Time
}

// NewHostClock returns a clock counting at freqHz from now.
func NewHostClock(freqHz float64) *HostClock {
	return &HostClock{freqHz: freqHz, start: time.Now()}
}

// Cycles returns the cycles elapsed since the clock was created.
func (c *HostClock) Cycles() uint64 {
	return uint64(time.Since(c.start).Seconds() * c.freqHz)
}

// SleepMs blocks for ms milliseconds.
func (c *HostClock) SleepMs(ms uint32) {
	time.Sleep(time.Duration(ms) * time.Millisecond)
}
