package bus

import "github.com/sarchlab/akita/v4/sim"

// Builder creates bus masters.
type Builder struct {
	engine sim.Engine
	freq   sim.Freq
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the master.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// Build creates a master with nothing mapped.
func (b Builder) Build(name string) *Master {
	if b.engine == nil {
		panic("bus: engine is not set")
	}

	m := &Master{
		engine:  b.engine,
		pending: make(map[string]sim.Msg),
		waiting: make(map[string]bool),
	}
	m.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, m)

	return m
}
