package config

import (
	"io"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"
	"github.com/sarchlab/bitrev/accel"
	"github.com/sarchlab/bitrev/bus"
	"github.com/sarchlab/bitrev/periph"
	"github.com/sarchlab/bitrev/reg"
)

// ROMSize is the size of the user ROM window.
const ROMSize uint32 = 0x1000

// Platform is the simulated SoC: one bus master and the devices it decodes.
type Platform struct {
	Engine sim.Engine
	Bus    *bus.Master
	Accel  *accel.Comp
	GPIO   *periph.GPIO
	ROM    *periph.ROM
	UART   *periph.UART
}

// PlatformBuilder can build simulated platforms.
type PlatformBuilder struct {
	engine   sim.Engine
	cfg      Config
	uartSink io.Writer
	monitor  *monitoring.Monitor
}

// MakePlatformBuilder returns a builder using the default configuration.
func MakePlatformBuilder() PlatformBuilder {
	return PlatformBuilder{
		cfg:      Default(),
		uartSink: io.Discard,
	}
}

// WithEngine sets the engine. A serial engine is created if none is given.
func (b PlatformBuilder) WithEngine(engine sim.Engine) PlatformBuilder {
	b.engine = engine
	return b
}

// WithConfig sets the configuration.
func (b PlatformBuilder) WithConfig(cfg Config) PlatformBuilder {
	b.cfg = cfg
	return b
}

// WithUARTSink sets where transmitted UART bytes go.
func (b PlatformBuilder) WithUARTSink(w io.Writer) PlatformBuilder {
	b.uartSink = w
	return b
}

// WithMonitor registers every component with the monitor.
func (b PlatformBuilder) WithMonitor(monitor *monitoring.Monitor) PlatformBuilder {
	b.monitor = monitor
	return b
}

// Build creates and wires the platform.
func (b PlatformBuilder) Build(name string) *Platform {
	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	freq := sim.Freq(b.cfg.Sim.FreqMHz) * sim.MHz
	m := b.cfg.Map

	p := &Platform{Engine: engine}

	p.Bus = bus.Builder{}.
		WithEngine(engine).
		WithFreq(freq).
		Build(name + ".Bus")

	p.Accel = accel.MakeBuilder().
		WithEngine(engine).
		WithFreq(freq).
		WithBase(m.Bitrev).
		WithWidth(b.cfg.HardwareBits()).
		WithLatency(b.cfg.Sim.Latency).
		WithWidthReadout(b.cfg.Sim.ExposeWidth).
		WithFaults(b.cfg.Sim.Faults).
		Build(name + ".Bitrev")

	p.GPIO = periph.NewGPIO(name+".GPIO", engine, freq, m.GPIO)
	p.ROM = periph.NewROM(name+".ROM", engine, freq, m.ROM, ROMSize,
		periph.StringImage(b.cfg.Sim.ROMName))
	p.UART = periph.NewUART(name+".UART", engine, freq, m.UART,
		b.cfg.Sim.UARTCharCycles, b.uartSink)

	p.Bus.MapDevice("Bitrev", m.Bitrev, reg.BitrevSize, p.Accel.Top())
	p.Bus.MapDevice("GPIO", m.GPIO, periph.GPIOSize, p.GPIO.Top())
	p.Bus.MapDevice("ROM", m.ROM, ROMSize, p.ROM.Top())
	p.Bus.MapDevice("UART", m.UART, periph.UARTSize, p.UART.Top())

	if b.monitor != nil {
		b.monitor.RegisterComponent(p.Bus)
		b.monitor.RegisterComponent(p.Accel)
		b.monitor.RegisterComponent(p.GPIO)
		b.monitor.RegisterComponent(p.ROM)
		b.monitor.RegisterComponent(p.UART)
	}

	return p
}
