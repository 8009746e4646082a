// Package config loads the harness configuration and builds the simulated
// SoC platform from it.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sarchlab/bitrev/accel"
	"github.com/sarchlab/bitrev/bitrev"
	"github.com/sarchlab/bitrev/reg"
	"github.com/sarchlab/bitrev/soc"
	"gopkg.in/yaml.v3"
)

// Backends.
const (
	BackendSim    = "sim"
	BackendDevMem = "devmem"
)

// Consoles.
const (
	ConsoleStdout = "stdout"
	ConsoleUART   = "uart"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config is the whole harness configuration.
type Config struct {
	Backend string `yaml:"backend"`

	// FrameBits is K. It must equal the width the accelerator was built
	// with; N = 2^K words are pushed per frame.
	FrameBits   uint `yaml:"frame_bits"`
	VerifyWidth bool `yaml:"verify_width"`

	Poll        reg.Budget    `yaml:"poll"`
	Map         soc.MemoryMap `yaml:"memory_map"`
	Console     string        `yaml:"console"`
	CoreFreqMHz float64       `yaml:"core_freq_mhz"`

	DevMem DevMemConfig `yaml:"devmem"`
	Sim    SimConfig    `yaml:"sim"`
}

// DevMemConfig configures the physical-memory backend.
type DevMemConfig struct {
	Path string `yaml:"path"`
}

// SimConfig configures the simulated platform.
type SimConfig struct {
	FreqMHz float64 `yaml:"freq_mhz"`

	// HardwareBits is the width the simulated accelerator is built with.
	// Unset means FrameBits.
	HardwareBits *uint `yaml:"hardware_bits"`

	Latency        int          `yaml:"latency"`
	ExposeWidth    bool         `yaml:"expose_width"`
	ROMName        string       `yaml:"rom_name"`
	UARTCharCycles int          `yaml:"uart_char_cycles"`
	Faults         accel.Faults `yaml:"faults"`
}

// Default returns the reference configuration: the simulated SoC with a
// 1024-point frame.
func Default() Config {
	return Config{
		Backend:   BackendSim,
		FrameBits: 10,
		Poll: reg.Budget{
			MaxAttempts: 1 << 20,
			Timeout:     time.Second,
		},
		Map:         soc.DefaultMemoryMap(),
		Console:     ConsoleUART,
		CoreFreqMHz: 20,
		DevMem: DevMemConfig{
			Path: reg.DefaultDevMem,
		},
		Sim: SimConfig{
			FreqMHz:        20,
			Latency:        2,
			ROMName:        "croc bit-reversal bring-up",
			UARTCharCycles: 4,
		},
	}
}

// Load reads a YAML file over the defaults and validates the result.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result. Unknown
// keys are rejected.
func Parse(data []byte) (Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// HardwareBits returns the width the simulated accelerator is built with.
func (c Config) HardwareBits() uint {
	if c.Sim.HardwareBits != nil {
		return *c.Sim.HardwareBits
	}

	return c.FrameBits
}

// Validate checks the configuration for values the harness cannot run with.
func (c Config) Validate() error {
	if err := bitrev.ValidFrameBits(c.FrameBits); err != nil {
		return fmt.Errorf("%w: frame_bits: %v", ErrInvalid, err)
	}

	if !c.Poll.Bounded() {
		return fmt.Errorf("%w: poll budget must bound attempts or time", ErrInvalid)
	}
	if c.Poll.MaxAttempts < 0 || c.Poll.Timeout < 0 {
		return fmt.Errorf("%w: poll budget is negative", ErrInvalid)
	}

	if c.CoreFreqMHz <= 0 {
		return fmt.Errorf("%w: core_freq_mhz must be positive", ErrInvalid)
	}

	for name, addr := range map[string]uint32{
		"uart":   c.Map.UART,
		"gpio":   c.Map.GPIO,
		"rom":    c.Map.ROM,
		"bitrev": c.Map.Bitrev,
	} {
		if addr%4 != 0 {
			return fmt.Errorf("%w: memory_map.%s 0x%08x is not word aligned",
				ErrInvalid, name, addr)
		}
	}

	switch c.Console {
	case ConsoleStdout, ConsoleUART:
	default:
		return fmt.Errorf("%w: console %q", ErrInvalid, c.Console)
	}

	switch c.Backend {
	case BackendSim:
		return c.validateSim()
	case BackendDevMem:
		if c.DevMem.Path == "" {
			return fmt.Errorf("%w: devmem.path is empty", ErrInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: backend %q", ErrInvalid, c.Backend)
	}
}

func (c Config) validateSim() error {
	if c.FrameBits > accel.MaxSimWidth {
		return fmt.Errorf("%w: frame_bits %d exceeds the simulated maximum %d",
			ErrInvalid, c.FrameBits, accel.MaxSimWidth)
	}
	if c.HardwareBits() > accel.MaxSimWidth {
		return fmt.Errorf("%w: sim.hardware_bits %d exceeds %d",
			ErrInvalid, c.HardwareBits(), accel.MaxSimWidth)
	}
	if c.Sim.FreqMHz <= 0 {
		return fmt.Errorf("%w: sim.freq_mhz must be positive", ErrInvalid)
	}
	if c.Sim.Latency < 0 || c.Sim.UARTCharCycles < 0 {
		return fmt.Errorf("%w: sim cycle counts must not be negative", ErrInvalid)
	}

	return nil
}
