// Package demo runs the bring-up sequence: console greeting, GPIO loopback,
// integer square root timing, sleep, ROM identification and finally the
// bit-reversal self-test.
package demo

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sarchlab/bitrev/reg"
	"github.com/sarchlab/bitrev/selftest"
	"github.com/sarchlab/bitrev/soc"
)

// IsqrtInput is the operand of the timed square root.
const IsqrtInput uint32 = 1234567890

// Env is everything the sequence touches.
type Env struct {
	Bus      reg.Bus
	Console  soc.Sink
	Clock    soc.Clock
	Map      soc.MemoryMap
	SelfTest selftest.Config
}

// Run executes the sequence. It stops at the first bus or console failure.
// A self-test that completes with mismatches is not an error; the report
// says whether it passed.
func Run(ctx context.Context, env Env) (*selftest.Report, error) {
	d := &runner{env: env}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"hello", d.hello},
		{"gpio", d.gpio},
		{"isqrt", d.isqrt},
		{"sleep", d.tickTock},
		{"rom", d.romName},
	}

	for _, s := range steps {
		if err := s.fn(); err != nil {
			return nil, fmt.Errorf("demo %s: %w", s.name, err)
		}
	}

	accel, err := reg.Open(env.Bus, env.Map.Bitrev)
	if err != nil {
		return nil, fmt.Errorf("demo selftest: %w", err)
	}
	defer accel.Close()

	return selftest.Run(ctx, accel, env.Console, env.SelfTest)
}

type runner struct {
	env Env
}

func (d *runner) println(format string, args ...any) error {
	if _, err := fmt.Fprintf(d.env.Console, format+"\n", args...); err != nil {
		return err
	}

	return d.env.Console.Flush()
}

func (d *runner) hello() error {
	return d.println("Hello World!")
}

func (d *runner) gpio() error {
	g := soc.NewGPIO(d.env.Bus, d.env.Map.GPIO)

	if err := g.SetDirection(0xFFFF, 0x000F); err != nil {
		return err
	}
	if err := g.Write(0x0A); err != nil {
		return err
	}
	if err := g.Enable(0xFF); err != nil {
		return err
	}

	v, err := g.Read()
	if err != nil {
		return err
	}
	if err := d.println("GPIO (expect 0xA0): 0x%x", v); err != nil {
		return err
	}

	if err := g.Toggle(0x0F); err != nil {
		return err
	}

	v, err = g.Read()
	if err != nil {
		return err
	}

	return d.println("GPIO (expect 0x50): 0x%x", v)
}

func (d *runner) isqrt() error {
	start := d.env.Clock.Cycles()
	res := soc.Isqrt(IsqrtInput)
	cycles := d.env.Clock.Cycles() - start

	slog.Debug("Demo", "Behavior", "Isqrt", "Result", res, "Cycles", cycles)

	return d.println("isqrt result: 0x%x, cycles: 0x%x", res, cycles)
}

func (d *runner) tickTock() error {
	if err := d.println("Tick"); err != nil {
		return err
	}

	d.env.Clock.SleepMs(10)

	return d.println("Tock")
}

func (d *runner) romName() error {
	name, err := soc.ReadName(d.env.Bus, d.env.Map.ROM)
	if err != nil {
		return err
	}

	return d.println("%s", name)
}
