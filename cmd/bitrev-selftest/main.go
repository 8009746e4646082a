// Command bitrev-selftest brings up the SoC and runs the bit-reversal
// accelerator self-test, either on the simulated platform or on real
// hardware through /dev/mem.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/bitrev/config"
	"github.com/sarchlab/bitrev/demo"
	"github.com/sarchlab/bitrev/periph"
	"github.com/sarchlab/bitrev/reg"
	"github.com/sarchlab/bitrev/selftest"
	"github.com/sarchlab/bitrev/soc"
	"github.com/sarchlab/bitrev/trace"
	"github.com/tebeka/atexit"
)

var (
	configFlag  = flag.String("config", "", "YAML configuration file")
	backendFlag = flag.String("backend", "", "override the backend (sim or devmem)")
	logFlag     = flag.String("log", "", "write a JSON event log to this file")
	monitorFlag = flag.Bool("monitor", false, "serve the akita monitor (sim only)")
	tableFlag   = flag.Bool("table", false, "print the memory map and the report as tables")
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fail(err)
	}

	setupLogging()

	bus := connect(cfg)

	env := demo.Env{
		Bus:     bus,
		Console: console(cfg, bus),
		Clock:   soc.NewHostClock(cfg.CoreFreqMHz * 1e6),
		Map:     cfg.Map,
		SelfTest: selftest.Config{
			FrameBits:   cfg.FrameBits,
			Poll:        cfg.Poll,
			VerifyWidth: cfg.VerifyWidth,
		},
	}

	if *tableFlag {
		printMemoryMap(cfg)
	}

	report, err := demo.Run(context.Background(), env)
	if report != nil && *tableFlag {
		if werr := report.WriteTable(os.Stdout); werr != nil {
			slog.Warn("Report", "Error", werr)
		}
	}
	if err != nil {
		fail(err)
	}

	if !report.Passed() {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "bitrev-selftest:", err)
	atexit.Exit(1)
}

func loadConfig() (config.Config, error) {
	cfg := config.Default()
	if *configFlag != "" {
		var err error
		cfg, err = config.Load(*configFlag)
		if err != nil {
			return cfg, err
		}
	}

	if *backendFlag != "" {
		cfg.Backend = *backendFlag
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func setupLogging() {
	if *logFlag == "" {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
			&slog.HandlerOptions{Level: slog.LevelWarn})))
		return
	}

	f, err := os.Create(*logFlag)
	if err != nil {
		fail(err)
	}
	atexit.Register(func() { f.Close() })

	slog.SetDefault(trace.NewJSONLogger(f, slog.LevelDebug))
}

// connect returns the register bus of the selected backend.
func connect(cfg config.Config) reg.Bus {
	if cfg.Backend == config.BackendDevMem {
		return openDevMem(cfg)
	}

	return buildPlatform(cfg)
}

func buildPlatform(cfg config.Config) reg.Bus {
	builder := config.MakePlatformBuilder().
		WithConfig(cfg).
		WithUARTSink(os.Stdout)

	var monitor *monitoring.Monitor
	if *monitorFlag {
		monitor = monitoring.NewMonitor()
		builder = builder.WithMonitor(monitor)
	}

	p := builder.Build("SoC")

	if monitor != nil {
		monitor.RegisterEngine(p.Engine)
		monitor.StartServer()
	}

	return p.Bus
}

func openDevMem(cfg config.Config) reg.Bus {
	if *monitorFlag {
		slog.Warn("Monitor", "Behavior", "Ignored", "Backend", cfg.Backend)
	}

	dm, err := reg.OpenDevMem(cfg.DevMem.Path)
	if err != nil {
		fail(err)
	}
	atexit.Register(func() { dm.Close() })

	for _, w := range windows(cfg) {
		if err := dm.Map(w.base, w.size); err != nil {
			fail(fmt.Errorf("%s: %w", w.name, err))
		}
	}

	return dm
}

type window struct {
	name       string
	base, size uint32
}

func windows(cfg config.Config) []window {
	return []window{
		{"uart", cfg.Map.UART, periph.UARTSize},
		{"gpio", cfg.Map.GPIO, periph.GPIOSize},
		{"rom", cfg.Map.ROM, config.ROMSize},
		{"bitrev", cfg.Map.Bitrev, reg.BitrevSize},
	}
}

// console picks the console sink. The simulated UART forwards what it
// shifts out to stdout.
func console(cfg config.Config, bus reg.Bus) soc.Sink {
	if cfg.Console == config.ConsoleUART {
		return soc.NewUARTConsole(bus, cfg.Map.UART, cfg.Poll)
	}

	return bufio.NewWriter(os.Stdout)
}

func printMemoryMap(cfg config.Config) {
	t := table.NewWriter()
	t.SetTitle(fmt.Sprintf("Memory map (%s)", cfg.Backend))
	t.AppendHeader(table.Row{"Device", "Base", "Size"})
	for _, w := range windows(cfg) {
		t.AppendRow(table.Row{
			w.name,
			fmt.Sprintf("0x%08x", w.base),
			fmt.Sprintf("0x%x", w.size),
		})
	}

	fmt.Println(t.Render())
}
