// Package selftest drives one frame through the bit-reversal accelerator and
// checks every output word against the reference model.
//
// The protocol has two phases that never interleave. First the indices
// 0..N-1 are pushed in ascending order. Then, for each index in the same
// order, STAT is polled until a word is ready, OUT is popped once and the
// word is compared with bitrev.Reverse(i, K). The i-th word popped is
// assumed to belong to the i-th index pushed.
package selftest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sarchlab/bitrev/bitrev"
	"github.com/sarchlab/bitrev/reg"
	"github.com/sarchlab/bitrev/soc"
	"github.com/sarchlab/bitrev/trace"
)

// ErrUnboundedPoll is returned when the poll budget limits neither attempts
// nor time.
var ErrUnboundedPoll = errors.New("selftest: poll budget is unbounded")

// Peripheral is the accelerator as seen by the self-test. reg.Accel
// implements it.
type Peripheral interface {
	Push(word uint32) error
	Ready() (bool, error)
	Pop() (uint32, error)
}

type readyWaiter interface {
	WaitReady(ctx context.Context, budget reg.Budget) (int, error)
}

type widthReader interface {
	Width() (uint, error)
}

// Config parameterises one run.
type Config struct {
	// FrameBits is K; the frame holds 2^K indices.
	FrameBits uint

	// Poll bounds the wait for each output word.
	Poll reg.Budget

	// VerifyWidth compares FrameBits with the peripheral's width readout
	// before anything is pushed.
	VerifyWidth bool
}

type console struct {
	sink soc.Sink
	err  error
}

func (c *console) printf(format string, args ...any) {
	if c.err != nil {
		return
	}
	_, c.err = fmt.Fprintf(c.sink, format, args...)
}

func (c *console) flush() {
	if c.err != nil {
		return
	}
	c.err = c.sink.Flush()
}

// Run executes the self-test and prints progress, mismatches and the verdict
// to out. Mismatches do not make Run fail; they are counted in the report.
// Run returns an error when the run could not complete (bus fault, timeout,
// width mismatch, cancelled context) or the console failed. The same error
// is kept in Report.Err, so a report with a broken console never passes.
func Run(
	ctx context.Context,
	p Peripheral,
	out soc.Sink,
	cfg Config,
) (*Report, error) {
	if err := bitrev.ValidFrameBits(cfg.FrameBits); err != nil {
		return nil, err
	}
	if !cfg.Poll.Bounded() {
		return nil, ErrUnboundedPoll
	}

	t := &tester{
		p:   p,
		cfg: cfg,
		con: &console{sink: out},
		report: &Report{
			FrameSize: bitrev.FrameSize(cfg.FrameBits),
		},
	}

	start := time.Now()
	t.run(ctx)
	t.report.Elapsed = time.Since(start)

	if t.con.err != nil && t.report.Err == nil {
		t.report.Err = fmt.Errorf("console: %w", t.con.err)
		t.report.Reason = "console failure"
	}

	slog.Info("SelfTest",
		"Behavior", "Done",
		"FrameSize", t.report.FrameSize,
		"Errors", t.report.Errors,
		"Polls", t.report.Polls,
		"Elapsed", t.report.Elapsed,
		"Passed", t.report.Passed(),
	)

	return t.report, t.report.Err
}

type tester struct {
	p      Peripheral
	cfg    Config
	con    *console
	report *Report
}

func (t *tester) run(ctx context.Context) {
	t.con.printf("Bit-reversal self-test...\n")
	t.con.flush()

	if t.cfg.VerifyWidth {
		if err := t.checkWidth(); err != nil {
			t.abort(err, err.Error())
			return
		}
	}

	if err := t.push(); err != nil {
		t.abort(err, err.Error())
		return
	}

	if err := t.pullAndVerify(ctx); err != nil {
		return
	}

	t.con.flush()
	t.printVerdict()
}

func (t *tester) checkWidth() error {
	wr, ok := t.p.(widthReader)
	if !ok {
		return fmt.Errorf("verify width: %w", reg.ErrNoWidth)
	}

	hw, err := wr.Width()
	if err != nil {
		return fmt.Errorf("verify width: %w", err)
	}

	if hw != t.cfg.FrameBits {
		return fmt.Errorf("%w: hardware %d, software %d",
			reg.ErrWidthMismatch, hw, t.cfg.FrameBits)
	}

	return nil
}

func (t *tester) push() error {
	for i := 0; i < t.report.FrameSize; i++ {
		if err := t.p.Push(uint32(i)); err != nil {
			return fmt.Errorf("index %d: %w", i, err)
		}
	}

	return nil
}

func (t *tester) pullAndVerify(ctx context.Context) error {
	for i := 0; i < t.report.FrameSize; i++ {
		polls, err := t.waitReady(ctx)
		t.report.Polls += polls
		if err != nil {
			err = fmt.Errorf("word %d: %w", i, err)
			if errors.Is(err, reg.ErrTimeout) {
				t.abort(err, fmt.Sprintf("timeout waiting for word %d", i))
			} else {
				t.abort(err, err.Error())
			}
			return err
		}

		sample, err := t.p.Pop()
		if err != nil {
			err = fmt.Errorf("word %d: %w", i, err)
			t.abort(err, err.Error())
			return err
		}

		expect := bitrev.Reverse(uint32(i), t.cfg.FrameBits)
		if sample != expect {
			t.con.printf("Mismatch @%d: got %d, exp %d\n", i, sample, expect)
			t.report.Errors++
			t.report.Mismatches = append(t.report.Mismatches, Mismatch{
				Index:    i,
				Got:      sample,
				Expected: expect,
			})
			trace.Trace("SelfTest",
				"Behavior", "Mismatch",
				"Index", i,
				"Got", sample,
				"Expected", expect,
			)
		}
	}

	return nil
}

func (t *tester) waitReady(ctx context.Context) (int, error) {
	if w, ok := t.p.(readyWaiter); ok {
		return w.WaitReady(ctx, t.cfg.Poll)
	}

	return reg.Poll(ctx, t.cfg.Poll, t.p.Ready)
}

func (t *tester) printVerdict() {
	t.con.printf("%s\n", t.report.Verdict())
	t.con.flush()
}

func (t *tester) abort(err error, reason string) {
	t.report.Err = err
	t.report.Reason = reason
	t.con.printf("%s\n", t.report.Verdict())
	t.con.flush()
}
