package selftest

import (
	"fmt"
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Mismatch records one output word that disagreed with the reference.
type Mismatch struct {
	Index    int
	Got      uint32
	Expected uint32
}

// Report is the outcome of one run.
type Report struct {
	FrameSize  int
	Errors     int
	Mismatches []Mismatch
	Polls      int
	Elapsed    time.Duration

	// Err is set when the run stopped before all words were checked or the
	// console failed, and Reason is the short form used in the verdict.
	Err    error
	Reason string
}

// Passed is true iff every word was checked, none mismatched and the
// verdict reached the console.
func (r *Report) Passed() bool {
	return r.Err == nil && r.Errors == 0
}

// Verdict returns the final console line without the newline.
func (r *Report) Verdict() string {
	switch {
	case r.Err != nil:
		return fmt.Sprintf("Bit-reversal test FAILED (%s)", r.Reason)
	case r.Errors == 0:
		return fmt.Sprintf("Bit-reversal test PASSED for %d-point frame", r.FrameSize)
	default:
		return fmt.Sprintf("Bit-reversal test FAILED (%d errors)", r.Errors)
	}
}

// WriteTable renders the mismatches and a summary as text tables.
func (r *Report) WriteTable(w io.Writer) error {
	summary := table.NewWriter()
	summary.SetTitle("Bit-reversal self-test")
	summary.AppendRows([]table.Row{
		{"Frame size", r.FrameSize},
		{"Mismatches", r.Errors},
		{"Status polls", r.Polls},
		{"Elapsed", r.Elapsed.Round(time.Microsecond)},
		{"Verdict", r.Verdict()},
	})

	if _, err := fmt.Fprintln(w, summary.Render()); err != nil {
		return err
	}

	if len(r.Mismatches) == 0 {
		return nil
	}

	detail := table.NewWriter()
	detail.SetTitle("Mismatches")
	detail.AppendHeader(table.Row{"Index", "Got", "Expected", "Diff bits"})
	for _, m := range r.Mismatches {
		detail.AppendRow(table.Row{
			m.Index,
			fmt.Sprintf("0x%x", m.Got),
			fmt.Sprintf("0x%x", m.Expected),
			fmt.Sprintf("0x%x", m.Got^m.Expected),
		})
	}

	_, err := fmt.Fprintln(w, detail.Render())

	return err
}
