package reg

import (
	"context"
	"fmt"
	"time"
)

// Budget bounds a busy-poll. A zero field leaves that dimension unbounded.
type Budget struct {
	MaxAttempts int           `yaml:"max_attempts"`
	Timeout     time.Duration `yaml:"timeout"`
}

// Bounded reports whether the budget limits the poll at all.
func (b Budget) Bounded() bool {
	return b.MaxAttempts > 0 || b.Timeout > 0
}

// Poll calls ready back to back until it reports true. It returns the number
// of calls made. When the budget runs out the error wraps ErrTimeout; a
// cancelled context returns ctx.Err(); an error from ready is returned as is.
func Poll(
	ctx context.Context,
	budget Budget,
	ready func() (bool, error),
) (int, error) {
	var deadline time.Time
	if budget.Timeout > 0 {
		deadline = time.Now().Add(budget.Timeout)
	}

	attempts := 0
	for {
		if err := ctx.Err(); err != nil {
			return attempts, err
		}

		ok, err := ready()
		attempts++
		if err != nil {
			return attempts, err
		}
		if ok {
			return attempts, nil
		}

		if budget.MaxAttempts > 0 && attempts >= budget.MaxAttempts {
			return attempts, fmt.Errorf("%w after %d polls", ErrTimeout, attempts)
		}
		if !deadline.IsZero() && time.Now().After(deadline) {
			return attempts, fmt.Errorf("%w after %s", ErrTimeout, budget.Timeout)
		}
	}
}
