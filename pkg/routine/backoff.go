package routine

import (
	"context"

	"github.com/cenkalti/backoff/v5"
)

// BackoffWait spaces retries after failures with b and uses the session
// interval after successful iterations. When b gives up the routine is
// interrupted gracefully.
func BackoffWait(b backoff.BackOff) WaitFunc {
	return func(ctx context.Context, succeed bool, s *Session) {
		if succeed {
			b.Reset()
			s.Sleep(ctx, s.Interval())
			return
		}
		d := b.NextBackOff()
		if d == backoff.Stop {
			s.Logger().Warn("routine gave up retrying", "iteration", s.Iteration())
			_ = s.Interruptor().Stop(false)
			return
		}
		s.Sleep(ctx, d)
	}
}
