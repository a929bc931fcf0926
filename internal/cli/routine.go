package cli

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/agentry"
	"github.com/aretw0/agentry/pkg/routine"
	"github.com/cenkalti/backoff/v5"
)

// ProbeResult reports a probe routine run.
type ProbeResult struct {
	Output   string
	Attempts int
	Failures int
	Err      error
	Elapsed  time.Duration
}

var errNotReady = errors.New("target not ready")

// Probe polls a simulated target that first answers on attempt readyAfter.
// Failed attempts are spaced with exponential backoff; limit bounds the whole run.
func Probe(ctx context.Context, rt *agentry.Runtime, readyAfter int, limit time.Duration) ProbeResult {
	start := time.Now()

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 10 * time.Millisecond
	b.MaxInterval = 200 * time.Millisecond

	p := &probe{readyAfter: readyAfter}
	h := agentry.SpawnRoutine[string](rt, p,
		routine.WithName("probe"),
		routine.WithTimeLimit(limit),
		routine.WithWait(routine.BackoffWait(b)),
	)

	out, err := h.Join(ctx)
	if ctx.Err() != nil {
		_ = h.Interrupt()
		out, err = h.Join(context.Background())
	}
	return ProbeResult{
		Output:   out,
		Attempts: p.attempts,
		Failures: h.Failures().Len(),
		Err:      err,
		Elapsed:  time.Since(start),
	}
}

type probe struct {
	readyAfter int
	attempts   int
}

func (p *probe) RepeatableRoutine(ctx context.Context, s *routine.Session) (string, bool, error) {
	p.attempts = s.Iteration()
	if s.Iteration() < p.readyAfter {
		return "", false, errNotReady
	}
	return "ready", true, nil
}
