package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/aretw0/agentry"
	"github.com/aretw0/agentry/pkg/agent"
	"golang.org/x/sync/errgroup"
)

// BenchResult reports one counting style.
type BenchResult struct {
	Style   string
	Count   int
	Elapsed time.Duration
}

// Bench counts to n twice concurrently: once as a chain of cooperative
// states, once as n messages handled by a mailbox unit.
func Bench(ctx context.Context, rt *agentry.Runtime, n int) ([]BenchResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("count must be positive, got %d", n)
	}
	results := make([]BenchResult, 2)
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		start := time.Now()
		out, err := agent.Run(ctx, &stepCounter{target: n}, rt.AgentOptions(agent.WithName("fsm-counter"))...)
		if err != nil {
			return fmt.Errorf("fsm counter: %w", err)
		}
		results[0] = BenchResult{Style: "state machine", Count: out.n, Elapsed: time.Since(start)}
		return nil
	})

	g.Go(func() error {
		start := time.Now()
		addr := agentry.Spawn(rt, &mailCounter{}, agent.WithName("mailbox-counter"))
		for i := 0; i < n; i++ {
			if err := addr.Send(tick{}); err != nil {
				return fmt.Errorf("mailbox counter: %w", err)
			}
		}
		if err := addr.Interrupt(); err != nil {
			return err
		}
		out, err := addr.Join(ctx)
		if err != nil {
			return fmt.Errorf("mailbox counter: %w", err)
		}
		results[1] = BenchResult{Style: "mailbox", Count: out.n, Elapsed: time.Since(start)}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type stepCounter struct {
	agent.Base[*stepCounter]
	target int
	n      int
}

func (s *stepCounter) Begin() agent.Next[*stepCounter] {
	return agent.DoAsync[*stepCounter](countStep{})
}

type countStep struct{}

func (countStep) Once(_ context.Context, s *stepCounter, _ *agent.Context[*stepCounter]) (agent.Next[*stepCounter], error) {
	s.n++
	if s.n >= s.target {
		return agent.Done[*stepCounter](), nil
	}
	return agent.DoAsync[*stepCounter](countStep{}), nil
}

type mailCounter struct {
	agent.Base[*mailCounter]
	n int
}

type tick struct{}

func (tick) Handle(_ context.Context, c *mailCounter, _ *agent.Context[*mailCounter]) error {
	c.n++
	return nil
}
