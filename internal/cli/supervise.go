package cli

import (
	"context"
	"time"

	"github.com/aretw0/agentry"
	"github.com/aretw0/agentry/pkg/agent"
	"github.com/aretw0/agentry/pkg/control"
)

// SuperviseResult reports a supervision run.
type SuperviseResult struct {
	Started  int
	Finished int
	Tracked  int
	Elapsed  time.Duration
}

// Supervise runs a supervisor keeping width workers busy until restarts
// worker terminations were observed, then shuts the tree down.
func Supervise(ctx context.Context, rt *agentry.Runtime, width, restarts int, work time.Duration) (SuperviseResult, error) {
	start := time.Now()
	sup := &supervisor{width: width, restarts: restarts, work: work}

	out, err := agent.Run(ctx, sup, rt.AgentOptions(agent.WithName("supervisor"))...)
	if err != nil {
		return SuperviseResult{}, err
	}
	return SuperviseResult{
		Started:  out.started,
		Finished: out.finished,
		Tracked:  out.tracked,
		Elapsed:  time.Since(start),
	}, nil
}

type supervisor struct {
	agent.Base[*supervisor]
	width    int
	restarts int
	work     time.Duration

	started  int
	finished int
	tracked  int
}

func (s *supervisor) Initialize(c *agent.Context[*supervisor]) agent.Next[*supervisor] {
	for i := 0; i < s.width; i++ {
		s.spawn(c)
	}
	return agent.Events[*supervisor]()
}

func (s *supervisor) spawn(c *agent.Context[*supervisor]) {
	s.started++
	agent.SpawnAgent(c, &worker{work: s.work}, "workers", agent.WithName("worker"))
}

func (s *supervisor) Finished(_ *agent.Relation, c *agent.Context[*supervisor]) {
	s.finished++
	if !c.IsActive() {
		return
	}
	if s.finished >= s.restarts {
		c.Logger().Info("restart budget reached, shutting down", "finished", s.finished)
		c.Shutdown()
		return
	}
	s.spawn(c)
}

func (s *supervisor) Finalize(c *agent.Context[*supervisor]) {
	s.tracked = c.Tracker().Len()
}

// worker simulates blocking work on the pool.
type worker struct {
	agent.Base[*worker]
	work time.Duration
}

func (w *worker) Begin() agent.Next[*worker] {
	return agent.DoSync[*worker](busy{})
}

type busy struct{}

func (busy) Once(w *worker, _ control.Interruptor) (agent.Next[*worker], error) {
	time.Sleep(w.work)
	return agent.Done[*worker](), nil
}
