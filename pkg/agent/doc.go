// Package agent runs units of concurrent execution as explicit state machines.
//
// A unit is any type implementing Agent, usually a struct embedding Base:
//
//	type Counter struct {
//		agent.Base[*Counter]
//		N int
//	}
//
//	addr := agent.Spawn(&Counter{})
//	_ = addr.Do(func(ctx context.Context, c *Counter, _ *agent.Context[*Counter]) error {
//		c.N++
//		return nil
//	})
//	_ = addr.Interrupt()
//	counter, err := addr.Join(ctx)
//
// Each unit owns one goroutine. Its loop resolves the current Next:
//
//   - DoAsync states run cooperatively on the unit goroutine.
//   - DoSync states are offloaded to a bounded worker pool.
//   - Events parks the unit on its mailbox and dispatches messages in FIFO order.
//   - Done, Fail and Interrupt lead to the terminal path.
//
// Whatever the path, Finalize runs exactly once, after every supervised child
// terminated, and the unit itself becomes the output returned by Join.
//
// Units spawn children with SpawnAgent. Child terminations are delivered to the
// parent's own loop, so Supervisor.Finished never races with message handlers.
package agent
