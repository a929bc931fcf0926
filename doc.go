/*
Package agentry is a runtime for cancellable, resumable and supervisable units
of concurrent execution.

A unit ("agent") is a value driven by its own goroutine through an explicit
state machine. States run cooperatively on that goroutine or are offloaded to a
bounded worker pool, and a unit can freely mix both. Mailbox units park on a
FIFO queue and handle messages one at a time. Units spawn and supervise
children and learn about their termination on their own loop.

Alongside units, routines repeat a body until it yields an output, bounded by
an optional time limit and abortable at any time; tasks run a body once under
the same rules.

# Packages

  - pkg/control: the interruption flag shared by a runtime instance and its handles.
  - pkg/agent: units, states, mailboxes and supervision.
  - pkg/routine: routines and tasks.
  - pkg/failures: the per-instance sink of non-fatal errors.
  - pkg/observability: Prometheus metrics fed by lifecycle hooks.
  - pkg/config: YAML/JSON configuration.

# Usage

	rt := agentry.New(agentry.WithLogger(logger), agentry.WithWorkers(4))

	addr := agentry.Spawn(rt, &Counter{})
	_ = addr.Send(Increment{})
	_ = addr.Interrupt()
	counter, err := addr.Join(ctx)

	h := agentry.SpawnRoutine[string](rt, &Poller{}, routine.WithTimeLimit(5*time.Second))
	out, err := h.Join(ctx)

# Shutdown

Stopping is cooperative. A graceful stop lets a unit drain its mailbox and its
children before finalizing. A forced stop cancels the context of the step in
progress and aborts routines, but never preempts an offloaded step: the unit
waits for it to return. Finalize runs exactly once in every case.
*/
package agentry
