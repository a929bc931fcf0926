package agent

import (
	"context"
	"log/slog"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/failures"
	"github.com/aretw0/agentry/pkg/workers"
	"github.com/google/uuid"
)

// Context is the runtime state of one unit. It is handed to every lifecycle
// method and state and must only be used from the unit's own loop.
type Context[T any] struct {
	id   uuid.UUID
	name string
	unit T

	controller *control.Controller
	mailbox    *Mailbox[Envelope[T]]
	exits      *Mailbox[uuid.UUID]
	tracker    *Tracker
	address    *Address[T]

	failures    *failures.Failures
	failureOpts []failures.Option
	baseLogger  *slog.Logger
	logger      *slog.Logger
	pool        *workers.Pool
	hooks       domain.LifecycleHooks
	hookCtx     context.Context

	status         domain.Status
	interrupted    bool
	forcedChildren bool
	closing        bool
}

// ID returns the unit identity.
func (c *Context[T]) ID() uuid.UUID { return c.id }

// Name returns the unit name.
func (c *Context[T]) Name() string { return c.name }

// Unit returns the unit driven by this context.
func (c *Context[T]) Unit() T { return c.unit }

// Address returns the handle of the unit, e.g. to hand it to children.
func (c *Context[T]) Address() *Address[T] { return c.address }

// Interruptor returns a handle to stop this unit.
func (c *Context[T]) Interruptor() control.Interruptor { return c.controller.Interruptor() }

// IsActive reports whether no stop was requested.
func (c *Context[T]) IsActive() bool { return c.controller.IsActive() }

// Status returns the current lifecycle status.
func (c *Context[T]) Status() domain.Status { return c.status }

// Logger returns the unit logger.
func (c *Context[T]) Logger() *slog.Logger { return c.logger }

// Failures returns the non-fatal errors sink.
func (c *Context[T]) Failures() *failures.Failures { return c.failures }

// Tracker returns the live children of the unit.
func (c *Context[T]) Tracker() *Tracker { return c.tracker }

// Shutdown closes the mailbox and requests a graceful stop.
// Queued messages are still handled.
func (c *Context[T]) Shutdown() {
	c.mailbox.Close()
	_ = c.controller.Stop(false)
}

// NextEvent waits for and dispatches the next envelope.
// Once the mailbox is closed and empty it requests a graceful stop and reports
// drained; later calls keep reporting drained without side effects.
// It also returns, without dispatching, when a child terminated or a stop arrived.
func (c *Context[T]) NextEvent(ctx context.Context) (drained bool, err error) {
	for {
		if c.serviceExits() {
			return false, nil
		}
		if env, ok := c.mailbox.TryPop(); ok {
			return false, c.dispatch(ctx, env)
		}
		if c.mailbox.Drained() {
			_ = c.controller.Stop(false)
			return true, nil
		}

		var stopped <-chan struct{}
		if !c.interrupted {
			stopped = c.controller.Done()
		}
		select {
		case <-c.mailbox.Ready():
		case <-c.exits.Ready():
		case <-stopped:
			return false, nil
		case <-ctx.Done():
			return false, nil
		}
	}
}

func (c *Context[T]) dispatch(ctx context.Context, env Envelope[T]) error {
	return env.Message.Handle(ctx, c.unit, c)
}

// serviceExits handles every queued child termination. It reports whether any was handled.
func (c *Context[T]) serviceExits() bool {
	handled := false
	for {
		id, ok := c.exits.TryPop()
		if !ok {
			return handled
		}
		handled = true

		rel := c.tracker.remove(id)
		if rel == nil {
			continue
		}
		c.logger.Debug("child finished", "child_id", id, "group", rel.Group, "tracked", c.tracker.Len())
		if c.hooks.OnChildFinished != nil {
			c.hooks.OnChildFinished(c.hookCtx, &domain.ChildEvent{
				EventBase: domain.NewEventBase(domain.EventChildFinished, c.id.String(), c.name),
				ChildID:   id.String(),
				Group:     rel.Group,
				Tracked:   c.tracker.Len(),
			})
		}
		if sup, ok := any(c.unit).(Supervisor[T]); ok {
			sup.Finished(rel, c)
		}
	}
}

// awaitChild blocks until a child terminates or ctx is done.
func (c *Context[T]) awaitChild(ctx context.Context) {
	select {
	case <-c.exits.Ready():
	case <-ctx.Done():
	}
	c.serviceExits()
}

func (c *Context[T]) setStatus(to domain.Status, err error) {
	from := c.status
	c.status = to
	c.logger.Debug("unit status", "from", from, "to", to)
	if c.hooks.OnStatus != nil {
		c.hooks.OnStatus(c.hookCtx, &domain.StatusEvent{
			EventBase: domain.NewEventBase(domain.EventStatus, c.id.String(), c.name),
			From:      from,
			To:        to,
			Err:       err,
		})
	}
}

func (c *Context[T]) emitStep(outcome domain.StepOutcome, err error) {
	if c.hooks.OnStep != nil {
		c.hooks.OnStep(c.hookCtx, &domain.StepEvent{
			EventBase: domain.NewEventBase(domain.EventStep, c.id.String(), c.name),
			Outcome:   outcome,
			Err:       err,
		})
	}
}
