package agent

import (
	"context"
	"reflect"
	"time"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/google/uuid"
)

// Spawn starts unit on its own goroutine and returns its handle.
func Spawn[T Agent[T]](unit T, opts ...Option) *Address[T] {
	return spawn(unit, opts)
}

// Run drives unit on a fresh goroutine and waits for it to finalize.
// Cancelling ctx forces the unit to stop; Run still waits for Finalize.
func Run[T Agent[T]](ctx context.Context, unit T, opts ...Option) (T, error) {
	addr := spawn(unit, append(opts, WithContext(ctx)))
	return addr.Join(context.Background())
}

func spawn[T Agent[T]](unit T, opts []Option) *Address[T] {
	o := newOptions(opts)

	name := o.name
	if name == "" {
		name = kindName(unit)
	}
	controller := control.NewController()
	mailbox := NewMailbox[Envelope[T]]()

	addr := &Address[T]{
		id:          o.id,
		name:        name,
		mailbox:     mailbox,
		interruptor: controller.Interruptor(),
		failures:    o.failures,
		done:        make(chan struct{}),
	}
	c := &Context[T]{
		id:          o.id,
		name:        name,
		unit:        unit,
		controller:  controller,
		mailbox:     mailbox,
		exits:       NewMailbox[uuid.UUID](),
		tracker:     newTracker(),
		address:     addr,
		failures:    o.failures,
		failureOpts: o.failureOpts,
		baseLogger:  o.logger,
		logger:      o.logger.With("unit", name, "unit_id", o.id),
		pool:        o.pool,
		hooks:       o.hooks,
		hookCtx:     context.WithoutCancel(o.ctx),
		status:      domain.StatusCreated,
	}

	r := &runner[T]{c: c, parent: o.ctx, output: o.output, onExit: o.onExit}
	go r.run()
	return addr
}

type runner[T Agent[T]] struct {
	c      *Context[T]
	parent context.Context
	output []outputHook
	onExit func()
}

func (r *runner[T]) run() {
	c := r.c
	unit := c.unit
	started := time.Now()

	// Stop escalation from the parent context.
	stopAfter := context.AfterFunc(r.parent, func() {
		_ = c.controller.Stop(true)
	})
	defer stopAfter()

	reg, err := c.controller.TakeRegistration()
	if err != nil {
		// Unreachable: the controller is private to this loop.
		panic(err)
	}
	ctx := reg.Context()

	c.setStatus(domain.StatusInitializing, nil)
	next := unit.Initialize(c)
	c.setStatus(domain.StatusRunning, nil)

	termErr := r.loop(ctx, next)

	c.closing = true
	c.mailbox.Close()
	r.shutdownChildren(ctx)

	c.setStatus(domain.StatusFinalizing, termErr)
	unit.Finalize(c)
	for _, hook := range r.output {
		c.failures.Record("output hook", hook(c.hookCtx, unit))
	}
	reg.Release()

	c.setStatus(domain.StatusTerminated, termErr)
	c.logger.Debug("unit terminated", "uptime", time.Since(started).Round(time.Millisecond), "failures", c.failures.Len(), "err", termErr)

	c.address.result = unit
	c.address.err = domain.Failed(termErr)
	close(c.address.done)

	if r.onExit != nil {
		r.onExit()
	}
}

// loop drives the state machine until its terminal transition and returns the Fail cause, if any.
func (r *runner[T]) loop(ctx context.Context, next Next[T]) error {
	c := r.c
	unit := c.unit

	for {
		c.serviceExits()
		r.observeStop()

		switch next.kind {
		case kindProcess:
			tr := next.performer.Perform(ctx, unit, c)
			switch tr.kind {
			case transitionNext:
				c.emitStep(domain.StepNext, nil)
				next = tr.next
			case transitionDone:
				c.emitStep(domain.StepDone, nil)
				next = Done[T]()
			case transitionCrashed:
				c.emitStep(domain.StepCrashed, tr.err)
				c.logger.Warn("state crashed", "err", tr.err)
				next = next.performer.Fallback(unit, tr.err)
			}

		case kindEvents:
			if c.interrupted && (c.controller.Forced() || c.mailbox.Drained()) {
				if c.controller.Forced() || c.tracker.IsEmpty() {
					return nil
				}
				c.awaitChild(ctx)
				continue
			}
			if err := unit.Event(ctx, c); err != nil {
				c.failures.Record("event", err)
			}

		case kindInterrupt:
			if !c.interrupted {
				r.interrupt()
			}
			next = Events[T]()

		case kindFail:
			return next.err

		default:
			return nil
		}
	}
}

// observeStop runs the interrupt path the first time the stop flag is seen,
// and escalates to the children once the stop turns forced.
func (r *runner[T]) observeStop() {
	c := r.c
	if !c.interrupted && !c.controller.IsActive() {
		r.interrupt()
	}
	if c.interrupted && c.controller.Forced() && !c.forcedChildren {
		c.forcedChildren = true
		c.tracker.InterruptAll(true)
	}
}

func (r *runner[T]) interrupt() {
	c := r.c
	c.interrupted = true
	c.setStatus(domain.StatusInterrupting, nil)
	c.unit.Interrupt(c)
	c.tracker.InterruptAll(c.controller.Forced())
}

// shutdownChildren stops and awaits every remaining child. Finished still fires for each.
// A forced stop arriving meanwhile is passed on to the children.
func (r *runner[T]) shutdownChildren(ctx context.Context) {
	c := r.c
	if c.tracker.IsEmpty() {
		return
	}
	c.tracker.InterruptAll(c.controller.Forced())

	aborted := ctx.Done()
	for !c.tracker.IsEmpty() {
		select {
		case <-c.exits.Ready():
			c.serviceExits()
		case <-aborted:
			aborted = nil
			if !c.forcedChildren {
				c.forcedChildren = true
				c.tracker.InterruptAll(true)
			}
		}
	}
}

// kindName returns the type name of unit without pointer indirections.
func kindName(unit any) string {
	t := reflect.TypeOf(unit)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return "unit"
	}
	if name := t.Name(); name != "" {
		return name
	}
	return t.String()
}
