package routine

import (
	"context"
	"errors"
	"reflect"
	"time"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/failures"
	"github.com/google/uuid"
)

// Routine is a repeatable body producing an output of type O.
//
// RepeatableRoutine returns (out, true, nil) to finish, (_, false, nil) to run
// again after the interval, or an error, which is recorded and retried.
// Blocking work must observe ctx: it is cancelled when the time limit elapses
// or a forced stop aborts the routine.
type Routine[O any] interface {
	RepeatableRoutine(ctx context.Context, s *Session) (O, bool, error)
}

// Initializer prepares the session before the abortable region starts.
type Initializer interface {
	InitializeRoutine(ctx context.Context, s *Session) error
}

// TimeLimiter bounds the abortable region. Zero means no limit.
type TimeLimiter interface {
	TimeLimit() time.Duration
}

// Finalizer receives the outcome once the region resolved.
type Finalizer[O any] interface {
	Finalize(ctx context.Context, out O, err error) error
}

// Waiter pauses between iterations.
type Waiter interface {
	RoutineWait(ctx context.Context, succeed bool, s *Session)
}

// Handle controls a spawned routine.
type Handle[O any] struct {
	id          uuid.UUID
	interruptor control.Interruptor
	failures    *failures.Failures
	done        chan struct{}

	out O
	err error
}

// ID returns the routine identity.
func (h *Handle[O]) ID() uuid.UUID { return h.id }

// Interruptor returns a handle to stop the routine.
func (h *Handle[O]) Interruptor() control.Interruptor { return h.interruptor }

// Interrupt aborts the routine: its region context is cancelled right away.
// Unlike agent.Address.Interrupt this is a forced stop; use Interruptor().Stop(false)
// to let the current iteration finish.
func (h *Handle[O]) Interrupt() error { return h.interruptor.Stop(true) }

// Done is closed once the routine finalized.
func (h *Handle[O]) Done() <-chan struct{} { return h.done }

// Failures returns the non-fatal errors recorded by the routine.
func (h *Handle[O]) Failures() *failures.Failures { return h.failures }

// Join waits for the routine and returns its outcome.
func (h *Handle[O]) Join(ctx context.Context) (O, error) {
	select {
	case <-h.done:
		return h.out, h.err
	case <-ctx.Done():
		var zero O
		return zero, ctx.Err()
	}
}

// Spawn starts r on its own goroutine.
func Spawn[O any](r Routine[O], opts ...Option) *Handle[O] {
	o := newOptions(opts)
	e := newExecutor[O](r, o)

	h := e.handle
	go func() {
		e.execute(func(ctx context.Context) (O, error) {
			return e.repeat(ctx, r)
		}, func(ctx context.Context, out O, err error) error {
			if f, ok := r.(Finalizer[O]); ok {
				return f.Finalize(ctx, out, err)
			}
			return nil
		})
	}()
	return h
}

// Run executes r and waits for its outcome.
// Cancelling ctx aborts the routine; Run still waits for Finalize.
func Run[O any](ctx context.Context, r Routine[O], opts ...Option) (O, error) {
	h := Spawn(r, append(opts, WithContext(ctx))...)
	return h.Join(context.Background())
}

type executor[O any] struct {
	body     any
	opts     *options
	session  *Session
	handle   *Handle[O]
	hookCtx  context.Context
	unitID   string
	waitFunc WaitFunc
	current  domain.Status
}

func newExecutor[O any](body any, o *options) *executor[O] {
	name := o.name
	if name == "" {
		name = typeName(body)
	}
	id := uuid.New()
	controller := control.NewController()

	s := &Session{
		name:       name,
		controller: controller,
		interval:   o.interval,
		timeLimit:  o.timeLimit,
		failures:   o.failures,
		logger:     o.logger.With("routine", name, "routine_id", id),
	}
	if tl, ok := body.(TimeLimiter); ok {
		s.timeLimit = tl.TimeLimit()
	}

	wait := o.wait
	if w, ok := body.(Waiter); ok {
		wait = w.RoutineWait
	}
	if wait == nil {
		wait = func(ctx context.Context, _ bool, s *Session) {
			s.Sleep(ctx, s.Interval())
		}
	}

	return &executor[O]{
		body:    body,
		opts:    o,
		session: s,
		handle: &Handle[O]{
			id:          id,
			interruptor: controller.Interruptor(),
			failures:    o.failures,
			done:        make(chan struct{}),
		},
		hookCtx:  context.WithoutCancel(o.ctx),
		unitID:   id.String(),
		waitFunc: wait,
		current:  domain.StatusCreated,
	}
}

// execute runs body inside the abortable region, then finalize, then publishes the outcome.
func (e *executor[O]) execute(body func(ctx context.Context) (O, error), finalize func(ctx context.Context, out O, err error) error) {
	s := e.session
	defer close(e.handle.done)

	stopAfter := context.AfterFunc(e.opts.ctx, func() {
		_ = s.controller.Stop(true)
	})
	defer stopAfter()

	e.status(domain.StatusInitializing, nil)
	reg, err := s.controller.TakeRegistration()
	if err == nil {
		defer reg.Release()
		if in, ok := e.body.(Initializer); ok {
			err = domain.Failed(in.InitializeRoutine(reg.Context(), s))
		}
	}

	var out O
	if err == nil {
		e.status(domain.StatusRunning, nil)
		out, err = region(reg, s.timeLimit, body)
	}
	if err != nil {
		s.logger.Debug("routine ended", "err", err)
	}

	e.status(domain.StatusFinalizing, err)
	s.failures.Record("finalize", finalize(e.hookCtx, out, err))

	e.handle.out = out
	e.handle.err = err
	e.status(domain.StatusTerminated, err)
}

// region runs body under the registration, bounded by limit.
// A forced abort takes precedence over an elapsed time limit.
func region[O any](reg *control.Registration, limit time.Duration, body func(ctx context.Context) (O, error)) (O, error) {
	ctx := reg.Context()
	if limit > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, limit, domain.ErrTimeout)
		defer cancel()
	}

	out, err := body(ctx)
	if reg.Aborted() {
		var zero O
		return zero, domain.ErrAborted
	}
	if err != nil && errors.Is(context.Cause(ctx), domain.ErrTimeout) {
		var zero O
		return zero, domain.ErrTimeout
	}
	return out, err
}

func (e *executor[O]) repeat(ctx context.Context, r Routine[O]) (O, error) {
	s := e.session
	var zero O

	for s.IsActive() {
		if ctx.Err() != nil {
			return zero, context.Cause(ctx)
		}
		s.iteration++
		out, ok, err := r.RepeatableRoutine(ctx, s)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return zero, context.Cause(ctx)
			}
			e.step(domain.StepCrashed, err)
			s.failures.Record("routine", err)
			e.waitFunc(ctx, false, s)
		case ok:
			e.step(domain.StepDone, nil)
			return out, nil
		default:
			e.step(domain.StepNext, nil)
			e.waitFunc(ctx, true, s)
		}
	}
	if ctx.Err() != nil {
		return zero, context.Cause(ctx)
	}
	return zero, domain.ErrInterrupted
}

func (e *executor[O]) status(to domain.Status, err error) {
	from := e.current
	e.current = to
	if e.opts.hooks.OnStatus == nil {
		return
	}
	e.opts.hooks.OnStatus(e.hookCtx, &domain.StatusEvent{
		EventBase: domain.NewEventBase(domain.EventStatus, e.unitID, e.session.name),
		From:      from,
		To:        to,
		Err:       err,
	})
}

func (e *executor[O]) step(outcome domain.StepOutcome, err error) {
	if e.opts.hooks.OnStep == nil {
		return
	}
	e.opts.hooks.OnStep(e.hookCtx, &domain.StepEvent{
		EventBase: domain.NewEventBase(domain.EventStep, e.unitID, e.session.name),
		Outcome:   outcome,
		Err:       err,
	})
}

func typeName(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Name() == "" {
		return "routine"
	}
	return t.Name()
}
