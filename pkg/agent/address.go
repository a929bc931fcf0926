package agent

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/failures"
	"github.com/google/uuid"
)

// Joiner is the type-erased view of a unit handle kept by supervisors.
type Joiner interface {
	ID() uuid.UUID
	Done() <-chan struct{}
	Interruptor() control.Interruptor
}

// Address is the handle of a spawned unit.
type Address[T any] struct {
	id          uuid.UUID
	name        string
	mailbox     *Mailbox[Envelope[T]]
	interruptor control.Interruptor
	failures    *failures.Failures
	done        chan struct{}

	result T
	err    error
}

// ID returns the unit identity.
func (a *Address[T]) ID() uuid.UUID { return a.id }

// Name returns the unit name.
func (a *Address[T]) Name() string { return a.name }

// Send enqueues msg. It fails with domain.ErrMailboxClosed once the unit stopped accepting messages.
func (a *Address[T]) Send(msg Message[T]) error {
	if msg == nil {
		return errors.New("agent: nil message")
	}
	return a.mailbox.Push(Envelope[T]{Message: msg, Enqueued: time.Now()})
}

// Do schedules fn on the unit's loop.
func (a *Address[T]) Do(fn func(ctx context.Context, unit T, c *Context[T]) error) error {
	return a.Send(MessageFunc[T](fn))
}

// Interruptor returns a handle to stop the unit.
func (a *Address[T]) Interruptor() control.Interruptor { return a.interruptor }

// Interrupt requests a graceful stop: queued messages are still handled.
// Unlike routine.Handle.Interrupt it does not cancel a running step; use
// Interruptor().Stop(true) for that.
func (a *Address[T]) Interrupt() error {
	return a.interruptor.Stop(false)
}

// Done is closed once the unit terminated.
func (a *Address[T]) Done() <-chan struct{} { return a.done }

// Failures returns the non-fatal errors sink of the unit.
func (a *Address[T]) Failures() *failures.Failures { return a.failures }

// Join waits for termination and returns the finalized unit.
// The error is nil unless the unit ended with Fail, in which case it is a
// *domain.FailedError wrapping the cause.
func (a *Address[T]) Join(ctx context.Context) (T, error) {
	select {
	case <-a.done:
		return a.result, a.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
