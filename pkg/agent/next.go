package agent

import "context"

type nextKind int

const (
	kindDone nextKind = iota
	kindProcess
	kindFail
	kindInterrupt
	kindEvents
)

// Next is the opaque descriptor of the state a unit moves to.
// The zero value is Done.
type Next[T any] struct {
	kind      nextKind
	performer StatePerformer[T]
	err       error
}

// IsDone reports whether n terminates the unit successfully.
func (n Next[T]) IsDone() bool { return n.kind == kindDone }

// Err returns the failure carried by a Fail descriptor.
func (n Next[T]) Err() error { return n.err }

func (n Next[T]) String() string {
	switch n.kind {
	case kindProcess:
		return "process"
	case kindFail:
		return "fail"
	case kindInterrupt:
		return "interrupt"
	case kindEvents:
		return "events"
	default:
		return "done"
	}
}

// NextState moves to a state performed by p.
func NextState[T any](p StatePerformer[T]) Next[T] {
	return Next[T]{kind: kindProcess, performer: p}
}

// Done terminates the unit successfully.
func Done[T any]() Next[T] {
	return Next[T]{kind: kindDone}
}

// Fail terminates the unit with err.
func Fail[T any](err error) Next[T] {
	return Next[T]{kind: kindFail, err: err}
}

// Interrupt starts the graceful shutdown of the unit.
func Interrupt[T any]() Next[T] {
	return Next[T]{kind: kindInterrupt}
}

// Events parks the unit on its mailbox.
func Events[T any]() Next[T] {
	return Next[T]{kind: kindEvents}
}

type transitionKind int

const (
	transitionNext transitionKind = iota
	transitionDone
	transitionCrashed
)

// Transition is the result of performing one state.
type Transition[T any] struct {
	kind transitionKind
	next Next[T]
	err  error
}

// Continue moves the loop to next.
func Continue[T any](next Next[T]) Transition[T] {
	return Transition[T]{kind: transitionNext, next: next}
}

// Complete finishes the loop.
func Complete[T any]() Transition[T] {
	return Transition[T]{kind: transitionDone}
}

// Crash reports an unrecovered step failure. The loop asks the performer for a Fallback.
func Crash[T any](err error) Transition[T] {
	return Transition[T]{kind: transitionCrashed, err: err}
}

// StatePerformer executes one state of a unit.
type StatePerformer[T any] interface {
	Perform(ctx context.Context, unit T, c *Context[T]) Transition[T]
	Fallback(unit T, err error) Next[T]
}

// Fallbacker overrides the Next chosen after a state crashed. Default: Fail(err).
type Fallbacker[T any] interface {
	Fallback(unit T, err error) Next[T]
}

func fallback[T any](state any, unit T, err error) Next[T] {
	if f, ok := state.(Fallbacker[T]); ok {
		return f.Fallback(unit, err)
	}
	return Fail[T](err)
}
