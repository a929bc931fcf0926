package agent

import "context"

// Agent is the contract a unit implements to be driven by the runtime loop.
// T is the unit type itself, usually a pointer to a struct embedding Base[T].
type Agent[T any] interface {
	// Initialize returns the first Next of the state machine.
	Initialize(c *Context[T]) Next[T]
	// Interrupt is invoked once, when a stop request is first observed.
	Interrupt(c *Context[T])
	// Event handles the next mailbox envelope while the unit sits in Events.
	Event(ctx context.Context, c *Context[T]) error
	// Finalize runs exactly once after the terminal transition.
	Finalize(c *Context[T])
}

// Beginner is consulted by Base.Initialize to pick the first state.
type Beginner[T any] interface {
	Begin() Next[T]
}

// Supervisor is implemented by units that want to react to the termination
// of the children they spawned with SpawnAgent.
type Supervisor[T any] interface {
	Finished(rel *Relation, c *Context[T])
}

// Base provides the default lifecycle of a mailbox-driven unit.
// Embed it and override what the unit needs.
type Base[T any] struct{}

// Initialize starts with Begin when the unit implements Beginner, otherwise in Events.
func (Base[T]) Initialize(c *Context[T]) Next[T] {
	if b, ok := any(c.Unit()).(Beginner[T]); ok {
		return b.Begin()
	}
	return Events[T]()
}

// Interrupt closes the mailbox so the unit stops after draining it.
func (Base[T]) Interrupt(c *Context[T]) {
	c.Shutdown()
}

// Event dispatches the next envelope.
func (Base[T]) Event(ctx context.Context, c *Context[T]) error {
	_, err := c.NextEvent(ctx)
	return err
}

// Finalize does nothing.
func (Base[T]) Finalize(*Context[T]) {}
