package agent

import (
	"context"
	"errors"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/workers"
)

// SyncState is a blocking state offloaded to the worker pool.
// The unit's loop waits for it; cancellation is observed between invocations only.
type SyncState[T any] interface {
	Once(unit T, it control.Interruptor) (Next[T], error)
}

// SyncRepeater is the retrying variant of SyncState.
type SyncRepeater[T any] interface {
	Many(unit T, it control.Interruptor) (Next[T], bool, error)
}

// SyncRepairer gets a chance to absorb an offloaded step error. Returning nil retries.
type SyncRepairer[T any] interface {
	Repair(unit T, err error) error
}

// DoSync moves to a state performed on the worker pool.
func DoSync[T any](state SyncState[T]) Next[T] {
	return NextState[T](syncPerformer[T]{state: state})
}

type syncPerformer[T any] struct {
	state SyncState[T]
}

func (p syncPerformer[T]) Perform(ctx context.Context, unit T, c *Context[T]) Transition[T] {
	var tr Transition[T]
	err := c.pool.Do(ctx, func() {
		tr = p.loop(unit, c.Interruptor())
	})

	var perr *workers.PanicError
	switch {
	case errors.As(err, &perr):
		return Crash[T](perr)
	case err != nil:
		// No slot before the forced stop fired.
		return Continue(Interrupt[T]())
	}
	return tr
}

func (p syncPerformer[T]) loop(unit T, it control.Interruptor) Transition[T] {
	for it.IsActive() {
		next, ok, err := p.step(unit, it)
		if err != nil {
			if r, isRepairer := p.state.(SyncRepairer[T]); isRepairer {
				err = r.Repair(unit, err)
			}
			if err != nil {
				return Crash[T](err)
			}
			continue
		}
		if ok {
			return Continue(next)
		}
	}
	return Continue(Interrupt[T]())
}

func (p syncPerformer[T]) step(unit T, it control.Interruptor) (Next[T], bool, error) {
	if r, ok := p.state.(SyncRepeater[T]); ok {
		return r.Many(unit, it)
	}
	next, err := p.state.Once(unit, it)
	return next, err == nil, err
}

func (p syncPerformer[T]) Fallback(unit T, err error) Next[T] {
	return fallback(p.state, unit, err)
}
