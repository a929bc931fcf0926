package agent

import "context"

// AsyncState is a state performed cooperatively on the unit's own goroutine.
// Blocking work inside Once must observe ctx, which a forced stop cancels.
type AsyncState[T any] interface {
	Once(ctx context.Context, unit T, c *Context[T]) (Next[T], error)
}

// AsyncRepeater replaces Once with a retrying body: (next, true) finishes the
// state, (_, false) runs it again.
type AsyncRepeater[T any] interface {
	Many(ctx context.Context, unit T, c *Context[T]) (Next[T], bool, error)
}

// Repairer gets a chance to absorb a step error. Returning nil retries the step.
type Repairer[T any] interface {
	Repair(ctx context.Context, unit T, err error) error
}

// DoAsync moves to a cooperatively performed state.
func DoAsync[T any](state AsyncState[T]) Next[T] {
	return NextState[T](asyncPerformer[T]{state: state})
}

type asyncPerformer[T any] struct {
	state AsyncState[T]
}

func (p asyncPerformer[T]) Perform(ctx context.Context, unit T, c *Context[T]) Transition[T] {
	for c.IsActive() {
		next, ok, err := p.step(ctx, unit, c)
		if err != nil {
			if r, isRepairer := p.state.(Repairer[T]); isRepairer {
				err = r.Repair(ctx, unit, err)
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

func (p asyncPerformer[T]) step(ctx context.Context, unit T, c *Context[T]) (Next[T], bool, error) {
	if r, ok := p.state.(AsyncRepeater[T]); ok {
		return r.Many(ctx, unit, c)
	}
	next, err := p.state.Once(ctx, unit, c)
	return next, err == nil, err
}

func (p asyncPerformer[T]) Fallback(unit T, err error) Next[T] {
	return fallback(p.state, unit, err)
}
