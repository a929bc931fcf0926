package agent

import (
	"context"

	"github.com/aretw0/agentry/pkg/control"
)

// AsyncFn is a unit running one cooperative closure.
type AsyncFn struct {
	Base[*AsyncFn]
	fn func(ctx context.Context) error
}

// NewAsyncFn wraps fn into a unit. An error from fn fails the unit.
func NewAsyncFn(fn func(ctx context.Context) error) *AsyncFn {
	return &AsyncFn{fn: fn}
}

func (a *AsyncFn) Initialize(*Context[*AsyncFn]) Next[*AsyncFn] {
	return DoAsync[*AsyncFn](callAsync{})
}

type callAsync struct{}

func (callAsync) Once(ctx context.Context, unit *AsyncFn, _ *Context[*AsyncFn]) (Next[*AsyncFn], error) {
	if err := unit.fn(ctx); err != nil {
		return Next[*AsyncFn]{}, err
	}
	return Done[*AsyncFn](), nil
}

// SyncFn is a unit running one blocking closure on the worker pool.
type SyncFn struct {
	Base[*SyncFn]
	fn func() error
}

// NewSyncFn wraps fn into a unit. An error or a panic from fn fails the unit.
func NewSyncFn(fn func() error) *SyncFn {
	return &SyncFn{fn: fn}
}

func (s *SyncFn) Initialize(*Context[*SyncFn]) Next[*SyncFn] {
	return DoSync[*SyncFn](callSync{})
}

type callSync struct{}

func (callSync) Once(unit *SyncFn, _ control.Interruptor) (Next[*SyncFn], error) {
	if err := unit.fn(); err != nil {
		return Next[*SyncFn]{}, err
	}
	return Done[*SyncFn](), nil
}
