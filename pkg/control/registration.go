package control

import (
	"context"
	"sync/atomic"

	"github.com/aretw0/agentry/pkg/domain"
)

// Registration is the one-shot token arming an abortable region.
// Its context is cancelled with domain.ErrAborted when a forced stop fires.
type Registration struct {
	ctx     context.Context
	cancel  context.CancelCauseFunc
	aborted atomic.Bool
}

func newRegistration() *Registration {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &Registration{ctx: ctx, cancel: cancel}
}

func (r *Registration) abort() {
	r.aborted.Store(true)
	r.cancel(domain.ErrAborted)
}

// Context is cancelled when the region is aborted or released.
func (r *Registration) Context() context.Context {
	return r.ctx
}

// Aborted reports whether a forced stop hit this region.
func (r *Registration) Aborted() bool {
	return r.aborted.Load()
}

// Release frees the context once the region resolved.
func (r *Registration) Release() {
	r.cancel(context.Canceled)
}
