package control

import (
	"sync"
	"sync/atomic"

	"github.com/aretw0/agentry/pkg/domain"
)

// flag is the shared interruption state. Only Controller and Interruptor touch it.
type flag struct {
	active atomic.Bool
	forced atomic.Bool

	stopOnce sync.Once
	done     chan struct{}

	mu    sync.Mutex
	taken bool
	reg   *Registration
}

func (f *flag) stop(force bool) {
	f.active.Store(false)
	f.stopOnce.Do(func() {
		close(f.done)
	})
	if !force {
		return
	}
	f.forced.Store(true)

	f.mu.Lock()
	reg := f.reg
	f.mu.Unlock()
	if reg != nil {
		reg.abort()
	}
}

// Controller owns the interruption flag of one runtime instance.
// It must not be shared; hand out Interruptor values instead.
type Controller struct {
	flag *flag
}

// NewController creates an active controller.
func NewController() *Controller {
	f := &flag{done: make(chan struct{})}
	f.active.Store(true)
	return &Controller{flag: f}
}

// IsActive reports whether no stop has been requested yet.
func (c *Controller) IsActive() bool {
	return c.flag.active.Load()
}

// Forced reports whether a forced stop has been requested.
func (c *Controller) Forced() bool {
	return c.flag.forced.Load()
}

// Stop marks the controller inactive. With force it also aborts the armed
// registration. Repeated calls are no-ops apart from escalating to force.
func (c *Controller) Stop(force bool) error {
	c.flag.stop(force)
	return nil
}

// Done is closed on the first stop request.
func (c *Controller) Done() <-chan struct{} {
	return c.flag.done
}

// Interruptor returns a shareable handle to the flag.
func (c *Controller) Interruptor() Interruptor {
	return Interruptor{flag: c.flag}
}

// TakeRegistration arms the single abortable region of this controller.
// A registration taken after a forced stop is returned already aborted.
func (c *Controller) TakeRegistration() (*Registration, error) {
	f := c.flag
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.taken {
		return nil, domain.ErrRegistrationTaken
	}
	f.taken = true

	reg := newRegistration()
	if f.forced.Load() {
		reg.abort()
	}
	f.reg = reg
	return reg, nil
}
