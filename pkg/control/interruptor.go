package control

import "errors"

// ErrDetached is returned by the zero Interruptor.
var ErrDetached = errors.New("interruptor is not attached to a controller")

// Interruptor is a copyable handle that can request a stop of the controller
// it was taken from. Holding one never implies ownership of the controller.
type Interruptor struct {
	flag *flag
}

// IsActive reports whether the controller is still active.
func (i Interruptor) IsActive() bool {
	if i.flag == nil {
		return false
	}
	return i.flag.active.Load()
}

// Stop requests a graceful stop, or an immediate abort when force is set.
func (i Interruptor) Stop(force bool) error {
	if i.flag == nil {
		return ErrDetached
	}
	i.flag.stop(force)
	return nil
}

// Done is closed on the first stop request. The zero Interruptor returns nil.
func (i Interruptor) Done() <-chan struct{} {
	if i.flag == nil {
		return nil
	}
	return i.flag.done
}
