// Package failures provides the append-only sink for non-fatal errors recorded
// by a runtime instance.
//
// Recording never halts execution. Owners inspect or drain the collected errors
// after the runtime terminated, or attach a logger/observer to react as they arrive.
package failures

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Failures collects non-fatal errors.
// Safe for concurrent use.
type Failures struct {
	mu   sync.RWMutex
	errs []error

	logger    *slog.Logger
	observers []func(error)
}

// Option configures Failures.
type Option func(*Failures)

// WithLogger logs every recorded failure at warn level.
func WithLogger(logger *slog.Logger) Option {
	return func(f *Failures) {
		f.logger = logger
	}
}

// WithObserver registers a callback invoked for every recorded failure.
func WithObserver(fn func(error)) Option {
	return func(f *Failures) {
		if fn != nil {
			f.observers = append(f.observers, fn)
		}
	}
}

// New creates an empty sink.
func New(opts ...Option) *Failures {
	f := &Failures{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Put records the outcome of an operation. Nil results are ignored.
// It reports whether something was recorded.
func (f *Failures) Put(err error) bool {
	if err == nil {
		return false
	}

	f.mu.Lock()
	f.errs = append(f.errs, err)
	f.mu.Unlock()

	if f.logger != nil {
		f.logger.Warn("non-fatal failure recorded", "err", err)
	}
	for _, observe := range f.observers {
		observe(err)
	}
	return true
}

// Record records err annotated with the operation that produced it.
func (f *Failures) Record(source string, err error) bool {
	if err == nil {
		return false
	}
	return f.Put(fmt.Errorf("%s: %w", source, err))
}

// Len returns the number of recorded failures.
func (f *Failures) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.errs)
}

// Errors returns a copy of the recorded failures in recording order.
func (f *Failures) Errors() []error {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]error, len(f.errs))
	copy(out, f.errs)
	return out
}

// Drain returns the recorded failures and empties the sink.
func (f *Failures) Drain() []error {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := f.errs
	f.errs = nil
	return out
}

// Err joins all recorded failures, or returns nil when there are none.
func (f *Failures) Err() error {
	return errors.Join(f.Errors()...)
}
