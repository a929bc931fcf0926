package routine

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/agentry/pkg/control"
	"github.com/aretw0/agentry/pkg/failures"
)

// Session is the context a routine body works with.
// It is owned by the routine goroutine; only the Interruptor may leave it.
type Session struct {
	name       string
	controller *control.Controller
	interval   time.Duration
	timeLimit  time.Duration
	iteration  int
	failures   *failures.Failures
	logger     *slog.Logger
}

// Name returns the routine name.
func (s *Session) Name() string { return s.name }

// SetInterval changes the pause between iterations.
func (s *Session) SetInterval(d time.Duration) { s.interval = d }

// Interval returns the pause between iterations.
func (s *Session) Interval() time.Duration { return s.interval }

// SetTimeLimit overrides the time limit. It only has an effect before the
// abortable region starts, i.e. from an Initializer.
func (s *Session) SetTimeLimit(d time.Duration) { s.timeLimit = d }

// TimeLimit returns the configured time limit, 0 meaning none.
func (s *Session) TimeLimit() time.Duration { return s.timeLimit }

// Iteration returns the 1-based number of the current attempt.
func (s *Session) Iteration() int { return s.iteration }

// Interruptor returns a handle to stop the routine.
func (s *Session) Interruptor() control.Interruptor { return s.controller.Interruptor() }

// IsActive reports whether no stop was requested.
func (s *Session) IsActive() bool { return s.controller.IsActive() }

// Failures returns the non-fatal errors sink.
func (s *Session) Failures() *failures.Failures { return s.failures }

// Logger returns the routine logger.
func (s *Session) Logger() *slog.Logger { return s.logger }

// Sleep pauses for d. It returns false when woken early by ctx or a stop request.
func (s *Session) Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return s.IsActive() && ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	case <-s.controller.Done():
		return false
	}
}
