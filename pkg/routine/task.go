package routine

import (
	"context"

	"github.com/aretw0/agentry/pkg/domain"
)

// Task is a body executed exactly once inside the abortable region.
type Task interface {
	Routine(ctx context.Context) error
}

// TaskFunc adapts a function to Task.
type TaskFunc func(ctx context.Context) error

// Routine calls f.
func (f TaskFunc) Routine(ctx context.Context) error { return f(ctx) }

// TaskHandle controls a spawned task.
type TaskHandle struct {
	*Handle[struct{}]
}

// Join waits for the task and returns its outcome.
func (h *TaskHandle) Join(ctx context.Context) error {
	_, err := h.Handle.Join(ctx)
	return err
}

// SpawnTask starts t on its own goroutine. The task runs once: no retry, no
// interval. A body error is returned as *domain.FailedError and also recorded
// into the failures sink.
func SpawnTask(t Task, opts ...Option) *TaskHandle {
	o := newOptions(opts)
	e := newExecutor[struct{}](t, o)

	go e.execute(func(ctx context.Context) (struct{}, error) {
		return struct{}{}, domain.Failed(t.Routine(ctx))
	}, func(ctx context.Context, _ struct{}, err error) error {
		e.session.failures.Put(err)
		if f, ok := t.(Finalizer[struct{}]); ok {
			return f.Finalize(ctx, struct{}{}, err)
		}
		return nil
	})
	return &TaskHandle{Handle: e.handle}
}

// RunTask executes t and waits for its outcome.
func RunTask(ctx context.Context, t Task, opts ...Option) error {
	return SpawnTask(t, append(opts, WithContext(ctx))...).Join(context.Background())
}
