package agent

import (
	"context"
	"log/slog"

	"github.com/aretw0/agentry/internal/logging"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/failures"
	"github.com/aretw0/agentry/pkg/workers"
	"github.com/google/uuid"
)

type outputHook func(ctx context.Context, unit any) error

type options struct {
	id          uuid.UUID
	name        string
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	failures    *failures.Failures
	failureOpts []failures.Option
	pool        *workers.Pool
	ctx         context.Context
	output      []outputHook
	onExit      func()
}

// Option configures a spawned unit.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.id == uuid.Nil {
		o.id = uuid.New()
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.pool == nil {
		o.pool = workers.Default()
	}
	if o.failures == nil {
		o.failures = failures.New(o.failureOpts...)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}

// WithName overrides the unit name used in logs and events. Default: the unit's type name.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger of the unit.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithHooks attaches lifecycle hooks. Repeated calls merge.
func WithHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = domain.MergeHooks(o.hooks, hooks)
	}
}

// WithFailures records non-fatal errors into f instead of a fresh sink.
func WithFailures(f *failures.Failures) Option {
	return func(o *options) {
		o.failures = f
	}
}

// WithFailureOptions configures the sink created for the unit. Children inherit them.
func WithFailureOptions(opts ...failures.Option) Option {
	return func(o *options) {
		o.failureOpts = append(o.failureOpts, opts...)
	}
}

// WithPool sets the worker pool used by DoSync states.
func WithPool(p *workers.Pool) Option {
	return func(o *options) {
		o.pool = p
	}
}

// WithContext binds the unit to ctx: cancelling it forces the unit to stop.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithOutputHook runs fn once right after Finalize with the unit as output.
// Its error is recorded as a failure.
func WithOutputHook[T any](fn func(ctx context.Context, out T) error) Option {
	return func(o *options) {
		o.output = append(o.output, func(ctx context.Context, unit any) error {
			out, ok := unit.(T)
			if !ok {
				return nil
			}
			return fn(ctx, out)
		})
	}
}

// ForwardTo sends the output of the unit to dst, converted to a message.
func ForwardTo[T, U any](dst *Address[U], convert func(T) Message[U]) Option {
	return WithOutputHook(func(_ context.Context, out T) error {
		return dst.Send(convert(out))
	})
}
