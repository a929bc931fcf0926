package routine

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/agentry/internal/logging"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/failures"
)

// DefaultInterval is the pause between iterations when none is configured.
const DefaultInterval = time.Second

// WaitFunc decides how long to pause between two iterations.
// succeed is false when the previous iteration returned an error.
type WaitFunc func(ctx context.Context, succeed bool, s *Session)

type options struct {
	name        string
	interval    time.Duration
	timeLimit   time.Duration
	logger      *slog.Logger
	hooks       domain.LifecycleHooks
	failures    *failures.Failures
	failureOpts []failures.Option
	ctx         context.Context
	wait        WaitFunc
}

// Option configures a routine or a task.
type Option func(*options)

func newOptions(opts []Option) *options {
	o := &options{interval: DefaultInterval}
	for _, opt := range opts {
		opt(o)
	}
	if o.logger == nil {
		o.logger = logging.NewNop()
	}
	if o.failures == nil {
		o.failures = failures.New(o.failureOpts...)
	}
	if o.ctx == nil {
		o.ctx = context.Background()
	}
	return o
}

// WithName sets the name used in logs and events.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithInterval sets the initial pause between iterations.
func WithInterval(d time.Duration) Option {
	return func(o *options) {
		o.interval = d
	}
}

// WithTimeLimit bounds the whole routine. A TimeLimiter routine takes precedence.
func WithTimeLimit(d time.Duration) Option {
	return func(o *options) {
		o.timeLimit = d
	}
}

// WithLogger sets the routine logger.
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

// WithFailures records non-fatal errors into f.
func WithFailures(f *failures.Failures) Option {
	return func(o *options) {
		o.failures = f
	}
}

// WithFailureOptions configures the sink created for the routine.
func WithFailureOptions(opts ...failures.Option) Option {
	return func(o *options) {
		o.failureOpts = append(o.failureOpts, opts...)
	}
}

// WithContext binds the routine to ctx: cancelling it aborts the routine.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		o.ctx = ctx
	}
}

// WithWait replaces the pause between iterations. A Waiter routine takes precedence.
func WithWait(fn WaitFunc) Option {
	return func(o *options) {
		o.wait = fn
	}
}
