package agentry

import (
	"log/slog"
	"time"

	"github.com/aretw0/agentry/internal/logging"
	"github.com/aretw0/agentry/pkg/agent"
	"github.com/aretw0/agentry/pkg/config"
	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/failures"
	"github.com/aretw0/agentry/pkg/observability"
	"github.com/aretw0/agentry/pkg/routine"
	"github.com/aretw0/agentry/pkg/workers"
)

// Version is the library version reported by the CLI.
const Version = "0.1.0"

// Runtime bundles the ambient services shared by the units and routines it spawns.
type Runtime struct {
	logger    *slog.Logger
	pool      *workers.Pool
	metrics   *observability.Metrics
	hooks     domain.LifecycleHooks
	interval  time.Duration
	timeLimit time.Duration

	failureOpts []failures.Option
}

// Option defines a functional option for configuring the Runtime.
type Option func(*Runtime)

// WithLogger sets the structured logger handed to every unit.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runtime) {
		r.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(r *Runtime) {
		r.hooks = domain.MergeHooks(r.hooks, hooks)
	}
}

// WithMetrics feeds m from every unit, routine, failure sink and the worker pool.
// A Metrics instance serves a single Runtime.
func WithMetrics(m *observability.Metrics) Option {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithWorkers sizes the pool used by offloaded states. Zero means GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(r *Runtime) {
		r.pool = workers.NewPool(n)
	}
}

// WithConfig applies a loaded configuration. Later options override it.
func WithConfig(cfg config.Config) Option {
	return func(r *Runtime) {
		r.logger = logging.New(cfg.Level())
		r.pool = workers.NewPool(cfg.Workers)
		if cfg.Metrics.Enabled {
			r.metrics = observability.NewMetrics(cfg.Metrics.Namespace)
		}
		r.interval = cfg.Routine.Interval
		r.timeLimit = cfg.Routine.TimeLimit
	}
}

// New creates a Runtime.
func New(opts ...Option) *Runtime {
	r := &Runtime{}
	for _, opt := range opts {
		opt(r)
	}

	if r.logger == nil {
		r.logger = logging.NewNop()
	}
	if r.pool == nil {
		r.pool = workers.Default()
	}
	if r.interval <= 0 {
		r.interval = routine.DefaultInterval
	}

	r.failureOpts = append(r.failureOpts, failures.WithLogger(r.logger))
	if r.metrics != nil {
		r.hooks = domain.MergeHooks(r.hooks, r.metrics.Hooks())
		r.failureOpts = append(r.failureOpts, failures.WithObserver(r.metrics.ObserveFailure))
		r.metrics.RegisterPool(r.pool)
	}
	return r
}

// Logger returns the runtime logger.
func (r *Runtime) Logger() *slog.Logger { return r.logger }

// Pool returns the worker pool.
func (r *Runtime) Pool() *workers.Pool { return r.pool }

// Metrics returns the metrics, or nil when disabled.
func (r *Runtime) Metrics() *observability.Metrics { return r.metrics }

// AgentOptions returns the options binding a unit to this runtime, followed by extra.
func (r *Runtime) AgentOptions(extra ...agent.Option) []agent.Option {
	opts := []agent.Option{
		agent.WithLogger(r.logger),
		agent.WithPool(r.pool),
		agent.WithHooks(r.hooks),
		agent.WithFailureOptions(r.failureOpts...),
	}
	return append(opts, extra...)
}

// RoutineOptions returns the options binding a routine to this runtime, followed by extra.
func (r *Runtime) RoutineOptions(extra ...routine.Option) []routine.Option {
	opts := []routine.Option{
		routine.WithLogger(r.logger),
		routine.WithHooks(r.hooks),
		routine.WithFailureOptions(r.failureOpts...),
		routine.WithInterval(r.interval),
	}
	if r.timeLimit > 0 {
		opts = append(opts, routine.WithTimeLimit(r.timeLimit))
	}
	return append(opts, extra...)
}

// Spawn starts unit bound to r.
func Spawn[T agent.Agent[T]](r *Runtime, unit T, opts ...agent.Option) *agent.Address[T] {
	return agent.Spawn(unit, r.AgentOptions(opts...)...)
}

// SpawnRoutine starts body bound to r.
func SpawnRoutine[O any](r *Runtime, body routine.Routine[O], opts ...routine.Option) *routine.Handle[O] {
	return routine.Spawn(body, r.RoutineOptions(opts...)...)
}

// SpawnTask starts t bound to r.
func SpawnTask(r *Runtime, t routine.Task, opts ...routine.Option) *routine.TaskHandle {
	return routine.SpawnTask(t, r.RoutineOptions(opts...)...)
}
