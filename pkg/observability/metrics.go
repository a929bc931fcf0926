package observability

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/aretw0/agentry/pkg/domain"
	"github.com/aretw0/agentry/pkg/workers"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects lifecycle metrics of every unit sharing its hooks.
type Metrics struct {
	namespace string
	registry  *prometheus.Registry

	transitions   *prometheus.CounterVec
	steps         *prometheus.CounterVec
	running       prometheus.Gauge
	lifetime      *prometheus.HistogramVec
	childFinished *prometheus.CounterVec
	failures      *prometheus.CounterVec

	mu      sync.Mutex
	started map[string]time.Time
}

// NewMetrics creates the collectors under namespace and registers them.
func NewMetrics(namespace string) *Metrics {
	m := &Metrics{
		namespace: namespace,
		registry:  prometheus.NewRegistry(),
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "status_transitions_total",
				Help:      "Lifecycle status transitions per unit kind",
			},
			[]string{"unit", "status"},
		),
		steps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "steps_total",
				Help:      "Performed state steps by outcome",
			},
			[]string{"unit", "outcome"},
		),
		running: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "units_running",
				Help:      "Units between initialization and termination",
			},
		),
		lifetime: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "unit_lifetime_seconds",
				Help:      "Time from initialization to termination",
				Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
			},
			[]string{"unit"},
		),
		childFinished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "children_finished_total",
				Help:      "Supervised children reported as finished",
			},
			[]string{"unit"},
		),
		failures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "failures_total",
				Help:      "Non-fatal failures recorded",
			},
			[]string{"kind"},
		),
		started: make(map[string]time.Time),
	}
	m.registry.MustRegister(m.transitions, m.steps, m.running, m.lifetime, m.childFinished, m.failures)
	return m
}

// Hooks returns lifecycle hooks feeding the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStatus: func(_ context.Context, e *domain.StatusEvent) {
			m.transitions.WithLabelValues(e.Unit, string(e.To)).Inc()
			switch e.To {
			case domain.StatusInitializing:
				m.running.Inc()
				m.mu.Lock()
				m.started[e.UnitID] = e.Timestamp
				m.mu.Unlock()
			case domain.StatusTerminated:
				m.running.Dec()
				m.mu.Lock()
				started, ok := m.started[e.UnitID]
				delete(m.started, e.UnitID)
				m.mu.Unlock()
				if ok {
					m.lifetime.WithLabelValues(e.Unit).Observe(e.Timestamp.Sub(started).Seconds())
				}
			}
		},
		OnStep: func(_ context.Context, e *domain.StepEvent) {
			m.steps.WithLabelValues(e.Unit, string(e.Outcome)).Inc()
		},
		OnChildFinished: func(_ context.Context, e *domain.ChildEvent) {
			m.childFinished.WithLabelValues(e.Unit).Inc()
		},
	}
}

// ObserveFailure counts a recorded failure. Use it as a failures observer.
func (m *Metrics) ObserveFailure(err error) {
	m.failures.WithLabelValues(failureKind(err)).Inc()
}

func failureKind(err error) string {
	switch {
	case errors.Is(err, domain.ErrTimeout):
		return "timeout"
	case errors.Is(err, domain.ErrAborted):
		return "aborted"
	case errors.Is(err, domain.ErrInterrupted):
		return "interrupted"
	case errors.Is(err, domain.ErrMailboxClosed):
		return "mailbox_closed"
	default:
		var perr *workers.PanicError
		if errors.As(err, &perr) {
			return "panic"
		}
		return "error"
	}
}

// RegisterPool exposes the occupancy of p.
func (m *Metrics) RegisterPool(p *workers.Pool) {
	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      "pool_slots",
			Help:      "Worker pool size",
		}, func() float64 { return float64(p.Size()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      "pool_in_flight",
			Help:      "Offloaded steps currently running",
		}, func() float64 { return float64(p.InFlight()) }),
	)
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
