package observability

import (
	"context"
	"net/http"

	"github.com/aretw0/plancheck/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the plancheck collectors.
type Metrics struct {
	registry *prometheus.Registry

	runs     *prometheus.CounterVec
	stages   *prometheus.HistogramVec
	signals  *prometheus.CounterVec
	timeouts prometheus.Counter
}

// NewMetrics creates the collectors and registers them on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plancheck_runs_total",
				Help: "Pipeline runs by outcome state",
			},
			[]string{"state"},
		),
		stages: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "plancheck_stage_duration_seconds",
				Help:    "Wall-clock duration of solver and validator processes",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
			},
			[]string{"stage"},
		),
		signals: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plancheck_process_signals_total",
				Help: "Termination signals sent to process groups",
			},
			[]string{"label", "signal"},
		),
		timeouts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "plancheck_solver_timeouts_total",
			Help: "Solver runs that hit the time limit",
		}),
	}
	m.registry.MustRegister(m.runs, m.stages, m.signals, m.timeouts)
	return m
}

// Registry exposes the underlying registry, e.g. for tests or extra collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Hooks returns lifecycle hooks that feed the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStateChange: func(_ context.Context, e *domain.StateEvent) {
			switch e.To {
			case domain.StateValid, domain.StateInvalid, domain.StateSolveFailed:
				m.runs.WithLabelValues(string(e.To)).Inc()
			}
		},
		OnProcessExit: func(_ context.Context, e *domain.ProcessEvent) {
			m.stages.WithLabelValues(e.Label).Observe(e.Duration.Seconds())
			if e.TimedOut && e.Label == "solver" {
				m.timeouts.Inc()
			}
		},
		OnTerminate: func(_ context.Context, e *domain.SignalEvent) {
			sig := "graceful"
			if e.Escalate {
				sig = "forceful"
			}
			m.signals.WithLabelValues(e.Label, sig).Inc()
		},
	}
}
