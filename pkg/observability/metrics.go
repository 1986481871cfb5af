package observability

import (
	"context"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/aretw0/arbor/pkg/domain"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Metrics holds the span collectors.
type Metrics struct {
	spans    *prometheus.CounterVec
	duration *prometheus.HistogramVec
	methods  *prometheus.CounterVec
	open     prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		spans: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbor",
				Name:      "spans_total",
				Help:      "Closed instrumentation spans.",
			},
			[]string{"kind", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "arbor",
				Name:      "span_duration_seconds",
				Help:      "Time between span open and close.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		methods: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "arbor",
				Name:      "method_calls_total",
				Help:      "User-defined method invocations.",
			},
			[]string{"method"},
		),
		open: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "arbor",
			Name:      "spans_open",
			Help:      "Spans opened and not yet closed.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.spans, m.duration, m.methods, m.open)
	}
	return m
}

// Hooks returns lifecycle hooks updating the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSpanOpen: func(_ context.Context, e *domain.SpanEvent) {
			m.open.Inc()
			if e.Kind == domain.KindMethod {
				name, _ := e.ConsoleProps["method"].(string)
				m.methods.WithLabelValues(name).Inc()
			}
		},
		OnSpanClose: func(_ context.Context, e *domain.SpanEvent) {
			m.open.Dec()
			outcome := OutcomeOK
			if e.IsError {
				outcome = OutcomeError
			}
			m.spans.WithLabelValues(string(e.Kind), outcome).Inc()
			m.duration.WithLabelValues(string(e.Kind)).Observe(e.Duration.Seconds())
		},
	}
}
