package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Outcome label values
const (
	OutcomeOK          = "ok"
	OutcomeDomainError = "domain_error"
	OutcomeBadRequest  = "bad_request"
)

// Metrics holds the Prometheus collectors for the model service.
type Metrics struct {
	Evaluations     *prometheus.CounterVec   // labels: endpoint, outcome
	RequestDuration *prometheus.HistogramVec // labels: endpoint
	ProfileSamples  prometheus.Histogram
	Extrapolated    prometheus.Counter
	StreamsActive   prometheus.Gauge
}

func newCollectors() *Metrics {
	return &Metrics{
		Evaluations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stdatmo",
			Name:      "evaluations_total",
			Help:      "Model evaluation requests by endpoint and outcome.",
		}, []string{"endpoint", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stdatmo",
			Name:      "request_duration_seconds",
			Help:      "Duration of model requests in seconds.",
			Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		}, []string{"endpoint"}),
		ProfileSamples: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "stdatmo",
			Name:      "profile_samples",
			Help:      "Number of samples per profile request.",
			Buckets:   []float64{1, 10, 50, 100, 500, 1000, 5000, 10000},
		}),
		Extrapolated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stdatmo",
			Name:      "extrapolated_evaluations_total",
			Help:      "Evaluations that fell in the extrapolated top layer.",
		}),
		StreamsActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stdatmo",
			Name:      "profile_streams_active",
			Help:      "Open websocket profile streams.",
		}),
	}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newCollectors()
	prometheus.MustRegister(
		m.Evaluations,
		m.RequestDuration,
		m.ProfileSamples,
		m.Extrapolated,
		m.StreamsActive,
	)
	return m
}

// NewMetricsForTesting creates Metrics without registering them to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newCollectors()
}

// Observe records one request outcome
func (m *Metrics) Observe(endpoint, outcome string, seconds float64) {
	m.Evaluations.WithLabelValues(endpoint, outcome).Inc()
	m.RequestDuration.WithLabelValues(endpoint).Observe(seconds)
}
