package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the reservation service collectors.
type Metrics struct {
	ReserveTotal     *prometheus.CounterVec
	TransitionsTotal *prometheus.CounterVec
	CorruptionTotal  prometheus.Counter
	SweepRuns        *prometheus.CounterVec
	SweepExpired     prometheus.Counter
	SweepDuration    prometheus.Histogram
	RequestCounter   *prometheus.CounterVec
	RequestLatency   *prometheus.HistogramVec
	EventsConsumed   *prometheus.CounterVec
	GRPCRequests     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which tests rely on.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		ReserveTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_reserve_total",
				Help: "Reserve attempts by outcome",
			},
			[]string{"outcome"},
		),
		TransitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_transitions_total",
				Help: "Reservations moved to a terminal status",
			},
			[]string{"status"},
		),
		CorruptionTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reservation_inventory_corruption_total",
				Help: "Completions that found on-hand stock below the held quantity",
			},
		),
		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_sweep_runs_total",
				Help: "Expiry sweep ticks by result",
			},
			[]string{"result"},
		),
		SweepExpired: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "reservation_sweep_expired_total",
				Help: "Reservations expired by the sweeper",
			},
		),
		SweepDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "reservation_sweep_duration_seconds",
				Help:    "Expiry sweep duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
		),
		RequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "reservation_http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		EventsConsumed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_checkout_events_total",
				Help: "Checkout outcome events handled by type and result",
			},
			[]string{"event_type", "result"},
		),
		GRPCRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reservation_grpc_requests_total",
				Help: "Total number of gRPC requests",
			},
			[]string{"method", "code"},
		),
	}

	if reg != nil {
		reg.MustRegister(
			m.ReserveTotal,
			m.TransitionsTotal,
			m.CorruptionTotal,
			m.SweepRuns,
			m.SweepExpired,
			m.SweepDuration,
			m.RequestCounter,
			m.RequestLatency,
			m.EventsConsumed,
			m.GRPCRequests,
		)
	}

	return m
}

// ObserveSweep records one sweep tick.
func (m *Metrics) ObserveSweep(expired int, took time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.SweepRuns.WithLabelValues(result).Inc()
	m.SweepExpired.Add(float64(expired))
	m.SweepDuration.Observe(took.Seconds())
}
