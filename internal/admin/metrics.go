package admin

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds Prometheus collectors for outbound admin API calls.
// A nil *Metrics records nothing.
type Metrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

// NewMetrics creates the admin call collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requestCount: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "admin_requests_total",
				Help: "Total number of requests sent to the agent admin API.",
			},
			[]string{"method", "status"},
		),
		requestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "admin_request_duration_seconds",
				Help:    "Latency of requests sent to the agent admin API.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method"},
		),
	}

	if err := reg.Register(m.requestCount); err != nil {
		return nil, err
	}
	if err := reg.Register(m.requestDuration); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *Metrics) observe(method, status string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requestCount.WithLabelValues(method, status).Inc()
	m.requestDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}
