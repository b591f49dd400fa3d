// Package metrics provides Prometheus metrics for upstream employee calls
// and directory aggregates.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for upstream requests. Failures use the failure kind string.
const (
	OutcomeSuccess = "success"
)

type Metrics struct {
	UpstreamRequestsTotal          *prometheus.CounterVec   // by operation and outcome
	UpstreamRequestDurationSeconds *prometheus.HistogramVec // by operation
	DirectorySize                  prometheus.Gauge         // employees returned by the last listing
	TopEarnerSalary                prometheus.Gauge         // highest salary seen by the last aggregate
}

// New registers all metrics on reg. A nil reg creates unregistered
// collectors, which tests use to avoid duplicate registration.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		UpstreamRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "employee_upstream_requests_total",
			Help: "Total number of upstream employee service requests by operation and outcome",
		}, []string{"operation", "outcome"}),

		UpstreamRequestDurationSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "employee_upstream_request_duration_seconds",
			Help:    "Duration of upstream employee service requests by operation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),

		DirectorySize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "employee_directory_size",
			Help: "Number of employees returned by the most recent upstream listing",
		}),

		TopEarnerSalary: factory.NewGauge(prometheus.GaugeOpts{
			Name: "employee_directory_highest_salary",
			Help: "Highest salary computed by the most recent aggregate request",
		}),
	}
}

// ObserveUpstream records one upstream request.
func (m *Metrics) ObserveUpstream(operation, outcome string, durationSeconds float64) {
	m.UpstreamRequestsTotal.WithLabelValues(operation, outcome).Inc()
	m.UpstreamRequestDurationSeconds.WithLabelValues(operation).Observe(durationSeconds)
}

func (m *Metrics) SetDirectorySize(n int) {
	m.DirectorySize.Set(float64(n))
}

func (m *Metrics) SetTopEarnerSalary(salary int) {
	m.TopEarnerSalary.Set(float64(salary))
}
