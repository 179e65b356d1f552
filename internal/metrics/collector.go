// Package metrics provides Prometheus metrics for the entity managers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector holds all Prometheus metrics for the service.
type Collector struct {
	OperationsTotal   *prometheus.CounterVec
	OperationDuration *prometheus.HistogramVec
	AuthFailures      *prometheus.CounterVec
	PoolsActive       prometheus.Gauge
}

// New creates a collector registered on the default registry.
func New() *Collector {
	return newCollector(promauto.With(prometheus.DefaultRegisterer))
}

// NewWithRegistry creates a collector on a custom registry. Useful for
// tests to avoid global state.
func NewWithRegistry(reg prometheus.Registerer) *Collector {
	return newCollector(promauto.With(reg))
}

func newCollector(factory promauto.Factory) *Collector {
	return &Collector{
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adminkit",
				Name:      "operations_total",
				Help:      "Total number of dispatched operations",
			},
			[]string{"manager", "operation", "outcome"},
		),
		OperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "adminkit",
				Name:      "operation_duration_seconds",
				Help:      "Operation duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"manager", "operation"},
		),
		AuthFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "adminkit",
				Name:      "auth_failures_total",
				Help:      "Total number of failed login attempts",
			},
			[]string{"reason"},
		),
		PoolsActive: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "adminkit",
				Name:      "pools_active",
				Help:      "Number of live database connection pools",
			},
		),
	}
}
