package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adminkit/adminkit/internal/metrics"
)

func TestCollector_RegistersAllMetrics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	c := metrics.NewWithRegistry(reg)

	c.OperationsTotal.WithLabelValues("accounts", "create", "success").Inc()
	c.OperationDuration.WithLabelValues("accounts", "create").Observe(0.02)
	c.AuthFailures.WithLabelValues("bad_password").Inc()
	c.PoolsActive.Set(2)

	families, err := reg.Gather()
	require.NoError(t, err)

	names := make([]string, 0, len(families))
	for _, mf := range families {
		names = append(names, mf.GetName())
	}
	assert.ElementsMatch(t, []string{
		"adminkit_operations_total",
		"adminkit_operation_duration_seconds",
		"adminkit_auth_failures_total",
		"adminkit_pools_active",
	}, names)
}

func TestCollector_CountersAccumulate(t *testing.T) {
	t.Parallel()

	c := metrics.NewWithRegistry(prometheus.NewRegistry())

	c.OperationsTotal.WithLabelValues("enums", "create", "success").Inc()
	c.OperationsTotal.WithLabelValues("enums", "create", "success").Inc()
	c.OperationsTotal.WithLabelValues("enums", "create", "duplicate").Inc()

	success := c.OperationsTotal.WithLabelValues("enums", "create", "success")
	assert.Equal(t, float64(2), testutil.ToFloat64(success))

	duplicate := c.OperationsTotal.WithLabelValues("enums", "create", "duplicate")
	assert.Equal(t, float64(1), testutil.ToFloat64(duplicate))
}

func TestCollector_PoolGaugeTracksReleases(t *testing.T) {
	t.Parallel()

	c := metrics.NewWithRegistry(prometheus.NewRegistry())

	c.PoolsActive.Inc()
	c.PoolsActive.Inc()
	c.PoolsActive.Dec()

	assert.Equal(t, float64(1), testutil.ToFloat64(c.PoolsActive))
}

func TestCollector_SeparateRegistriesIsolated(t *testing.T) {
	t.Parallel()

	a := metrics.NewWithRegistry(prometheus.NewRegistry())
	b := metrics.NewWithRegistry(prometheus.NewRegistry())

	a.AuthFailures.WithLabelValues("not_found").Inc()

	assert.Equal(t, float64(0), testutil.ToFloat64(b.AuthFailures.WithLabelValues("not_found")))
}
