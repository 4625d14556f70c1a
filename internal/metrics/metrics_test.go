package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetReturnsSingleton(t *testing.T) {
	m1 := Get()
	m2 := Get()
	require.NotNil(t, m1)
	assert.Same(t, m1, m2)
}

// counterValue sums every series of the named counter family in reg
func counterValue(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()

	families, err := reg.Gather()
	require.NoError(t, err)

	var total float64
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			total += m.GetCounter().GetValue()
		}
	}
	return total
}

func TestNewWithRegistryIsolated(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewWithRegistry(reg)

	m.LikesTotal.Inc()
	m.LikesTotal.Inc()
	m.LoginsTotal.WithLabelValues("success").Inc()

	assert.Equal(t, 2.0, counterValue(t, reg, "webfinal_likes_total"))
	assert.Equal(t, 1.0, counterValue(t, reg, "webfinal_logins_total"))

	// A second set on a fresh registry must not collide
	otherReg := prometheus.NewRegistry()
	NewWithRegistry(otherReg)
	assert.Equal(t, 0.0, counterValue(t, otherReg, "webfinal_likes_total"))
}
