// SPDX-License-Identifier: MIT
package metrics_test

import (
	"testing"

	"github.com/katalvlaran/mathtoys/descent"
	"github.com/katalvlaran/mathtoys/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCollector_ObservesRelax wires a collector into a network and checks every series.
func TestCollector_ObservesRelax(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	n := descent.NewNetwork(descent.WithObserver(c))
	a := n.DeclareConstant(3)
	b := n.DeclareConstant(4)
	v := n.DeclareNamed("v", 0)
	n.Add(a, b, v)

	n.Relax(40)
	n.Relax(60)

	assert.Equal(t, 100.0, testutil.ToFloat64(c.RelaxSteps))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.RelaxBatches))
	assert.Equal(t, n.TotalError(), testutil.ToFloat64(c.TotalError))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.Wires))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Constraints))

	count, err := testutil.GatherAndCount(reg)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

// TestNewCollector_DuplicateRegistration surfaces the registry error.
func TestNewCollector_DuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := metrics.NewCollector(reg)
	require.NoError(t, err)

	_, err = metrics.NewCollector(reg)
	assert.Error(t, err)

	c, err := metrics.NewCollector(nil)
	require.NoError(t, err)
	c.ObserveRelax(1, 0.5, 2, 3)
	assert.Equal(t, 0.5, testutil.ToFloat64(c.TotalError))
}
