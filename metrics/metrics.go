// SPDX-License-Identifier: MIT

// Package metrics exports relaxation progress to Prometheus.
//
// A Collector implements descent.Observer; attach it with
// descent.WithObserver (or quiver.WithNetworkOptions) and every Relax batch
// updates the counters below.
package metrics

import (
	"github.com/katalvlaran/mathtoys/descent"
	"github.com/prometheus/client_golang/prometheus"
)

// Collector owns the relaxation metrics.
type Collector struct {
	RelaxSteps   prometheus.Counter
	RelaxBatches prometheus.Counter
	TotalError   prometheus.Gauge
	Wires        prometheus.Gauge
	Constraints  prometheus.Gauge
}

var _ descent.Observer = (*Collector)(nil)

// NewCollector creates the metrics and registers them with reg.
// A nil reg skips registration, which is handy in tests.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		RelaxSteps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mathtoys_relax_steps_total",
			Help: "Gradient-descent steps performed",
		}),
		RelaxBatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mathtoys_relax_batches_total",
			Help: "Relax calls performed",
		}),
		TotalError: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mathtoys_total_error",
			Help: "Sum of squared constraint residuals after the last batch",
		}),
		Wires: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mathtoys_wires",
			Help: "Wires declared in the network, orphans included",
		}),
		Constraints: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mathtoys_constraints",
			Help: "Constraints in the network",
		}),
	}
	if reg == nil {
		return c, nil
	}
	for _, m := range []prometheus.Collector{c.RelaxSteps, c.RelaxBatches, c.TotalError, c.Wires, c.Constraints} {
		if err := reg.Register(m); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// ObserveRelax records one Relax batch.
func (c *Collector) ObserveRelax(steps int, totalError float64, wires, constraints int) {
	c.RelaxSteps.Add(float64(steps))
	c.RelaxBatches.Inc()
	c.TotalError.Set(totalError)
	c.Wires.Set(float64(wires))
	c.Constraints.Set(float64(constraints))
}
