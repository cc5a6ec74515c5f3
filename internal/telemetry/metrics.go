package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the engine's run-time behaviour to Prometheus. The
// telemetry store feeds it on every Record call.
type Metrics struct {
	runsTotal   *prometheus.CounterVec
	runDuration prometheus.Histogram
	objective   prometheus.Histogram
	efficiency  prometheus.Gauge
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "matchmaker",
			Name:      "runs_total",
			Help:      "Optimization runs by algorithm and outcome.",
		}, []string{"algorithm", "outcome"}),
		runDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Name:      "run_duration_seconds",
			Help:      "Wall-clock duration of optimization runs.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}),
		objective: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "matchmaker",
			Name:      "run_objective_value",
			Help:      "Normalized objective value of successful runs.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		efficiency: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "matchmaker",
			Name:      "efficiency_score",
			Help:      "Derived 0-100 efficiency score over recent runs.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.runsTotal, m.runDuration, m.objective, m.efficiency)
	}
	return m
}

func (m *Metrics) Observe(r PerformanceRecord) {
	outcome := "success"
	if !r.Success {
		outcome = "failure"
	}
	m.runsTotal.WithLabelValues(r.Algorithm, outcome).Inc()
	m.runDuration.Observe(r.ExecutionTime.Seconds())
	if r.Success {
		m.objective.Observe(r.ObjectiveValue)
	}
}

func (m *Metrics) SetEfficiency(score float64) {
	m.efficiency.Set(score)
}
