package suite

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts scenario outcomes for a run. They are written out as a
// node_exporter textfile so scheduled runs can be scraped.
type Metrics struct {
	registry  *prometheus.Registry
	scenarios *prometheus.CounterVec
	duration  *prometheus.HistogramVec
	attempts  prometheus.Counter
}

// NewMetrics registers the suite metrics on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		scenarios: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kanban_e2e_scenarios_total",
			Help: "Scenarios run, by stage and result.",
		}, []string{"stage", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "kanban_e2e_scenario_duration_seconds",
			Help:    "Time spent on a scenario across all of its attempts.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 30, 60},
		}, []string{"stage"}),
		attempts: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kanban_e2e_scenario_attempts_total",
			Help: "Scenario attempts including retries.",
		}),
	}
	m.registry.MustRegister(m.scenarios, m.duration, m.attempts)
	return m
}

// Registry exposes the registry, e.g. for a push gateway.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) observe(r Result) {
	m.scenarios.WithLabelValues(r.Stage, string(r.Status)).Inc()
	if r.Status == StatusSkipped {
		return
	}
	m.duration.WithLabelValues(r.Stage).Observe(r.Duration.Seconds())
	m.attempts.Add(float64(r.Attempts))
}

// WriteToTextfile writes the current values to path atomically.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("writing metrics: %w", err)
	}
	return nil
}
