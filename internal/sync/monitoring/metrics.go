// Package monitoring collects link pass metrics
package monitoring

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"templatesync-pg-backend/internal/sync/types"
)

const namespace = "templatesync"

// Pass outcomes
const (
	OutcomeOK      = "ok"
	OutcomeFailed  = "failed"
	OutcomeRefused = "refused"
)

// Metrics collects counters of link passes
type Metrics struct {
	passes   *prometheus.CounterVec
	entities *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewMetrics registers pass metrics with reg
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		passes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "passes_total",
			Help:      "Link passes by outcome.",
		}, []string{"outcome"}),
		entities: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "entities_total",
			Help:      "Entities changed on hosts by resource and action.",
		}, []string{"resource", "action"}),
		duration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pass_duration_seconds",
			Help:      "Duration of link passes.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 4, 8),
		}),
	}
}

// ObservePass records one pass. Entity counters only grow for committed passes.
func (m *Metrics) ObservePass(outcome string, result *types.SyncResult, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.passes.WithLabelValues(outcome).Inc()
	m.duration.Observe(elapsed.Seconds())
	if outcome != OutcomeOK || result == nil {
		return
	}
	for resource, n := range result.Created {
		m.entities.WithLabelValues(string(resource), "create").Add(float64(n))
	}
	for resource, n := range result.Updated {
		m.entities.WithLabelValues(string(resource), "update").Add(float64(n))
	}
	for resource, n := range result.Deleted {
		m.entities.WithLabelValues(string(resource), "delete").Add(float64(n))
	}
}

// WriteTextFile dumps every metric of g for the node_exporter textfile collector
func WriteTextFile(path string, g prometheus.Gatherer) error {
	return errors.Wrapf(prometheus.WriteToTextfile(path, g), "failed to write metrics to %s", path)
}
