// Package metrics exposes run counters in the Prometheus textfile format.
package metrics

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"NewsDesk/internal/domain"
	"NewsDesk/internal/ports"
)

// Metrics holds the collectors of one process.
type Metrics struct {
	registry *prometheus.Registry

	// ItemsTotal counts processed entries by command, topic and outcome.
	ItemsTotal *prometheus.CounterVec
	// SyncFailures counts syncer commits that returned an error.
	SyncFailures prometheus.Counter
	// IndexSizeGauge tracks the rolling index length per topic.
	IndexSizeGauge *prometheus.GaugeVec
	// LastRun records the unix time a command last finished.
	LastRun *prometheus.GaugeVec
}

// New registers the collectors on a private registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		ItemsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "newsdesk",
				Name:      "items_total",
				Help:      "Entries processed, by command, topic and outcome",
			},
			[]string{"command", "topic", "outcome"},
		),
		SyncFailures: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: "newsdesk",
				Name:      "sync_failures_total",
				Help:      "Sync commits that failed",
			},
		),
		IndexSizeGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "newsdesk",
				Name:      "index_size",
				Help:      "Entries in the rolling news index",
			},
			[]string{"topic"},
		),
		LastRun: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "newsdesk",
				Name:      "last_run_timestamp_seconds",
				Help:      "Unix time the command last finished",
			},
			[]string{"command"},
		),
	}
}

// Registry returns the registry holding every collector.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Observe folds the outcomes of a finished run into the counters.
func (m *Metrics) Observe(s domain.Summary, finishedUnix int64) {
	for _, o := range s.Outcomes {
		m.ItemsTotal.WithLabelValues(s.Command, o.Topic, string(o.Kind)).Inc()
	}
	m.LastRun.WithLabelValues(s.Command).Set(float64(finishedUnix))
}

// IndexSize records the rolling index length of topic.
func (m *Metrics) IndexSize(topic string, size int) {
	m.IndexSizeGauge.WithLabelValues(topic).Set(float64(size))
}

// WriteTextfile dumps the registry for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create metrics dir: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// CountingSyncer counts failed commits of the wrapped syncer.
type CountingSyncer struct {
	next    ports.Syncer
	metrics *Metrics
}

var (
	_ ports.Syncer   = (*CountingSyncer)(nil)
	_ ports.Observer = (*Metrics)(nil)
)

// WrapSyncer decorates next. A nil next yields nil so callers keep skipping sync.
func (m *Metrics) WrapSyncer(next ports.Syncer) ports.Syncer {
	if next == nil {
		return nil
	}
	return &CountingSyncer{next: next, metrics: m}
}

// Commit forwards to the wrapped syncer.
func (c *CountingSyncer) Commit(ctx context.Context, paths []string, message string) error {
	err := c.next.Commit(ctx, paths, message)
	if err != nil {
		c.metrics.SyncFailures.Inc()
	}
	return err
}
