// Package telemetry records how the sampler itself behaved during an
// invocation and can export it as a Prometheus textfile.
package telemetry

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/HerbHall/netsampler/internal/version"
)

const namespace = "netsampler"

// Metrics holds the sampler's self-metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	Runs          *prometheus.CounterVec
	RowsParsed    prometheus.Gauge
	RowsSkipped   *prometheus.GaugeVec
	Records       prometheus.Gauge
	LinesEmitted  prometheus.Gauge
	CounterResets prometheus.Gauge
	Unmatched     prometheus.Gauge
	LastRun       prometheus.Gauge
	RunDuration   prometheus.Gauge
	BuildInfo     *prometheus.GaugeVec
}

// New registers all self-metrics on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Sampling passes in this invocation, by engine state.",
		}, []string{"state"}),
		RowsParsed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_parsed",
			Help:      "Active link rows parsed in the last pass.",
		}),
		RowsSkipped: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "rows_skipped",
			Help:      "Link rows dropped in the last pass, by reason.",
		}, []string{"reason"}),
		Records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Records in the last captured sample.",
		}),
		LinesEmitted: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "lines_emitted",
			Help:      "Output lines written in the last pass.",
		}),
		CounterResets: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "counter_resets",
			Help:      "Readings below their previous value in the last pass.",
		}),
		Unmatched: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "unmatched_records",
			Help:      "Readings with no previous value in the last pass.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last pass finished.",
		}),
		RunDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_duration_seconds",
			Help:      "Wall time of the last pass.",
		}),
		BuildInfo: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "build_info",
			Help:      "Always 1; labels identify the sampler build.",
		}, version.LabelNames),
	}
	m.BuildInfo.WithLabelValues(version.Labels()...).Set(1)

	m.registry.MustRegister(
		m.Runs, m.RowsParsed, m.RowsSkipped, m.Records, m.LinesEmitted,
		m.CounterResets, m.Unmatched, m.LastRun, m.RunDuration, m.BuildInfo,
	)
	return m
}

// Registry returns the registry holding the self-metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRun records the end of a pass.
func (m *Metrics) ObserveRun(state string, started, finished time.Time) {
	m.Runs.WithLabelValues(state).Inc()
	m.LastRun.Set(float64(finished.Unix()))
	m.RunDuration.Set(finished.Sub(started).Seconds())
}

// WriteTextfile atomically writes the registry in the text exposition format
// for node_exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write telemetry textfile %q: %w", path, err)
	}
	return nil
}
