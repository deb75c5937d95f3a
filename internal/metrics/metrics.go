// Package metrics counts poll loop outcomes and exports them in the Prometheus
// text format for the node exporter textfile collector.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/titlemirror/titlemirror/pkg/window"
)

const namespace = "titlemirror"

// Metrics implements monitor.Observer on a private registry
type Metrics struct {
	registry      *prometheus.Registry
	path          string
	ticks         prometheus.Counter
	lookups       *prometheus.CounterVec
	titleFailures prometheus.Counter
	writes        prometheus.Counter
	writeFailures prometheus.Counter
	lastWrite     prometheus.Gauge
}

// New creates the collectors. Flush writes them to path; an empty path makes Flush a no-op.
func New(path string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		path:     path,
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ticks_total",
			Help:      "Number of completed poll ticks.",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "window_lookups_total",
			Help:      "Window lookups by result.",
		}, []string{"status"}),
		titleFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "title_query_failures_total",
			Help:      "Title queries that failed.",
		}),
		writes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "writes_total",
			Help:      "Output file rewrites.",
		}),
		writeFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "write_failures_total",
			Help:      "Output file writes that failed.",
		}),
		lastWrite: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_write_timestamp_seconds",
			Help:      "Unix time of the last successful output file write.",
		}),
	}

	m.registry.MustRegister(m.ticks, m.lookups, m.titleFailures, m.writes, m.writeFailures, m.lastWrite)

	for _, status := range []window.LookupStatus{window.Found, window.NotFound, window.QueryError} {
		m.lookups.WithLabelValues(status.String())
	}

	return m
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) LookupCompleted(status window.LookupStatus) {
	m.lookups.WithLabelValues(status.String()).Inc()
}

func (m *Metrics) TitleQueryFailed() {
	m.titleFailures.Inc()
}

func (m *Metrics) WriteCompleted(at time.Time) {
	m.writes.Inc()
	m.lastWrite.Set(float64(at.UnixNano()) / 1e9)
}

func (m *Metrics) WriteFailed() {
	m.writeFailures.Inc()
}

func (m *Metrics) TickCompleted() {
	m.ticks.Inc()
}

// Flush writes all metrics to the textfile, replacing it atomically
func (m *Metrics) Flush() error {
	if m.path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(m.path, m.registry)
}
