// Package metrics holds the Prometheus instruments for a batch import.
package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	StatusOK      = "ok"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// Metrics holds all Prometheus metrics for a run
type Metrics struct {
	gatherer prometheus.Gatherer

	// File metrics
	filesTotal *prometheus.CounterVec

	// Decode metrics
	recordsDecodedTotal *prometheus.CounterVec
	decodeDuration      *prometheus.HistogramVec
	layoutMismatches    *prometheus.CounterVec

	// Sink metrics
	sinkRetriesTotal prometheus.Counter
}

// New creates the metrics and registers them on a fresh registry
func New() *Metrics {
	reg := prometheus.NewRegistry()
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the metrics on reg. g is used by WriteTextfile
// and may be nil when the textfile is never written.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: g,

		filesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcport_files_total",
				Help: "Total number of DBC files processed, by outcome",
			},
			[]string{"status"},
		),

		recordsDecodedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcport_records_decoded_total",
				Help: "Total number of records decoded",
			},
			[]string{"record_type"},
		),

		decodeDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "dbcport_decode_duration_seconds",
				Help:    "Time spent decoding and writing one file in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"record_type"},
		),

		layoutMismatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "dbcport_layout_mismatches_total",
				Help: "Files whose header field count disagrees with the schema",
			},
			[]string{"record_type"},
		),

		sinkRetriesTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "dbcport_sink_retries_total",
				Help: "Total number of retried sink writes",
			},
		),
	}
}

// RecordFile records the outcome of one file
func (m *Metrics) RecordFile(status string) {
	m.filesTotal.WithLabelValues(status).Inc()
}

// RecordDecode records a decoded file
func (m *Metrics) RecordDecode(recordType string, records int, duration time.Duration) {
	m.recordsDecodedTotal.WithLabelValues(recordType).Add(float64(records))
	m.decodeDuration.WithLabelValues(recordType).Observe(duration.Seconds())
}

// RecordLayoutMismatch counts a header/schema field-count disagreement
func (m *Metrics) RecordLayoutMismatch(recordType string) {
	m.layoutMismatches.WithLabelValues(recordType).Inc()
}

// RecordSinkRetry counts one retried sink write
func (m *Metrics) RecordSinkRetry() {
	m.sinkRetriesTotal.Inc()
}

// WriteTextfile writes all gathered metrics in the text exposition format,
// for pickup by the node exporter's textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m.gatherer == nil {
		return fmt.Errorf("metrics have no gatherer")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create metrics directory: %w", err)
	}
	if err := prometheus.WriteToTextfile(path, m.gatherer); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
