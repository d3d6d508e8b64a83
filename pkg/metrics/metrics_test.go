package metrics

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Counters(t *testing.T) {
	m := New()

	m.RecordFile(StatusOK)
	m.RecordFile(StatusOK)
	m.RecordFile(StatusFailed)
	m.RecordDecode("Spell", 120, 5*time.Millisecond)
	m.RecordDecode("Spell", 30, time.Millisecond)
	m.RecordLayoutMismatch("Item")
	m.RecordSinkRetry()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.filesTotal.WithLabelValues(StatusOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.filesTotal.WithLabelValues(StatusFailed)))
	assert.Equal(t, 150.0, testutil.ToFloat64(m.recordsDecodedTotal.WithLabelValues("Spell")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.layoutMismatches.WithLabelValues("Item")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.sinkRetriesTotal))
	assert.Equal(t, 1, testutil.CollectAndCount(m.decodeDuration))
}

func TestMetrics_SeparateRegistries(t *testing.T) {
	// two instances must not collide on registration
	a := New()
	b := New()
	a.RecordSinkRetry()

	assert.Equal(t, 1.0, testutil.ToFloat64(a.sinkRetriesTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.sinkRetriesTotal))
}

func TestMetrics_WriteTextfile(t *testing.T) {
	m := New()
	m.RecordFile(StatusSkipped)
	m.RecordDecode("Spell", 3, time.Millisecond)

	path := filepath.Join(t.TempDir(), "textfile", "dbcport.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `dbcport_files_total{status="skipped"} 1`)
	assert.Contains(t, string(data), `dbcport_records_decoded_total{record_type="Spell"} 3`)
}

func TestMetrics_WriteTextfileWithoutGatherer(t *testing.T) {
	m := NewWithRegistry(prometheus.NewRegistry(), nil)
	err := m.WriteTextfile(filepath.Join(t.TempDir(), "x.prom"))
	assert.Error(t, err)
}
