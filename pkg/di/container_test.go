package di

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/segmentio/ksuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ssargent/dbcport/pkg/config"
	"github.com/ssargent/dbcport/pkg/projection"
)

type fakeSinkFactory struct {
	params projection.SinkParams
}

func (f *fakeSinkFactory) CreateSink(_ context.Context, _ config.Sink, params projection.SinkParams) (projection.Sink, error) {
	f.params = params
	return nil, assert.AnError
}

func TestNewContainer(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DBC.Limit = 7
	cfg.DBC.AllLocales = true

	c, err := NewContainer(cfg)
	require.NoError(t, err)
	assert.Same(t, cfg, c.GetConfig())
	assert.NotNil(t, c.GetLogger())
	assert.NotNil(t, c.GetMetrics())
	assert.NotNil(t, c.GetSinkFactory())

	opts := c.DecodeOptions()
	assert.Equal(t, "WDBC", opts.Magic)
	assert.Equal(t, 7, opts.Limit)
	assert.True(t, opts.AllLocales)
	assert.NotNil(t, c.NewRunner(nil))
}

func TestNewContainer_BadLogLevel(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Logging.Level = "chatty"
	_, err := NewContainer(cfg)
	assert.Error(t, err)
}

func TestContainer_OpenSink(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.DBC.AllLocales = true
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	c.SetLogger(zap.NewNop())

	factory := &fakeSinkFactory{}
	c.SetSinkFactory(factory)

	runID := ksuid.New()
	_, err = c.OpenSink(context.Background(), runID)
	require.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, runID, factory.params.RunID)
	assert.True(t, factory.params.AllLocales)
	require.NotNil(t, factory.params.OnRetry)
}

func TestContainer_CloseWritesTextfile(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Metrics.Textfile = filepath.Join(t.TempDir(), "dbcport.prom")
	c, err := NewContainer(cfg)
	require.NoError(t, err)
	c.SetLogger(zap.NewNop())

	c.GetMetrics().RecordSinkRetry()
	require.NoError(t, c.Close())

	data, err := os.ReadFile(cfg.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(data), "dbcport_sink_retries_total 1")
}
