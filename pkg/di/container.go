// Package di provides dependency injection container
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/config"
	"github.com/ssargent/dbcport/pkg/logging"
	"github.com/ssargent/dbcport/pkg/metrics"
	"github.com/ssargent/dbcport/pkg/pipeline"
	"github.com/ssargent/dbcport/pkg/projection"
)

// Container holds all the dependencies for the application
type Container struct {
	config      *config.Config
	logger      *zap.Logger
	metrics     *metrics.Metrics
	sinkFactory projection.SinkFactory
}

// NewContainer creates a new dependency injection container for cfg
func NewContainer(cfg *config.Config) (*Container, error) {
	logger, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, err
	}
	return &Container{
		config:      cfg,
		logger:      logger,
		metrics:     metrics.New(),
		sinkFactory: projection.NewSinkFactory(),
	}, nil
}

// GetConfig returns the configuration
func (c *Container) GetConfig() *config.Config {
	return c.config
}

// GetLogger returns the logger
func (c *Container) GetLogger() *zap.Logger {
	return c.logger
}

// GetMetrics returns the run metrics
func (c *Container) GetMetrics() *metrics.Metrics {
	return c.metrics
}

// GetSinkFactory returns the sink factory
func (c *Container) GetSinkFactory() projection.SinkFactory {
	return c.sinkFactory
}

// SetLogger allows overriding the logger (for testing)
func (c *Container) SetLogger(logger *zap.Logger) {
	c.logger = logger
}

// SetSinkFactory allows overriding the sink factory (for testing)
func (c *Container) SetSinkFactory(factory projection.SinkFactory) {
	c.sinkFactory = factory
}

// OpenSink opens the configured sink for run runID, counting retries in the
// container's metrics
func (c *Container) OpenSink(ctx context.Context, runID ksuid.KSUID) (projection.Sink, error) {
	sink, err := c.sinkFactory.CreateSink(ctx, c.config.Sink, projection.SinkParams{
		RunID:      runID,
		AllLocales: c.config.DBC.AllLocales,
		OnRetry: func(error, time.Duration) {
			c.metrics.RecordSinkRetry()
		},
		Logger: c.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open %s sink: %w", c.config.Sink.Kind, err)
	}
	return sink, nil
}

// DecodeOptions returns the decoder options from the configuration
func (c *Container) DecodeOptions() codec.Options {
	return codec.Options{
		Magic:      c.config.DBC.Magic,
		Limit:      c.config.DBC.Limit,
		AllLocales: c.config.DBC.AllLocales,
	}
}

// NewRunner builds a pipeline runner over sink from the configuration
func (c *Container) NewRunner(sink projection.Sink) *pipeline.Runner {
	return pipeline.NewRunner(sink, c.metrics, c.logger, pipeline.Options{
		Workers:   c.config.DBC.Workers,
		BatchSize: c.config.Sink.BatchSize,
		Decode:    c.DecodeOptions(),
	})
}

// Close flushes the logger and writes the metrics textfile when configured
func (c *Container) Close() error {
	_ = c.logger.Sync()
	if c.config.Metrics.Textfile == "" {
		return nil
	}
	return c.metrics.WriteTextfile(c.config.Metrics.Textfile)
}
