package projection

import (
	"context"
	"fmt"
	"time"

	"github.com/segmentio/ksuid"
	"go.uber.org/zap"

	"github.com/ssargent/dbcport/pkg/config"
)

// SinkParams carries the run-specific inputs of a sink.
type SinkParams struct {
	RunID      ksuid.KSUID
	AllLocales bool
	OnRetry    func(err error, wait time.Duration)
	Logger     *zap.Logger
}

// SinkFactory creates sinks from configuration
type SinkFactory interface {
	// CreateSink opens the sink described by cfg
	CreateSink(ctx context.Context, cfg config.Sink, params SinkParams) (Sink, error)
}

// DefaultSinkFactory is the default implementation of SinkFactory
type DefaultSinkFactory struct{}

// NewSinkFactory creates a new sink factory
func NewSinkFactory() SinkFactory {
	return &DefaultSinkFactory{}
}

// CreateSink opens an SQLSink or an ArchiveSink depending on cfg.Kind
func (f *DefaultSinkFactory) CreateSink(ctx context.Context, cfg config.Sink, params SinkParams) (Sink, error) {
	switch cfg.Kind {
	case config.SinkSQL:
		return OpenSQLSink(ctx, cfg.Driver, cfg.DSN, SQLOptions{
			TablePrefix:  cfg.TablePrefix,
			BatchSize:    cfg.BatchSize,
			MaxRetries:   cfg.MaxRetries,
			DropExisting: cfg.DropExisting,
			AllLocales:   params.AllLocales,
			OnRetry:      params.OnRetry,
			Logger:       params.Logger,
		})
	case config.SinkPebble:
		return NewArchiveSink(cfg.PebbleDir, params.RunID)
	default:
		return nil, fmt.Errorf("unsupported sink kind %q", cfg.Kind)
	}
}
