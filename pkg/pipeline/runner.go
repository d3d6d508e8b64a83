// Package pipeline imports a directory of DBC files into a projection sink.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"github.com/segmentio/ksuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/metrics"
	"github.com/ssargent/dbcport/pkg/projection"
)

// Options controls a Runner.
type Options struct {
	Workers   int // files decoded in parallel; defaults to 1
	BatchSize int // records handed to the sink per Write; 0 writes a file at once
	Decode    codec.Options
}

// Runner decodes jobs and writes their records to a sink.
type Runner struct {
	sink    projection.Sink
	metrics *metrics.Metrics
	logger  *zap.Logger
	opts    Options
}

// NewRunner creates a runner. A nil logger discards logs.
func NewRunner(sink projection.Sink, m *metrics.Metrics, logger *zap.Logger, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if m == nil {
		m = metrics.New()
	}
	return &Runner{sink: sink, metrics: m, logger: logger, opts: opts}
}

// Run processes jobs with at most Workers files in flight. A failing file
// never stops the others; cancelling ctx fails the files not yet finished.
// skipped outcomes are appended to the report unchanged.
func (r *Runner) Run(ctx context.Context, runID ksuid.KSUID, jobs []Job, skipped ...Outcome) *Report {
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(r.opts.Workers)
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			outcomes[i] = r.process(ctx, job)
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range skipped {
		r.logger.Info("skipped file",
			zap.String("path", o.Path),
			zap.Error(o.Err))
		r.metrics.RecordFile(o.Status.String())
	}

	return &Report{RunID: runID, Outcomes: append(outcomes, skipped...)}
}

func (r *Runner) process(ctx context.Context, job Job) Outcome {
	start := time.Now()
	out := Outcome{Path: job.Path, RecordType: job.RecordType}
	logger := r.logger.With(zap.String("path", job.Path), zap.String("record_type", job.RecordType))

	records, warnings, err := r.importFile(ctx, job)
	out.Duration = time.Since(start)
	out.Warnings = warnings
	for _, w := range warnings {
		var lm *codec.LayoutMismatchWarning
		if errors.As(w, &lm) {
			r.metrics.RecordLayoutMismatch(job.RecordType)
		}
		logger.Warn("layout warning", zap.Error(w))
	}

	if err != nil {
		out.Status = StatusFailed
		out.Err = err
		r.metrics.RecordFile(out.Status.String())
		logger.Error("import failed", zap.Error(err), zap.Duration("duration", out.Duration))
		return out
	}

	out.Status = StatusOK
	out.Records = records
	r.metrics.RecordFile(out.Status.String())
	r.metrics.RecordDecode(job.RecordType, records, out.Duration)
	logger.Info("imported file",
		zap.Int("records", records),
		zap.Duration("duration", out.Duration))
	return out
}

// importFile decodes the whole file before writing anything, so a file with
// a bad record leaves no rows behind.
func (r *Runner) importFile(ctx context.Context, job Job) (int, []error, error) {
	if err := ctx.Err(); err != nil {
		return 0, nil, err
	}

	fr, err := codec.OpenFile(job.Schema, job.Path, r.opts.Decode)
	if err != nil {
		return 0, nil, err
	}
	defer fr.Close()
	warnings := fr.Warnings()

	var records []codec.Record
	for fr.Next() {
		records = append(records, fr.Record())
	}
	if err := fr.Err(); err != nil {
		return 0, warnings, err
	}

	if err := r.sink.Prepare(ctx, job.Schema); err != nil {
		return 0, warnings, fmt.Errorf("prepare %s: %w", job.RecordType, err)
	}

	batches := [][]codec.Record{records}
	if r.opts.BatchSize > 0 {
		batches = lo.Chunk(records, r.opts.BatchSize)
	}
	for _, batch := range batches {
		if err := r.sink.Write(ctx, job.Schema, batch); err != nil {
			return 0, warnings, fmt.Errorf("write %s: %w", job.RecordType, err)
		}
	}
	return len(records), warnings, nil
}
