package pipeline

import (
	"time"

	"github.com/segmentio/ksuid"

	"github.com/ssargent/dbcport/pkg/metrics"
)

// Status is the result of processing one file.
type Status int

const (
	StatusOK Status = iota
	StatusFailed
	StatusSkipped
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return metrics.StatusOK
	case StatusFailed:
		return metrics.StatusFailed
	case StatusSkipped:
		return metrics.StatusSkipped
	}
	return "unknown"
}

// Outcome reports what happened to one file.
type Outcome struct {
	Path       string
	RecordType string
	Status     Status
	Records    int
	Warnings   []error
	Err        error
	Duration   time.Duration
}

// Report collects the outcomes of a run in input order, skipped files last.
type Report struct {
	RunID    ksuid.KSUID
	Outcomes []Outcome
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome {
	return r.filter(StatusFailed)
}

// Skipped returns the skipped outcomes.
func (r *Report) Skipped() []Outcome {
	return r.filter(StatusSkipped)
}

// TotalRecords sums the records written by successful files.
func (r *Report) TotalRecords() int {
	total := 0
	for _, o := range r.Outcomes {
		if o.Status == StatusOK {
			total += o.Records
		}
	}
	return total
}

func (r *Report) filter(status Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == status {
			out = append(out, o)
		}
	}
	return out
}
