package projection

import (
	"context"
	"errors"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/schema"
)

var (
	ErrNotPrepared    = errors.New("schema was not prepared")
	ErrColumnMismatch = errors.New("record does not match schema columns")
	ErrClosed         = errors.New("sink is closed")
)

// Sink consumes decoded records.
type Sink interface {
	// Prepare readies storage for records of s.
	Prepare(ctx context.Context, s *schema.Schema) error
	// Write stores a batch of records decoded with s.
	Write(ctx context.Context, s *schema.Schema, records []codec.Record) error
	Close() error
}
