package projection

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/segmentio/ksuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/schema"
)

const (
	recordPrefix = "rec/"
	schemaPrefix = "schema/"
)

// ArchiveSink stores decoded records in a pebble database. Every run writes
// under its own ksuid so repeated imports never overwrite each other.
type ArchiveSink struct {
	db    *pebble.DB
	runID ksuid.KSUID

	mu  sync.Mutex
	seq map[string]int
}

var _ Sink = (*ArchiveSink)(nil)

// NewArchiveSink opens (or creates) the archive at path for run runID. A zero
// runID gets a fresh one.
func NewArchiveSink(path string, runID ksuid.KSUID) (*ArchiveSink, error) {
	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", path, err)
	}
	if runID == ksuid.Nil {
		runID = ksuid.New()
	}
	return &ArchiveSink{db: db, runID: runID, seq: make(map[string]int)}, nil
}

// RunID returns the run the sink writes under.
func (a *ArchiveSink) RunID() ksuid.KSUID {
	return a.runID
}

// RecordKey returns the key of record seq of recordType in run.
func RecordKey(recordType string, runID ksuid.KSUID, seq int) []byte {
	return []byte(fmt.Sprintf("%s%s/%s/%012d", recordPrefix, recordType, runID, seq))
}

// SchemaKey returns the key holding the schema document of recordType.
func SchemaKey(recordType string) []byte {
	return []byte(schemaPrefix + recordType)
}

// Prepare stores the schema next to the records.
func (a *ArchiveSink) Prepare(_ context.Context, s *schema.Schema) error {
	if s == nil {
		return codec.ErrNoSchema
	}
	data, err := s.MarshalJSON()
	if err != nil {
		return fmt.Errorf("failed to encode schema %s: %w", s.Name(), err)
	}
	if err := a.db.Set(SchemaKey(s.Name()), data, pebble.Sync); err != nil {
		return fmt.Errorf("failed to store schema %s: %w", s.Name(), err)
	}

	a.mu.Lock()
	if _, ok := a.seq[s.Name()]; !ok {
		a.seq[s.Name()] = 0
	}
	a.mu.Unlock()
	return nil
}

// Write appends records as msgpack maps in one batch.
func (a *ArchiveSink) Write(ctx context.Context, s *schema.Schema, records []codec.Record) error {
	if s == nil {
		return codec.ErrNoSchema
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	a.mu.Lock()
	start, ok := a.seq[s.Name()]
	if ok {
		a.seq[s.Name()] = start + len(records)
	}
	a.mu.Unlock()
	if !ok {
		return fmt.Errorf("%s: %w", s.Name(), ErrNotPrepared)
	}

	batch := a.db.NewBatch()
	defer batch.Close()

	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetSortMapKeys(true)
	for i, rec := range records {
		buf.Reset()
		if err := enc.Encode(rec.Map()); err != nil {
			return fmt.Errorf("failed to encode %s record %d: %w", s.Name(), start+i, err)
		}
		if err := batch.Set(RecordKey(s.Name(), a.runID, start+i), buf.Bytes(), nil); err != nil {
			return err
		}
	}

	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("failed to commit %s records: %w", s.Name(), err)
	}
	return nil
}

// Schema loads the schema stored for recordType.
func (a *ArchiveSink) Schema(recordType string) (*schema.Schema, error) {
	data, closer, err := a.db.Get(SchemaKey(recordType))
	if err != nil {
		return nil, fmt.Errorf("schema %s: %w", recordType, err)
	}
	defer closer.Close()

	var s schema.Schema
	if err := s.UnmarshalJSON(data); err != nil {
		return nil, err
	}
	return &s, nil
}

// Scan calls fn for every record of recordType stored by run, in sequence
// order. Integers come back as int64 or uint64 and floats as float64.
func (a *ArchiveSink) Scan(recordType string, runID ksuid.KSUID, fn func(seq int, values map[string]any) error) error {
	prefix := []byte(fmt.Sprintf("%s%s/%s/", recordPrefix, recordType, runID))
	iter, err := a.db.NewIter(&pebble.IterOptions{
		LowerBound: prefix,
		UpperBound: prefixEnd(prefix),
	})
	if err != nil {
		return err
	}
	defer iter.Close()

	for iter.First(); iter.Valid(); iter.Next() {
		var seq int
		if _, err := fmt.Sscanf(strings.TrimPrefix(string(iter.Key()), string(prefix)), "%d", &seq); err != nil {
			return fmt.Errorf("malformed archive key %q: %w", iter.Key(), err)
		}

		dec := msgpack.NewDecoder(bytes.NewReader(iter.Value()))
		dec.UseLooseInterfaceDecoding(true)
		var values map[string]any
		if err := dec.Decode(&values); err != nil {
			return fmt.Errorf("failed to decode %s record %d: %w", recordType, seq, err)
		}
		if err := fn(seq, values); err != nil {
			return err
		}
	}
	return iter.Error()
}

// Close closes the pebble database.
func (a *ArchiveSink) Close() error {
	return a.db.Close()
}

func prefixEnd(prefix []byte) []byte {
	end := append([]byte(nil), prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}
