// Package projection writes decoded records to their final home.
//
// A Sink receives one schema at a time through Prepare and then any number of
// record batches through Write. Two sinks are provided:
//
//   - SQLSink maps every schema to a table in SQLite or MySQL through sqlx.
//     Column types follow the field kind, the ID column becomes the primary
//     key, and inserts are batched into multi-row statements that are retried
//     with exponential backoff.
//   - ArchiveSink stores records as msgpack maps in a pebble database, keyed by
//     record type, run and sequence, next to the schema they were decoded with.
//
// Records must be decoded with the same AllLocales setting the sink was
// configured with, since that decides the column set.
package projection
