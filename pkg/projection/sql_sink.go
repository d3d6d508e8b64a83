package projection

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/mattn/go-sqlite3"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/ssargent/dbcport/pkg/codec"
	"github.com/ssargent/dbcport/pkg/schema"
)

// SQLOptions configures an SQLSink.
type SQLOptions struct {
	TablePrefix  string
	BatchSize    int  // rows per INSERT; defaults to 500
	MaxRetries   int  // retries per batch after the first attempt
	DropExisting bool // drop tables before creating them
	AllLocales   bool // must match the decoder option

	// InitialInterval is the first backoff delay; defaults to 100ms.
	InitialInterval time.Duration
	// OnRetry is called before every retried batch.
	OnRetry func(err error, wait time.Duration)
	Logger  *zap.Logger
}

type sqlTable struct {
	name string
	cols []codec.Column
}

// SQLSink writes records to one table per record type.
type SQLSink struct {
	db      *sqlx.DB
	dialect Dialect
	opts    SQLOptions
	logger  *zap.Logger

	mu     sync.RWMutex
	tables map[string]sqlTable

	// exec runs one INSERT statement in its own transaction
	exec func(ctx context.Context, query string, args []any) error
}

var _ Sink = (*SQLSink)(nil)

// OpenSQLSink connects to dsn with driver and returns a sink owning the
// connection.
func OpenSQLSink(ctx context.Context, driver, dsn string, opts SQLOptions) (*SQLSink, error) {
	dialect, err := ParseDialect(driver)
	if err != nil {
		return nil, err
	}

	db, err := sqlx.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// one writer at a time; in-memory databases are per connection
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", dialect, err)
	}
	return NewSQLSink(db, dialect, opts), nil
}

// NewSQLSink wraps an open database.
func NewSQLSink(db *sqlx.DB, dialect Dialect, opts SQLOptions) *SQLSink {
	if opts.BatchSize < 1 {
		opts.BatchSize = 500
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	}
	if opts.InitialInterval <= 0 {
		opts.InitialInterval = 100 * time.Millisecond
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &SQLSink{
		db:      db,
		dialect: dialect,
		opts:    opts,
		logger:  logger,
		tables:  make(map[string]sqlTable),
	}
	s.exec = s.insert
	return s
}

// DB returns the underlying connection.
func (s *SQLSink) DB() *sqlx.DB {
	return s.db
}

// Table returns the table name used for a record type.
func (s *SQLSink) Table(recordType string) string {
	return TableName(s.opts.TablePrefix, recordType)
}

// Prepare creates the table for sch, dropping it first when configured.
func (s *SQLSink) Prepare(ctx context.Context, sch *schema.Schema) error {
	if sch == nil {
		return codec.ErrNoSchema
	}
	t := sqlTable{
		name: s.Table(sch.Name()),
		cols: codec.Columns(sch, codec.Options{AllLocales: s.opts.AllLocales}),
	}

	if s.opts.DropExisting {
		if _, err := s.db.ExecContext(ctx, s.dialect.DropTableSQL(t.name)); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", t.name, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, s.dialect.CreateTableSQL(t.name, sch, t.cols)); err != nil {
		return fmt.Errorf("failed to create table %s: %w", t.name, err)
	}

	s.mu.Lock()
	s.tables[sch.Name()] = t
	s.mu.Unlock()

	s.logger.Debug("prepared table",
		zap.String("table", t.name),
		zap.Int("columns", len(t.cols)))
	return nil
}

// Write inserts records in multi-row statements. Each statement runs in its
// own transaction and is retried on transient failures.
func (s *SQLSink) Write(ctx context.Context, sch *schema.Schema, records []codec.Record) error {
	if sch == nil {
		return codec.ErrNoSchema
	}
	s.mu.RLock()
	t, ok := s.tables[sch.Name()]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%s: %w", sch.Name(), ErrNotPrepared)
	}

	for i, rec := range records {
		if rec.Len() != len(t.cols) {
			return fmt.Errorf("%s record %d has %d values for %d columns: %w",
				sch.Name(), i, rec.Len(), len(t.cols), ErrColumnMismatch)
		}
	}

	rows := s.dialect.rowsPerStatement(s.opts.BatchSize, len(t.cols))
	for _, chunk := range lo.Chunk(records, rows) {
		if err := s.insertWithRetry(ctx, t, chunk); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLSink) insertWithRetry(ctx context.Context, t sqlTable, chunk []codec.Record) error {
	query := s.dialect.InsertSQL(t.name, t.cols, len(chunk))
	args := make([]any, 0, len(chunk)*len(t.cols))
	for _, rec := range chunk {
		for _, e := range rec.Entries() {
			args = append(args, s.dialect.Arg(e.Value))
		}
	}

	op := func() error {
		if err := ctx.Err(); err != nil {
			return backoff.Permanent(err)
		}
		err := s.exec(ctx, query, args)
		if err != nil && !Transient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.InitialInterval
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(s.opts.MaxRetries)), ctx)

	notify := func(err error, wait time.Duration) {
		s.logger.Warn("retrying batch insert",
			zap.String("table", t.name),
			zap.Int("rows", len(chunk)),
			zap.Duration("wait", wait),
			zap.Error(err))
		if s.opts.OnRetry != nil {
			s.opts.OnRetry(err, wait)
		}
	}

	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return fmt.Errorf("failed to insert %d rows into %s: %w", len(chunk), t.name, err)
	}
	return nil
}

func (s *SQLSink) insert(ctx context.Context, query string, args []any) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			err = errors.Join(err, ignoreDone(tx.Rollback()))
		}
	}()

	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}
	return tx.Commit()
}

// MySQL server errors worth another attempt
const (
	mysqlLockWaitTimeout = 1205
	mysqlDeadlock        = 1213
)

// Transient reports whether a failed write may succeed when retried: lost
// connections, busy or locked SQLite databases, MySQL lock timeouts and
// deadlocks. Constraint violations and bad statements are not transient.
func Transient(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, mysql.ErrInvalidConn) {
		return true
	}
	var lite sqlite3.Error
	if errors.As(err, &lite) {
		return lite.Code == sqlite3.ErrBusy || lite.Code == sqlite3.ErrLocked
	}
	var my *mysql.MySQLError
	if errors.As(err, &my) {
		return my.Number == mysqlLockWaitTimeout || my.Number == mysqlDeadlock
	}
	return false
}

func ignoreDone(err error) error {
	if errors.Is(err, sql.ErrTxDone) {
		return nil
	}
	return err
}

// Close closes the database connection.
func (s *SQLSink) Close() error {
	return s.db.Close()
}
