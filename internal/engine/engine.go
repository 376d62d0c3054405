// Package engine is the raw connection to the embedded SQLite engine. It opens
// and closes the database and runs single statements with positional
// parameters, routing reads to the row-returning path and everything else to
// the mutation path. All statements go over one physical connection so that
// transaction control statements and last_insert_rowid() see the same session.
package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite" // registers the "sqlite" database/sql driver

	"smlite/internal/core"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

// Row is one result row keyed by column name.
type Row map[string]any

// Result is what a statement produced. Reads fill Columns and Rows; mutations
// fill RowsAffected and LastInsertID.
type Result struct {
	Columns      []string
	Rows         []Row
	RowsAffected int64
	LastInsertID int64
}

// Runner executes one statement with positional parameters.
type Runner interface {
	Run(ctx context.Context, stmt string, params ...any) (*Result, error)
}

// Conn is a Runner with an explicit lifecycle.
type Conn interface {
	Runner
	Open(ctx context.Context) error
	Close() error
}

// SQLite is a Conn backed by database/sql, pinned to a single connection.
type SQLite struct {
	dsn    string
	logger *slog.Logger

	mu   sync.Mutex
	db   *sql.DB
	conn *sql.Conn
	own  bool
}

// Option configures a SQLite connection.
type Option func(*SQLite)

// WithLogger sets the logger used for statement tracing.
func WithLogger(l *slog.Logger) Option {
	return func(s *SQLite) {
		if l != nil {
			s.logger = l
		}
	}
}

// New returns an unopened connection for the given DSN. A bare file path is
// a valid DSN; "file:name?mode=memory" gives a private in-memory database.
func New(dsn string, opts ...Option) *SQLite {
	s := &SQLite{dsn: dsn, logger: slog.Default(), own: true}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FromDB wraps an already opened pool. The pool is restricted to one open
// connection and is not closed by Close.
func FromDB(db *sql.DB, opts ...Option) *SQLite {
	s := &SQLite{dsn: "<external>", db: db, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open connects to the database. Calling Open on an open connection is a no-op.
func (s *SQLite) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		return nil
	}

	if s.db == nil {
		db, err := sql.Open(DriverName, s.dsn)
		if err != nil {
			return &core.ConnectionError{Source: s.dsn, Err: err}
		}
		s.db = db
	}
	s.db.SetMaxOpenConns(1)

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return s.failOpen(err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return s.failOpen(err)
	}
	s.conn = conn
	s.logger.Debug("sqlite connection opened", "dsn", s.dsn)
	return nil
}

func (s *SQLite) failOpen(err error) error {
	if s.own {
		if closeErr := s.db.Close(); closeErr != nil {
			err = fmt.Errorf("%w; additionally failed to close database: %v", err, closeErr)
		}
		s.db = nil
	}
	return &core.ConnectionError{Source: s.dsn, Err: err}
}

// Close releases the connection. Errors from both the connection and the
// pool are joined.
func (s *SQLite) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var errs []error
	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			errs = append(errs, err)
		}
		s.conn = nil
	}
	if s.db != nil && s.own {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
		s.db = nil
	}
	if err := errors.Join(errs...); err != nil {
		return &core.ConnectionError{Source: s.dsn, Err: err}
	}
	return nil
}

// Run executes one statement. The connection must be open.
func (s *SQLite) Run(ctx context.Context, stmt string, params ...any) (*Result, error) {
	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()
	if conn == nil {
		return nil, &core.ConnectionError{Source: s.dsn, Err: errors.New("connection is not open")}
	}

	s.logger.Debug("run", "sql", stmt, "params", len(params))
	if IsRead(stmt) {
		return s.query(ctx, conn, stmt, params)
	}
	return s.exec(ctx, conn, stmt, params)
}

func (s *SQLite) query(ctx context.Context, conn *sql.Conn, stmt string, params []any) (*Result, error) {
	rows, err := conn.QueryContext(ctx, stmt, params...)
	if err != nil {
		return nil, &core.EngineError{Statement: stmt, Err: err}
	}
	defer func() { _ = rows.Close() }()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &core.EngineError{Statement: stmt, Err: err}
	}

	res := &Result{Columns: cols}
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &core.EngineError{Statement: stmt, Err: err}
		}
		row := make(Row, len(cols))
		for i, c := range cols {
			row[c] = values[i]
		}
		res.Rows = append(res.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.EngineError{Statement: stmt, Err: err}
	}
	return res, nil
}

func (s *SQLite) exec(ctx context.Context, conn *sql.Conn, stmt string, params []any) (*Result, error) {
	r, err := conn.ExecContext(ctx, stmt, params...)
	if err != nil {
		return nil, &core.EngineError{Statement: stmt, Err: err}
	}
	res := &Result{}
	// Both are best effort: DDL and transaction control report neither.
	if n, err := r.RowsAffected(); err == nil {
		res.RowsAffected = n
	}
	if id, err := r.LastInsertId(); err == nil {
		res.LastInsertID = id
	}
	return res, nil
}
