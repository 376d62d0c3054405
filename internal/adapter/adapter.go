// Package adapter is the storage adapter callers use: it executes raw SQL or
// abstract queries, reconciles table schemas, hands out sequence values and
// wraps units of work in transactions, all over one SQLite connection.
//
// Every public operation is queued: operations on one Adapter run one at a
// time in FIFO order, while separate adapters never wait on each other. A
// unit of work passed to RunInTransaction receives a context that already
// holds the queue, so adapter calls made with that context run inline.
package adapter

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"golang.org/x/sync/semaphore"

	"smlite/internal/apply"
	"smlite/internal/core"
	"smlite/internal/dialect"
	"smlite/internal/dialect/sqlite"
	"smlite/internal/engine"
	"smlite/internal/introspect"
	_ "smlite/internal/introspect/sqlite" // registers the SQLite introspecter
	"smlite/internal/query"
)

// Adapter owns one engine connection and serializes all work on it.
type Adapter struct {
	conn         engine.Conn
	dialect      dialect.Dialect
	reconciler   *apply.Reconciler
	sequences    *apply.Reconciler // never dry, NextValue needs its table
	introspecter introspect.Introspecter
	logger       *slog.Logger

	queue  *semaphore.Weighted
	opened bool
	state  atomic.Int32
}

type config struct {
	logger *slog.Logger
	dryRun bool
	out    io.Writer
}

// Option configures an Adapter.
type Option func(*config)

// WithLogger sets the logger. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) { c.logger = l }
}

// WithDryRun makes migrations plan-only; the report is written to out.
// NextValue still creates and advances its sequence table.
func WithDryRun(out io.Writer) Option {
	return func(c *config) {
		c.dryRun = true
		c.out = out
	}
}

// holder marks a context as running inside this adapter's queue slot.
type holder struct{}

// Open returns an adapter for the SQLite database at dsn. The database is
// opened lazily by the first operation.
func Open(dsn string, opts ...Option) (*Adapter, error) {
	c := newConfig(opts)
	return newAdapter(engine.New(dsn, engine.WithLogger(c.logger)), c)
}

// New returns an adapter over an existing engine connection.
func New(conn engine.Conn, opts ...Option) (*Adapter, error) {
	return newAdapter(conn, newConfig(opts))
}

func newConfig(opts []Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.New(slog.DiscardHandler)
	}
	return c
}

func newAdapter(conn engine.Conn, c *config) (*Adapter, error) {
	d := sqlite.NewSQLiteDialect()
	r, err := apply.NewReconciler(conn, d, apply.Options{
		DryRun: c.dryRun,
		Out:    c.out,
		Logger: c.logger,
	})
	if err != nil {
		return nil, err
	}
	sequences := r
	if c.dryRun {
		sequences, err = apply.NewReconciler(conn, d, apply.Options{Logger: c.logger})
		if err != nil {
			return nil, err
		}
	}
	return &Adapter{
		conn:         conn,
		dialect:      d,
		reconciler:   r,
		sequences:    sequences,
		introspecter: r.Introspecter(),
		logger:       c.logger,
		queue:        semaphore.NewWeighted(1),
	}, nil
}

// Dialect returns the dialect the adapter formats queries with.
func (a *Adapter) Dialect() dialect.Dialect {
	return a.dialect
}

// acquire waits for this adapter's queue slot, unless ctx already holds it.
// The returned context carries the hold for nested calls.
func (a *Adapter) acquire(ctx context.Context) (context.Context, func(), error) {
	if ctx.Value(holder{}) == a {
		return ctx, func() {}, nil
	}
	if err := a.queue.Acquire(ctx, 1); err != nil {
		return nil, nil, err
	}
	return context.WithValue(ctx, holder{}, a), func() { a.queue.Release(1) }, nil
}

// do runs fn holding the queue slot with the connection open.
func (a *Adapter) do(ctx context.Context, fn func(ctx context.Context) error) error {
	ctx, release, err := a.acquire(ctx)
	if err != nil {
		return err
	}
	defer release()

	if !a.opened {
		if err := a.conn.Open(ctx); err != nil {
			a.logger.Error("cannot open database", "error", err)
			return err
		}
		a.opened = true
	}
	return fn(ctx)
}

// Execute runs raw SQL text (with positional parameters) or a query built
// with the query package. Reads return rows; other statements report the
// affected row count and last insert id.
func (a *Adapter) Execute(ctx context.Context, q any, params ...any) (*engine.Result, error) {
	var stmt string
	switch v := q.(type) {
	case string:
		stmt = v
	case query.Statement:
		s, err := a.dialect.Formatter().Format(v)
		if err != nil {
			return nil, err
		}
		stmt = s
	default:
		return nil, &core.FormatError{Reason: fmt.Sprintf("cannot execute %T", q)}
	}

	var res *engine.Result
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		res, err = a.run(ctx, stmt, params...)
		return err
	})
	return res, err
}

func (a *Adapter) run(ctx context.Context, stmt string, params ...any) (*engine.Result, error) {
	a.logger.Debug("execute", "sql", stmt, "params", params)
	res, err := a.conn.Run(ctx, stmt, params...)
	if err != nil {
		a.logger.Error("statement failed", "sql", stmt, "error", err)
		return nil, err
	}
	return res, nil
}

// Migrate reconciles the table described by spec. The whole pipeline runs in
// one transaction, so a failing statement leaves the schema and the ledger
// as they were.
func (a *Adapter) Migrate(ctx context.Context, spec *core.MigrationSpec) (*apply.Result, error) {
	var res *apply.Result
	err := a.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		res, err = a.reconciler.Migrate(ctx, spec)
		return err
	})
	return res, err
}

// Close closes the connection. It waits for queued operations and never
// fails: close errors are logged and dropped.
func (a *Adapter) Close() error {
	_, release, err := a.acquire(context.Background())
	if err != nil {
		return nil
	}
	defer release()

	if !a.opened {
		return nil
	}
	if err := a.conn.Close(); err != nil {
		a.logger.Warn("close failed", "error", err)
	}
	a.opened = false
	return nil
}
