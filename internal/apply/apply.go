// Package apply reconciles a desired table schema with the live database. A
// Reconciler runs every migration through the same ordered pipeline: make
// sure the ledger exists, skip versions already applied, then create the
// table or add the missing columns, and finally record the new version.
// Changes that would need a full table rewrite are refused before any DDL runs.
package apply

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"smlite/internal/core"
	"smlite/internal/dialect"
	"smlite/internal/diff"
	"smlite/internal/engine"
	"smlite/internal/introspect"
	"smlite/internal/migration"
)

// Pipeline stage names reported in *core.MigrationError.
const (
	StageLedger  = "ledger"
	StageVersion = "version"
	StageExists  = "exists"
	StageCreate  = "create"
	StageColumns = "columns"
	StageAlter   = "alter"
	StageRecord  = "record"
)

// Options struct contains the settings a reconciler runs with.
type Options struct {
	// DryRun plans the migration without executing anything. The ledger
	// table is not created either.
	DryRun bool
	// Out receives the dry run report. Nil discards it.
	Out    io.Writer
	Logger *slog.Logger
}

// Result is the outcome of reconciling one spec.
type Result struct {
	Table  string               `json:"table"`
	Status core.MigrationStatus `json:"status"`
	// Version is the version recorded for the table after the run.
	Version string               `json:"version"`
	Plan    *migration.Migration `json:"plan"`
	Diff    *diff.TableDiff      `json:"diff,omitempty"`
	DryRun  bool                 `json:"dryRun,omitempty"`
}

// Reconciler is a struct that applies migration specs over one connection.
type Reconciler struct {
	runner       engine.Runner
	introspecter introspect.Introspecter
	generator    dialect.Generator
	options      Options
	out          io.Writer
	logger       *slog.Logger

	// ledgerReady caches a successful ledger existence check for the
	// lifetime of this reconciler.
	ledgerReady atomic.Bool
}

// NewReconciler returns a Reconciler for the given dialect.
func NewReconciler(runner engine.Runner, d dialect.Dialect, options Options) (*Reconciler, error) {
	in, err := introspect.NewIntrospecter(d.Name())
	if err != nil {
		return nil, err
	}
	out := options.Out
	if out == nil {
		out = io.Discard
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Reconciler{
		runner:       runner,
		introspecter: in,
		generator:    d.Generator(),
		options:      options,
		out:          out,
		logger:       logger,
	}, nil
}

// Introspecter exposes the schema reader the reconciler uses.
func (r *Reconciler) Introspecter() introspect.Introspecter {
	return r.introspecter
}

// Migrate reconciles one table with spec. On success spec.Updated is set
// unless the run was a dry run. A nil spec is a no-op.
//
// When the table would need a full rewrite, Migrate returns the partial
// Result, whose plan lists the reasons, together with a
// *core.UnsupportedMigrationError.
func (r *Reconciler) Migrate(ctx context.Context, spec *core.MigrationSpec) (*Result, error) {
	if spec == nil {
		return &Result{Status: core.StatusNoOp, Plan: &migration.Migration{}}, nil
	}
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	res := &Result{
		Table:  spec.AppliesTo,
		Plan:   &migration.Migration{Table: spec.AppliesTo},
		DryRun: r.options.DryRun,
	}

	// 1. ledger
	if err := r.EnsureLedger(ctx); err != nil {
		return nil, err
	}

	// 2. applied version
	applied, err := r.introspecter.TableVersion(ctx, r.runner, spec.AppliesTo)
	if err != nil {
		return nil, &core.MigrationError{Stage: StageVersion, Table: spec.AppliesTo, Err: err}
	}
	res.Version = applied
	if applied != core.InitialVersion && applied >= spec.Version {
		res.Status = core.StatusAlreadyApplied
		res.Plan.AddNote(fmt.Sprintf("version %s already applied (recorded %s)", spec.Version, applied))
		r.markUpdated(spec)
		r.logger.Debug("migration already applied", "table", spec.AppliesTo, "version", spec.Version, "recorded", applied)
		return res, nil
	}

	// 3. table existence
	exists, err := r.introspecter.TableExists(ctx, r.runner, spec.AppliesTo)
	if err != nil {
		return nil, &core.MigrationError{Stage: StageExists, Table: spec.AppliesTo, Err: err}
	}
	res.Status = core.StatusNotExists
	if exists {
		res.Status = core.StatusExists
	}

	// 4./5. create or alter
	switch res.Status {
	case core.StatusNotExists:
		err = r.create(ctx, spec, res)
	default:
		err = r.alter(ctx, spec, res)
	}
	if err != nil {
		// A refused rewrite still returns the plan explaining why.
		var unsupported *core.UnsupportedMigrationError
		if errors.As(err, &unsupported) {
			res.Plan.Dedupe()
			if r.options.DryRun {
				r.report(res)
			}
			return res, err
		}
		return nil, err
	}

	// 6. ledger write
	if res.Status.Changed() {
		if err := r.record(ctx, spec, res); err != nil {
			return nil, err
		}
	}
	res.Plan.Dedupe()

	if r.options.DryRun {
		r.report(res)
		return res, nil
	}
	r.markUpdated(spec)
	r.logger.Info("migration reconciled", "table", spec.AppliesTo, "status", res.Status, "version", res.Version)
	return res, nil
}

// EnsureLedger creates the ledger table on first use. Success is remembered,
// so later migrations skip the existence check.
func (r *Reconciler) EnsureLedger(ctx context.Context) error {
	if r.ledgerReady.Load() {
		return nil
	}
	exists, err := r.introspecter.TableExists(ctx, r.runner, core.LedgerTable)
	if err != nil {
		return &core.MigrationError{Stage: StageLedger, Table: core.LedgerTable, Err: err}
	}
	if !exists {
		if r.options.DryRun {
			return nil
		}
		ledger := core.LedgerMigration()
		stmt := r.generator.GenerateCreateTable(ledger.AppliesTo, ledger.Add)
		if err := r.run(ctx, stmt, nil); err != nil {
			return &core.MigrationError{Stage: StageLedger, Table: core.LedgerTable, Err: err}
		}
		r.logger.Info("migration ledger created", "table", core.LedgerTable)
	}
	r.ledgerReady.Store(true)
	return nil
}

// ForgetLedger drops the cached ledger check. Callers use it after rolling
// back a transaction that may have created the ledger table.
func (r *Reconciler) ForgetLedger() {
	r.ledgerReady.Store(false)
}

func (r *Reconciler) create(ctx context.Context, spec *core.MigrationSpec, res *Result) error {
	stmt := r.generator.GenerateCreateTable(spec.AppliesTo, spec.Add)
	res.Plan.AddStatement(stmt)
	if err := r.run(ctx, stmt, nil); err != nil {
		return &core.MigrationError{Stage: StageCreate, Table: spec.AppliesTo, Err: err}
	}
	res.Status = core.StatusCreated
	return nil
}

func (r *Reconciler) alter(ctx context.Context, spec *core.MigrationSpec, res *Result) error {
	columns, err := r.introspecter.TableColumns(ctx, r.runner, spec.AppliesTo)
	if err != nil {
		return &core.MigrationError{Stage: StageColumns, Table: spec.AppliesTo, Err: err}
	}

	d := diff.Columns(spec, columns, r.generator)
	res.Diff = d
	for _, n := range d.Notes {
		res.Plan.AddNote(n)
	}
	if d.NeedsRewrite() {
		for _, reason := range d.Rewrites {
			res.Plan.AddUnsupported(reason)
		}
		r.logger.Warn("migration requires a full table rewrite", "table", spec.AppliesTo, "reasons", d.Rewrites)
		return &core.UnsupportedMigrationError{Table: spec.AppliesTo, Reasons: d.Rewrites}
	}

	if len(d.Add) == 0 {
		res.Status = core.StatusNoOp
		return nil
	}

	stmts := make([]string, len(d.Add))
	for i, f := range d.Add {
		stmts[i] = r.generator.GenerateAddColumn(spec.AppliesTo, f)
		res.Plan.AddStatement(stmts[i])
	}
	for i, stmt := range stmts {
		r.logger.Debug("executing statement", "table", spec.AppliesTo, "n", i+1, "of", len(stmts))
		if err := r.run(ctx, stmt, nil); err != nil {
			return &core.MigrationError{Stage: StageAlter, Table: spec.AppliesTo, Err: err}
		}
	}
	res.Status = core.StatusAltered
	return nil
}

const insertLedgerSQL = "INSERT INTO `" + core.LedgerTable + "` (`appliesTo`, `model`, `description`, `version`) VALUES (?, ?, ?, ?)"

func (r *Reconciler) record(ctx context.Context, spec *core.MigrationSpec, res *Result) error {
	params := []any{spec.AppliesTo, spec.Model, spec.Description, spec.Version}
	res.Plan.AddStatement(insertLedgerSQL, params...)
	if err := r.run(ctx, insertLedgerSQL, params); err != nil {
		return &core.MigrationError{Stage: StageRecord, Table: spec.AppliesTo, Err: err}
	}
	res.Version = spec.Version
	return nil
}

func (r *Reconciler) run(ctx context.Context, stmt string, params []any) error {
	if r.options.DryRun {
		return nil
	}
	_, err := r.runner.Run(ctx, stmt, params...)
	return err
}

func (r *Reconciler) markUpdated(spec *core.MigrationSpec) {
	if !r.options.DryRun {
		spec.Updated = true
	}
}
