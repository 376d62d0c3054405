package adapter

import (
	"context"

	"smlite/internal/core"
	"smlite/internal/query"
)

// TableExists reports whether a table with the given name exists.
func (a *Adapter) TableExists(ctx context.Context, table string) (bool, error) {
	var ok bool
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		ok, err = a.introspecter.TableExists(ctx, a.conn, table)
		return err
	})
	return ok, err
}

// ViewExists reports whether a view with the given name exists.
func (a *Adapter) ViewExists(ctx context.Context, view string) (bool, error) {
	var ok bool
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		ok, err = a.introspecter.ViewExists(ctx, a.conn, view)
		return err
	})
	return ok, err
}

// TableColumns returns the physical columns of table in declaration order.
// A missing table has no columns.
func (a *Adapter) TableColumns(ctx context.Context, table string) ([]core.ColumnInfo, error) {
	var cols []core.ColumnInfo
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		cols, err = a.introspecter.TableColumns(ctx, a.conn, table)
		return err
	})
	return cols, err
}

// TableVersion returns the highest migration version recorded for table,
// or "0.0" when none was recorded.
func (a *Adapter) TableVersion(ctx context.Context, table string) (string, error) {
	var v string
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		v, err = a.introspecter.TableVersion(ctx, a.conn, table)
		return err
	})
	return v, err
}

// TableHasSequence reports whether table has an engine-managed AUTOINCREMENT
// sequence with at least one value handed out.
func (a *Adapter) TableHasSequence(ctx context.Context, table string) (bool, error) {
	var ok bool
	err := a.do(ctx, func(ctx context.Context) error {
		var err error
		ok, err = a.introspecter.HasSequence(ctx, a.conn, table)
		return err
	})
	return ok, err
}

// LastIdentity returns the rowid of the last row inserted on this
// connection.
func (a *Adapter) LastIdentity(ctx context.Context) (int64, error) {
	var id int64
	err := a.do(ctx, func(ctx context.Context) error {
		res, err := a.run(ctx, "SELECT last_insert_rowid() AS lastval")
		if err != nil {
			return err
		}
		id, _ = res.First().Int64("lastval")
		return nil
	})
	return id, err
}

// CreateView replaces the view name with one defined by sel. The drop and
// the create run in one transaction.
func (a *Adapter) CreateView(ctx context.Context, name string, sel *query.Select) error {
	gen := a.dialect.Generator()
	create, err := gen.GenerateCreateView(name, sel)
	if err != nil {
		return err
	}
	return a.RunInTransaction(ctx, func(ctx context.Context) error {
		if _, err := a.run(ctx, gen.GenerateDropView(name)); err != nil {
			return err
		}
		_, err := a.run(ctx, create)
		return err
	})
}

// DropView drops the view if it exists.
func (a *Adapter) DropView(ctx context.Context, name string) error {
	return a.do(ctx, func(ctx context.Context) error {
		_, err := a.run(ctx, a.dialect.Generator().GenerateDropView(name))
		return err
	})
}
