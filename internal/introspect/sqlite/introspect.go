package sqlite

import (
	"context"
	"fmt"

	"smlite/internal/core"
	"smlite/internal/dialect"
	"smlite/internal/engine"
	"smlite/internal/introspect"
)

func init() {
	introspect.Register(dialect.SQLite, New)
}

type sqliteIntrospecter struct{}

func New() introspect.Introspecter {
	return &sqliteIntrospecter{}
}

func (i *sqliteIntrospecter) TableExists(ctx context.Context, r engine.Runner, table string) (bool, error) {
	return objectExists(ctx, r, "table", table)
}

func (i *sqliteIntrospecter) ViewExists(ctx context.Context, r engine.Runner, view string) (bool, error) {
	return objectExists(ctx, r, "view", view)
}

func objectExists(ctx context.Context, r engine.Runner, kind, name string) (bool, error) {
	res, err := r.Run(ctx, `SELECT COUNT(*) AS count FROM sqlite_master WHERE type = ? AND name = ?`, kind, name)
	if err != nil {
		return false, fmt.Errorf("check %s %q: %w", kind, name, err)
	}
	n, _ := res.First().Int64("count")
	return n > 0, nil
}

func (i *sqliteIntrospecter) TableVersion(ctx context.Context, r engine.Runner, table string) (string, error) {
	ok, err := i.TableExists(ctx, r, core.LedgerTable)
	if err != nil {
		return "", err
	}
	if !ok {
		return core.InitialVersion, nil
	}

	res, err := r.Run(ctx,
		"SELECT MAX(`version`) AS version FROM `"+core.LedgerTable+"` WHERE `appliesTo` = ?", table)
	if err != nil {
		return "", fmt.Errorf("read version of %q: %w", table, err)
	}
	v, ok := res.First().String("version")
	if !ok || v == "" {
		return core.InitialVersion, nil
	}
	return v, nil
}

func (i *sqliteIntrospecter) HasSequence(ctx context.Context, r engine.Runner, table string) (bool, error) {
	// sqlite_sequence only appears once an AUTOINCREMENT table has been created.
	ok, err := i.TableExists(ctx, r, "sqlite_sequence")
	if err != nil || !ok {
		return false, err
	}
	res, err := r.Run(ctx, `SELECT COUNT(*) AS count FROM sqlite_sequence WHERE name = ?`, table)
	if err != nil {
		return false, fmt.Errorf("check sequence of %q: %w", table, err)
	}
	n, _ := res.First().Int64("count")
	return n > 0, nil
}
