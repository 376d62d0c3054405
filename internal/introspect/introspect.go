// Package introspect contains the introspecter interface that reads the live
// physical schema through the raw engine connection: whether tables and views
// exist, their columns, the migration version recorded in the ledger, and
// whether a table owns an engine-managed sequence.
package introspect

import (
	"context"
	"fmt"
	"sync"

	"smlite/internal/core"
	"smlite/internal/dialect"
	"smlite/internal/engine"
)

type Introspecter interface {
	TableExists(ctx context.Context, r engine.Runner, table string) (bool, error)
	ViewExists(ctx context.Context, r engine.Runner, view string) (bool, error)
	TableColumns(ctx context.Context, r engine.Runner, table string) ([]core.ColumnInfo, error)
	// TableVersion returns the highest ledger version recorded for table, or
	// core.InitialVersion when there is none.
	TableVersion(ctx context.Context, r engine.Runner, table string) (string, error)
	HasSequence(ctx context.Context, r engine.Runner, table string) (bool, error)
}

var (
	registry = make(map[dialect.Type]func() Introspecter)
	mu       sync.RWMutex
)

func Register(d dialect.Type, fn func() Introspecter) {
	mu.Lock()
	defer mu.Unlock()
	registry[d] = fn
}

func NewIntrospecter(d dialect.Type) (Introspecter, error) {
	mu.RLock()
	fn, ok := registry[d]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unsupported dialect %v", d)
	}

	return fn(), nil
}
