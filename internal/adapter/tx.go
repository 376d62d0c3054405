package adapter

import (
	"context"
	"fmt"
)

// TxState is the adapter-wide transaction state.
type TxState int32

const (
	TxIdle TxState = iota
	TxActive
)

func (s TxState) String() string {
	switch s {
	case TxIdle:
		return "idle"
	case TxActive:
		return "active"
	default:
		return fmt.Sprintf("TxState(%d)", int32(s))
	}
}

// TxState reports whether a transaction is open on the adapter.
func (a *Adapter) TxState() TxState {
	return TxState(a.state.Load())
}

// RunInTransaction runs fn between BEGIN and COMMIT, rolling back when fn
// fails or panics. The original error is returned; a failed rollback is only
// logged. When a transaction is already active, fn runs inline as part of
// it: SQLite has a single transaction level per connection.
//
// fn must use the context it is given for adapter calls. Calls made with any
// other context wait behind the transaction.
func (a *Adapter) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return a.do(ctx, func(ctx context.Context) error {
		if a.TxState() == TxActive {
			return fn(ctx)
		}

		if _, err := a.run(ctx, "BEGIN TRANSACTION"); err != nil {
			return err
		}
		a.state.Store(int32(TxActive))
		defer a.state.Store(int32(TxIdle))

		committed := false
		defer func() {
			if committed {
				return
			}
			if p := recover(); p != nil {
				a.rollback(ctx)
				panic(p)
			}
		}()

		if err := fn(ctx); err != nil {
			a.rollback(ctx)
			return err
		}
		if _, err := a.run(ctx, "COMMIT"); err != nil {
			a.rollback(ctx)
			return err
		}
		committed = true
		return nil
	})
}

func (a *Adapter) rollback(ctx context.Context) {
	// The caller's context may be cancelled already; the rollback must still run.
	if _, err := a.conn.Run(context.WithoutCancel(ctx), "ROLLBACK"); err != nil {
		a.logger.Warn("rollback failed", "error", err)
	}
	// DDL issued in the transaction, including the ledger table, is undone.
	a.reconciler.ForgetLedger()
	a.sequences.ForgetLedger()
}
