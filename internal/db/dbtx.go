package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx. Repositories take a DBTX so
// the same code runs on the shared handle for reads and inside a UnitOfWork
// for writes.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)

type txKey struct{}

// activeTx is stored in the context while a UnitOfWork callback runs.
type activeTx struct {
	owner *sql.DB
	tx    *sql.Tx
}

func withActiveTx(ctx context.Context, owner *sql.DB, tx *sql.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, activeTx{owner: owner, tx: tx})
}

// InTx reports whether ctx is inside a UnitOfWork callback.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(activeTx)
	return ok
}

func txFor(ctx context.Context, owner *sql.DB) (*sql.Tx, bool) {
	a, ok := ctx.Value(txKey{}).(activeTx)
	if !ok || a.owner != owner {
		return nil, false
	}
	return a.tx, true
}
