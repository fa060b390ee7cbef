package db

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"
)

// UnitOfWork manages transactional boundaries. The callback receives a DBTX
// backed by a *sql.Tx; callers create tx-scoped repositories from it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork implements UnitOfWork using database/sql transactions.
//
// A WithinTx call made from inside another callback on the same database
// joins the outer transaction instead of opening a second one; the in-memory
// database has a single connection and would otherwise block forever.
type SQLiteUnitOfWork struct {
	db     *sql.DB
	logger *slog.Logger
}

type UnitOfWorkOption func(*SQLiteUnitOfWork)

// WithTxLogger logs rollbacks at warn level and commits at debug level.
func WithTxLogger(logger *slog.Logger) UnitOfWorkOption {
	return func(u *SQLiteUnitOfWork) {
		if logger != nil {
			u.logger = logger
		}
	}
}

func NewSQLiteUnitOfWork(db *sql.DB, opts ...UnitOfWorkOption) *SQLiteUnitOfWork {
	u := &SQLiteUnitOfWork{
		db:     db,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	if tx, ok := txFor(ctx, u.db); ok {
		return fn(ctx, tx)
	}

	startedAt := time.Now()
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			u.logger.WarnContext(ctx, "transaction rolled back", "cause", "panic", "panic", fmt.Sprint(p))
			panic(p)
		}
	}()

	if err := fn(withActiveTx(ctx, u.db, tx), tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		u.logger.WarnContext(ctx, "transaction rolled back",
			"error", err.Error(), "duration_ms", time.Since(startedAt).Milliseconds())
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	u.logger.DebugContext(ctx, "transaction committed", "duration_ms", time.Since(startedAt).Milliseconds())
	return nil
}
