package db

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type contextKey string

const txKey contextKey = "pgx_tx"

// TxFromContext returns the transaction carried by ctx, if any. Repositories
// check it first so that service-level units of work share one transaction.
func TxFromContext(ctx context.Context) pgx.Tx {
	tx, _ := ctx.Value(txKey).(pgx.Tx)
	return tx
}

// WithTx stores tx in ctx for downstream repository calls.
func WithTx(ctx context.Context, tx pgx.Tx) context.Context {
	return context.WithValue(ctx, txKey, tx)
}

// TxRunner executes a function inside a single transaction. The pgx-backed
// implementation commits on nil and rolls back on error; in-memory test
// doubles run fn directly.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type pgxTxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner returns a TxRunner backed by the given pool. The transaction is
// placed in the context so repositories resolve it via TxFromContext.
func NewTxRunner(pool *pgxpool.Pool) TxRunner {
	return &pgxTxRunner{pool: pool}
}

func (r *pgxTxRunner) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := fn(WithTx(ctx, tx)); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// TxRunnerFunc adapts a function to the TxRunner interface.
type TxRunnerFunc func(ctx context.Context, fn func(ctx context.Context) error) error

func (f TxRunnerFunc) RunTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return f(ctx, fn)
}

// PassthroughTxRunner runs fn without any transaction. Used with in-memory
// repositories whose operations are atomic in-process.
func PassthroughTxRunner() TxRunner {
	return TxRunnerFunc(func(ctx context.Context, fn func(ctx context.Context) error) error {
		return fn(ctx)
	})
}
