package store

import (
	"context"
	"time"

	perr "vigil/internal/platform/errors"
)

// RunTx calls fn inside a transaction on the provided TxRunner
func RunTx(ctx context.Context, tx TxRunner, fn func(ctx context.Context, q RowQuerier) error) error {
	return tx.Tx(ctx, func(q RowQuerier) error {
		return fn(ctx, q)
	})
}

// RunTxRetry calls fn inside a transaction and retries transient pg
// failures (serialization, deadlock, admin shutdown) up to attempts times
func RunTxRetry(ctx context.Context, tx TxRunner, attempts int, fn func(ctx context.Context, q RowQuerier) error) error {
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = RunTx(ctx, tx, fn)
		if err == nil || !perr.IsRetryable(err) {
			return err
		}
		if ctx.Err() != nil {
			return err
		}
		time.Sleep(time.Duration(i+1) * 25 * time.Millisecond)
	}
	return err
}
