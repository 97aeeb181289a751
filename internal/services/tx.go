package services

import (
	"context"

	"github.com/jackc/pgx/v5"

	"foamworks/internal/common"
	"foamworks/internal/repositories"
)

// inTx runs fn inside a transaction, rolling back on error and committing on
// success.
func inTx(ctx context.Context, pool repositories.Pool, fn func(tx pgx.Tx) error) error {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return common.Internal("begin transaction", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return common.Internal("commit transaction", err)
	}
	return nil
}
