package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the query surface every repository runs against. It is satisfied by
// *pgxpool.Pool, by pgx.Tx (for transaction-scoped repositories), and by
// pgxmock in tests.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a DB that can also open transactions. Services that need
// multi-statement atomicity hold a Pool and build repositories over the
// transactions they open.
type Pool interface {
	DB
	Begin(ctx context.Context) (pgx.Tx, error)
	Ping(ctx context.Context) error
}
