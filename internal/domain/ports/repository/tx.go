package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

type Tx interface{}

// TransactionManager executes a function within a database transaction,
// passing the transaction handle via `tx`.
//
// Repositories accept the same handle and MUST gracefully accept nil
// (non-transactional path, executed directly on the pool). The concrete
// type is infra-defined (pgx.Tx for Postgres).
//
// The atomic persist of an item's chunks together with its completed
// status is the one place this matters for correctness.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
