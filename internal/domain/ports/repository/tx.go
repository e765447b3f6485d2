package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle. Repositories accept nil for the
// non-transactional path; the concrete type is infra-defined (pgx.Tx for Postgres).
type Tx interface{}

var NoTX interface{}

// TransactionManager runs fn inside one database transaction and hands the
// tx handle to every repository call made within it.
//
//	tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx Tx) error {
//		if err := jobs.Create(ctx, tx, job); err != nil {
//			return err
//		}
//		return chats.AppendJob(ctx, tx, job.ChatID, job.ID)
//	})
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
