package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier subconjunto común de *pgxpool.Pool y pgx.Tx; los repositorios funcionan con cualquiera.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type batcher interface {
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// execBatch ejecuta el lote en un solo viaje cuando q es pool o tx.
func execBatch(ctx context.Context, q Querier, b *pgx.Batch, op string) error {
	if b.Len() == 0 {
		return nil
	}
	if bq, ok := q.(batcher); ok {
		return wrap(op, bq.SendBatch(ctx, b).Close())
	}
	for _, qq := range b.QueuedQueries {
		if _, err := q.Exec(ctx, qq.SQL, qq.Arguments...); err != nil {
			return wrap(op, err)
		}
	}
	return nil
}
