package postgres

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

var _ repository.SequenceRepository = (*SequenceRepo)(nil)

// SequenceRepo consecutivos atómicos (tabla sequences).
type SequenceRepo struct {
	q Querier
}

// NewSequenceRepository construye el adaptador. Debe recibir la tx del caller.
func NewSequenceRepository(q Querier) *SequenceRepo {
	return &SequenceRepo{q: q}
}

// Next incrementa y devuelve el consecutivo. El UPSERT bloquea la fila hasta el fin de la
// transacción, así que dos ventas concurrentes nunca obtienen el mismo número.
func (r *SequenceRepo) Next(ctx context.Context, name string) (int64, error) {
	var n int64
	err := r.q.QueryRow(ctx, `
		INSERT INTO sequences (name, value) VALUES ($1, 1)
		ON CONFLICT (name) DO UPDATE SET value = sequences.value + 1
		RETURNING value`, name).Scan(&n)
	if err != nil {
		return 0, wrap("next sequence "+name, err)
	}
	return n, nil
}
