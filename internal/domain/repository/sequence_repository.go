package repository

import "context"

// SequenceRepository consecutivos atómicos; Next debe ejecutarse dentro de la transacción del caller.
type SequenceRepository interface {
	Next(ctx context.Context, name string) (int64, error)
}
