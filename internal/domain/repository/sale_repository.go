package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// SaleRepository define el puerto de persistencia de ventas (cabecera + líneas).
type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	GetByID(ctx context.Context, id string) (*entity.Sale, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Sale, error)
	GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error)
	// UpdateStatus cambia estado y datos de anulación solo si la fila sigue en fromStatus;
	// si no, devuelve domain.ErrInvalidStateTransition.
	UpdateStatus(ctx context.Context, sale *entity.Sale, fromStatus string) error
}
