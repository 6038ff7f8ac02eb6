package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// StockMovementRepository ledger de inventario: solo inserción y consulta.
type StockMovementRepository interface {
	// Create inserta el movimiento y asigna Sequence.
	Create(ctx context.Context, movement *entity.StockMovement) error
	List(ctx context.Context, filter entity.MovementFilter) ([]*entity.StockMovement, error)
	// ListByUnit todos los movimientos del rollo en orden de creación.
	ListByUnit(ctx context.Context, stockUnitID string) ([]*entity.StockMovement, error)
}
