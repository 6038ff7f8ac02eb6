package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// StockUnitRepository define el puerto de persistencia de rollos (DIP).
// GetByID/GetForUpdate devuelven (nil, nil) si el rollo no existe.
type StockUnitRepository interface {
	Create(ctx context.Context, unit *entity.StockUnit) error
	GetByID(ctx context.Context, id string) (*entity.StockUnit, error)
	// GetForUpdate bloquea la fila (SELECT FOR UPDATE) hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockUnit, error)
	Update(ctx context.Context, unit *entity.StockUnit) error
	// ListEligibleByProduct rollos Available, sin cola y con saldo, en orden FIFO
	// (fecha de recepción, luego número de rollo).
	ListEligibleByProduct(ctx context.Context, productID string) ([]*entity.StockUnit, error)
}
