package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// PurchaseOrderRepository define el puerto de persistencia de órdenes de compra.
type PurchaseOrderRepository interface {
	Create(ctx context.Context, po *entity.PurchaseOrder) error
	GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error)
	// Update persiste estado, totales y cantidades de las líneas.
	Update(ctx context.Context, po *entity.PurchaseOrder) error
	Delete(ctx context.Context, id string) error
}
