package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ProductRepository catálogo de productos (solo lectura para el motor; Create lo usa el seed).
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
}
