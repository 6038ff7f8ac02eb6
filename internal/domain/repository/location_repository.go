package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// LocationRepository ubicaciones físicas de los rollos.
type LocationRepository interface {
	Create(ctx context.Context, location *entity.Location) error
	GetByID(ctx context.Context, id string) (*entity.Location, error)
}
