package repository

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// PartyRepository directorio de clientes, proveedores y empleados.
type PartyRepository interface {
	Create(ctx context.Context, party *entity.Party) error
	GetByID(ctx context.Context, partyType, id string) (*entity.Party, error)
}
