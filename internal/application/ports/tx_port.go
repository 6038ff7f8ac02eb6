package ports

import (
	"context"

	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

// Repos repositorios atados a una misma transacción.
type Repos struct {
	Units     repository.StockUnitRepository
	Movements repository.StockMovementRepository
	Ledger    repository.PartyLedgerRepository
	Sales     repository.SaleRepository
	Orders    repository.PurchaseOrderRepository
	Sequences repository.SequenceRepository
	Products  repository.ProductRepository
	Locations repository.LocationRepository
	Parties   repository.PartyRepository
}

// TxRunner ejecuta fn dentro de una transacción: Commit si fn devuelve nil, Rollback en
// cualquier otro caso (incluido panic). Los errores de infraestructura salen como
// domain.ErrConcurrencyConflict o domain.ErrPersistenceFailure.
type TxRunner interface {
	Run(ctx context.Context, fn func(repos Repos) error) error
	// Read devuelve repositorios fuera de transacción para consultas.
	Read() Repos
}
