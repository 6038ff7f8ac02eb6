package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// PartyLedgerRepository ledger de saldos por tercero.
type PartyLedgerRepository interface {
	// LockBalance bloquea (y crea si no existe) la fila de saldo del tercero y devuelve el saldo actual.
	LockBalance(ctx context.Context, partyType, partyID string) (decimal.Decimal, error)
	// Create inserta el asiento (Balance ya calculado) y actualiza la fila de saldo.
	Create(ctx context.Context, entry *entity.PartyLedgerEntry) error
	ListByParty(ctx context.Context, partyType, partyID string, limit, offset int) ([]*entity.PartyLedgerEntry, error)
	Balance(ctx context.Context, partyType, partyID string) (decimal.Decimal, error)
}
