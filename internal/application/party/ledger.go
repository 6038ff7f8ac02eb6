// Package party mantiene el ledger de saldos de clientes, proveedores y empleados.
// Solo se escribe como efecto de una venta, anulación, devolución o recepción confirmada.
package party

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// Post agrega un asiento dentro de la transacción del caller.
// Bloquea la fila de saldo y calcula Balance = saldo anterior + Debit - Credit.
func Post(ctx context.Context, r ports.Repos, e *entity.PartyLedgerEntry) error {
	if e.PartyID == "" || !ValidType(e.PartyType) {
		return fmt.Errorf("%w: tercero %s/%s", domain.ErrInvalidInput, e.PartyType, e.PartyID)
	}
	if e.Debit.IsNegative() || e.Credit.IsNegative() {
		return fmt.Errorf("%w: débito y crédito no pueden ser negativos", domain.ErrInvalidInput)
	}
	prev, err := r.Ledger.LockBalance(ctx, e.PartyType, e.PartyID)
	if err != nil {
		return err
	}
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	e.Balance = prev.Add(e.Debit).Sub(e.Credit)
	return r.Ledger.Create(ctx, e)
}

// Reverse asiento que anula otro: intercambia débito y crédito.
func Reverse(original *entity.PartyLedgerEntry, entryType, description string) *entity.PartyLedgerEntry {
	return &entity.PartyLedgerEntry{
		PartyType:     original.PartyType,
		PartyID:       original.PartyID,
		EntryType:     entryType,
		Debit:         original.Credit,
		Credit:        original.Debit,
		ReferenceType: original.ReferenceType,
		ReferenceID:   original.ReferenceID,
		Description:   description,
	}
}

// ValidType tipos de tercero soportados.
func ValidType(partyType string) bool {
	switch partyType {
	case entity.PartyCustomer, entity.PartySupplier, entity.PartyEmployee:
		return true
	}
	return false
}

// Service consultas del ledger de terceros.
type Service struct {
	tx ports.TxRunner
}

// NewService construye el caso de uso.
func NewService(tx ports.TxRunner) *Service {
	return &Service{tx: tx}
}

// Ledger saldo actual y asientos del tercero en orden de creación.
func (s *Service) Ledger(ctx context.Context, partyType, partyID string, page dto.PageRequest) (*dto.PartyLedgerResponse, error) {
	if !ValidType(partyType) || partyID == "" {
		return nil, fmt.Errorf("%w: tipo de tercero %q", domain.ErrInvalidInput, partyType)
	}
	page.DefaultPage()
	repos := s.tx.Read()
	p, err := repos.Parties.GetByID(ctx, partyType, partyID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("%w: tercero %s/%s", domain.ErrNotFound, partyType, partyID)
	}
	entries, err := repos.Ledger.ListByParty(ctx, partyType, partyID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	balance, err := repos.Ledger.Balance(ctx, partyType, partyID)
	if err != nil {
		return nil, err
	}
	out := &dto.PartyLedgerResponse{
		PartyType: partyType,
		PartyID:   partyID,
		Balance:   balance,
		Entries:   make([]dto.PartyLedgerEntryResponse, 0, len(entries)),
		Page:      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, e := range entries {
		out.Entries = append(out.Entries, dto.PartyLedgerEntryResponse{
			ID:            e.ID,
			Sequence:      e.Sequence,
			EntryType:     e.EntryType,
			Debit:         e.Debit,
			Credit:        e.Credit,
			Balance:       e.Balance,
			ReferenceType: e.ReferenceType,
			ReferenceID:   e.ReferenceID,
			Description:   e.Description,
			CreatedAt:     e.CreatedAt,
		})
	}
	return out, nil
}
