package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

var _ repository.PartyLedgerRepository = (*PartyLedgerRepo)(nil)

// PartyLedgerRepo asientos por tercero más una fila de saldo que serializa los asientos concurrentes.
type PartyLedgerRepo struct {
	q Querier
}

// NewPartyLedgerRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPartyLedgerRepository(q Querier) *PartyLedgerRepo {
	return &PartyLedgerRepo{q: q}
}

// LockBalance crea la fila de saldo si falta y la bloquea hasta el fin de la transacción.
func (r *PartyLedgerRepo) LockBalance(ctx context.Context, partyType, partyID string) (decimal.Decimal, error) {
	if _, err := r.q.Exec(ctx, `
		INSERT INTO party_balances (party_type, party_id, balance) VALUES ($1, $2, 0)
		ON CONFLICT (party_type, party_id) DO NOTHING`, partyType, partyID); err != nil {
		return decimal.Zero, wrap("init party balance", err)
	}
	var bal decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT balance FROM party_balances WHERE party_type = $1 AND party_id = $2 FOR UPDATE`,
		partyType, partyID).Scan(&bal)
	if err != nil {
		return decimal.Zero, wrap("lock party balance", err)
	}
	return bal, nil
}

// Create inserta el asiento y deja el saldo corrido en party_balances.
func (r *PartyLedgerRepo) Create(ctx context.Context, e *entity.PartyLedgerEntry) error {
	err := r.q.QueryRow(ctx, `
		INSERT INTO party_ledger_entries (id, party_type, party_id, entry_type, debit, credit, balance,
			reference_type, reference_id, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), NULLIF($10, ''), now())
		RETURNING sequence, created_at`,
		e.ID, e.PartyType, e.PartyID, e.EntryType, e.Debit, e.Credit, e.Balance,
		e.ReferenceType, e.ReferenceID, e.Description,
	).Scan(&e.Sequence, &e.CreatedAt)
	if err != nil {
		return wrap("insert party ledger entry", err)
	}
	_, err = r.q.Exec(ctx, `
		UPDATE party_balances SET balance = $3, updated_at = now()
		WHERE party_type = $1 AND party_id = $2`, e.PartyType, e.PartyID, e.Balance)
	return wrap("update party balance", err)
}

// ListByParty asientos del tercero en orden de creación. limit <= 0 devuelve todos.
func (r *PartyLedgerRepo) ListByParty(ctx context.Context, partyType, partyID string, limit, offset int) ([]*entity.PartyLedgerEntry, error) {
	query := `
		SELECT id, sequence, party_type, party_id, entry_type, debit, credit, balance,
			COALESCE(reference_type, ''), COALESCE(reference_id, ''), COALESCE(description, ''), created_at
		FROM party_ledger_entries
		WHERE party_type = $1 AND party_id = $2
		ORDER BY sequence
		OFFSET $3`
	args := []any{partyType, partyID, offset}
	if limit > 0 {
		query += " LIMIT $4"
		args = append(args, limit)
	}
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list party ledger", err)
	}
	defer rows.Close()
	var out []*entity.PartyLedgerEntry
	for rows.Next() {
		var e entity.PartyLedgerEntry
		if err := rows.Scan(
			&e.ID, &e.Sequence, &e.PartyType, &e.PartyID, &e.EntryType, &e.Debit, &e.Credit, &e.Balance,
			&e.ReferenceType, &e.ReferenceID, &e.Description, &e.CreatedAt,
		); err != nil {
			return nil, wrap("scan party ledger entry", err)
		}
		out = append(out, &e)
	}
	return out, wrap("list party ledger", rows.Err())
}

// Balance saldo actual del tercero; cero si nunca tuvo asientos.
func (r *PartyLedgerRepo) Balance(ctx context.Context, partyType, partyID string) (decimal.Decimal, error) {
	var bal decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT balance FROM party_balances WHERE party_type = $1 AND party_id = $2`, partyType, partyID,
	).Scan(&bal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, wrap("get party balance", err)
	}
	return bal, nil
}
