package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

var _ repository.StockMovementRepository = (*StockMovementRepo)(nil)

const movementColumns = `
	id, sequence, stock_unit_id, product_id, type, quantity, unit, reference_type, COALESCE(reference_id, ''),
	COALESCE(reason, ''), before_quantity, after_quantity, created_at, COALESCE(created_by, '')`

// StockMovementRepo ledger de inventario sobre PostgreSQL: solo INSERT y SELECT.
type StockMovementRepo struct {
	q Querier
}

// NewStockMovementRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockMovementRepository(q Querier) *StockMovementRepo {
	return &StockMovementRepo{q: q}
}

// Create inserta el movimiento; la base asigna Sequence.
func (r *StockMovementRepo) Create(ctx context.Context, m *entity.StockMovement) error {
	query := `
		INSERT INTO stock_movements (id, stock_unit_id, product_id, type, quantity, unit, reference_type, reference_id,
			reason, before_quantity, after_quantity, created_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, $11, $12, NULLIF($13, ''))
		RETURNING sequence`
	err := r.q.QueryRow(ctx, query,
		m.ID, m.StockUnitID, m.ProductID, m.Type, m.Quantity, m.Unit, m.ReferenceType, m.ReferenceID,
		m.Reason, m.BeforeQuantity, m.AfterQuantity, m.CreatedAt, m.CreatedBy,
	).Scan(&m.Sequence)
	return wrap("insert stock movement", err)
}

// List movimientos filtrados en orden de creación.
func (r *StockMovementRepo) List(ctx context.Context, f entity.MovementFilter) ([]*entity.StockMovement, error) {
	var (
		where []string
		args  []any
	)
	add := func(cond string, v any) {
		args = append(args, v)
		where = append(where, fmt.Sprintf(cond, len(args)))
	}
	if f.StockUnitID != "" {
		add("stock_unit_id = $%d", f.StockUnitID)
	}
	if f.ProductID != "" {
		add("product_id = $%d", f.ProductID)
	}
	if f.Type != "" {
		add("type = $%d", f.Type)
	}
	if f.ReferenceType != "" {
		add("reference_type = $%d", f.ReferenceType)
	}
	if f.ReferenceID != "" {
		add("reference_id = $%d", f.ReferenceID)
	}
	if f.From != nil {
		add("created_at >= $%d", *f.From)
	}
	if f.To != nil {
		add("created_at <= $%d", *f.To)
	}
	query := `SELECT` + movementColumns + ` FROM stock_movements`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY sequence"
	if f.Limit > 0 {
		args = append(args, f.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if f.Offset > 0 {
		args = append(args, f.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return r.list(ctx, query, args...)
}

// ListByUnit todos los movimientos del rollo en orden de creación.
func (r *StockMovementRepo) ListByUnit(ctx context.Context, stockUnitID string) ([]*entity.StockMovement, error) {
	return r.list(ctx, `SELECT`+movementColumns+` FROM stock_movements WHERE stock_unit_id = $1 ORDER BY sequence`, stockUnitID)
}

func (r *StockMovementRepo) list(ctx context.Context, query string, args ...any) ([]*entity.StockMovement, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, wrap("list stock movements", err)
	}
	defer rows.Close()
	var out []*entity.StockMovement
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, wrap("scan stock movement", err)
		}
		out = append(out, m)
	}
	return out, wrap("list stock movements", rows.Err())
}

func scanMovement(row pgx.Row) (*entity.StockMovement, error) {
	var m entity.StockMovement
	err := row.Scan(
		&m.ID, &m.Sequence, &m.StockUnitID, &m.ProductID, &m.Type, &m.Quantity, &m.Unit, &m.ReferenceType,
		&m.ReferenceID, &m.Reason, &m.BeforeQuantity, &m.AfterQuantity, &m.CreatedAt, &m.CreatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}
