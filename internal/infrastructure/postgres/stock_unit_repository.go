package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/repository"
)

var _ repository.StockUnitRepository = (*StockUnitRepo)(nil)

const stockUnitColumns = `
	id, unit_number, scan_code, COALESCE(batch_code, ''), product_id, COALESCE(supplier_id, ''),
	COALESCE(purchase_order_id, ''), COALESCE(purchase_order_line_id, ''), initial_quantity, remaining_quantity,
	unit, unit_cost, min_cut_length, COALESCE(location_id, ''), is_tail, status, received_at, created_at, updated_at`

// StockUnitRepo rollos sobre PostgreSQL (usable con pool o tx).
type StockUnitRepo struct {
	q Querier
}

// NewStockUnitRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockUnitRepository(q Querier) *StockUnitRepo {
	return &StockUnitRepo{q: q}
}

// Create inserta el rollo. Número o código de barras repetido -> domain.ErrDuplicate.
func (r *StockUnitRepo) Create(ctx context.Context, u *entity.StockUnit) error {
	query := `
		INSERT INTO stock_units (id, unit_number, scan_code, batch_code, product_id, supplier_id, purchase_order_id,
			purchase_order_line_id, initial_quantity, remaining_quantity, unit, unit_cost, min_cut_length, location_id,
			is_tail, status, received_at, created_at, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9, $10, $11, $12, $13,
			NULLIF($14, ''), $15, $16, $17, $18, $19)`
	_, err := r.q.Exec(ctx, query,
		u.ID, u.UnitNumber, u.ScanCode, u.BatchCode, u.ProductID, u.SupplierID, u.PurchaseOrderID,
		u.PurchaseOrderLineID, u.InitialQuantity, u.RemainingQuantity, u.Unit, u.UnitCost, u.MinCutLength,
		u.LocationID, u.IsTail, string(u.Status), u.ReceivedAt, u.CreatedAt, u.UpdatedAt,
	)
	return wrap("insert stock unit", err)
}

// GetByID obtiene un rollo sin bloquearlo.
func (r *StockUnitRepo) GetByID(ctx context.Context, id string) (*entity.StockUnit, error) {
	return r.get(ctx, `SELECT`+stockUnitColumns+` FROM stock_units WHERE id = $1`, id)
}

// GetForUpdate obtiene y bloquea el rollo (SELECT FOR UPDATE).
func (r *StockUnitRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockUnit, error) {
	return r.get(ctx, `SELECT`+stockUnitColumns+` FROM stock_units WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste cantidad, estado, cola y ubicación.
func (r *StockUnitRepo) Update(ctx context.Context, u *entity.StockUnit) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE stock_units
		SET remaining_quantity = $2, status = $3, is_tail = $4, location_id = NULLIF($5, ''), updated_at = $6
		WHERE id = $1`,
		u.ID, u.RemainingQuantity, string(u.Status), u.IsTail, u.LocationID, u.UpdatedAt,
	)
	if err != nil {
		return wrap("update stock unit", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update stock unit: %w: %s", domain.ErrNotFound, u.ID)
	}
	return nil
}

// ListEligibleByProduct rollos vendibles del producto en orden FIFO.
func (r *StockUnitRepo) ListEligibleByProduct(ctx context.Context, productID string) ([]*entity.StockUnit, error) {
	rows, err := r.q.Query(ctx, `SELECT`+stockUnitColumns+`
		FROM stock_units
		WHERE product_id = $1 AND status = $2 AND NOT is_tail AND remaining_quantity > 0
		ORDER BY received_at, unit_number`, productID, string(entity.StockUnitAvailable))
	if err != nil {
		return nil, wrap("list eligible units", err)
	}
	defer rows.Close()
	var out []*entity.StockUnit
	for rows.Next() {
		u, err := scanStockUnit(rows)
		if err != nil {
			return nil, wrap("scan stock unit", err)
		}
		out = append(out, u)
	}
	return out, wrap("list eligible units", rows.Err())
}

func (r *StockUnitRepo) get(ctx context.Context, query, id string) (*entity.StockUnit, error) {
	u, err := scanStockUnit(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get stock unit", err)
	}
	return u, nil
}

func scanStockUnit(row pgx.Row) (*entity.StockUnit, error) {
	var (
		u      entity.StockUnit
		status string
	)
	err := row.Scan(
		&u.ID, &u.UnitNumber, &u.ScanCode, &u.BatchCode, &u.ProductID, &u.SupplierID,
		&u.PurchaseOrderID, &u.PurchaseOrderLineID, &u.InitialQuantity, &u.RemainingQuantity,
		&u.Unit, &u.UnitCost, &u.MinCutLength, &u.LocationID, &u.IsTail, &status, &u.ReceivedAt, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Status = entity.StockUnitStatus(status)
	return &u, nil
}
