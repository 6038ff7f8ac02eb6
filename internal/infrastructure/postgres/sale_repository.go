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

var _ repository.SaleRepository = (*SaleRepo)(nil)

const saleColumns = `
	id, sale_number, receipt_number, scan_code, COALESCE(customer_id, ''), employee_id, subtotal, discount,
	bargain_discount, tax_rate, tax, grand_total, payment_method, amount_received, change_amount, status,
	COALESCE(idempotency_key, ''), COALESCE(cancel_reason, ''), cancelled_at, COALESCE(cancelled_by, ''),
	created_at, updated_at`

// SaleRepo ventas (cabecera + líneas) sobre PostgreSQL.
type SaleRepo struct {
	q Querier
}

// NewSaleRepository construye el adaptador. Pasar pool o tx (Querier).
func NewSaleRepository(q Querier) *SaleRepo {
	return &SaleRepo{q: q}
}

// Create inserta cabecera y líneas. Una clave de idempotencia repetida devuelve domain.ErrDuplicate.
func (r *SaleRepo) Create(ctx context.Context, s *entity.Sale) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO sales (id, sale_number, receipt_number, scan_code, customer_id, employee_id, subtotal, discount,
			bargain_discount, tax_rate, tax, grand_total, payment_method, amount_received, change_amount, status,
			idempotency_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NULLIF($17, ''), $18, $19)`,
		s.ID, s.SaleNumber, s.ReceiptNumber, s.ScanCode, s.CustomerID, s.EmployeeID, s.Subtotal, s.Discount,
		s.BargainDiscount, s.TaxRate, s.Tax, s.GrandTotal, s.PaymentMethod, s.AmountReceived, s.Change, s.Status,
		s.IdempotencyKey, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrap("insert sale", err)
	}
	batch := &pgx.Batch{}
	for i, it := range s.Items {
		batch.Queue(`
			INSERT INTO sale_items (id, sale_id, position, product_id, stock_unit_id, quantity, unit, unit_price, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			it.ID, s.ID, i, it.ProductID, it.StockUnitID, it.Quantity, it.Unit, it.UnitPrice, it.LineTotal)
	}
	return execBatch(ctx, r.q, batch, "insert sale items")
}

// GetByID venta con líneas; (nil, nil) si no existe.
func (r *SaleRepo) GetByID(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT`+saleColumns+` FROM sales WHERE id = $1`, id)
}

// GetForUpdate venta con líneas, bloqueando la cabecera.
func (r *SaleRepo) GetForUpdate(ctx context.Context, id string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT`+saleColumns+` FROM sales WHERE id = $1 FOR UPDATE`, id)
}

// GetByIdempotencyKey venta confirmada con esa clave; (nil, nil) si no existe.
func (r *SaleRepo) GetByIdempotencyKey(ctx context.Context, key string) (*entity.Sale, error) {
	return r.get(ctx, `SELECT`+saleColumns+` FROM sales WHERE idempotency_key = $1`, key)
}

// UpdateStatus cambio de estado condicionado al estado previo (WHERE status = fromStatus).
func (r *SaleRepo) UpdateStatus(ctx context.Context, s *entity.Sale, fromStatus string) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE sales
		SET status = $2, cancel_reason = NULLIF($3, ''), cancelled_at = $4, cancelled_by = NULLIF($5, ''), updated_at = $6
		WHERE id = $1 AND status = $7`,
		s.ID, s.Status, s.CancelReason, s.CancelledAt, s.CancelledBy, s.UpdatedAt, fromStatus,
	)
	if err != nil {
		return wrap("update sale status", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update sale status: %w: venta %s ya no está en %s", domain.ErrInvalidStateTransition, s.ID, fromStatus)
	}
	return nil
}

func (r *SaleRepo) get(ctx context.Context, query, arg string) (*entity.Sale, error) {
	var s entity.Sale
	err := r.q.QueryRow(ctx, query, arg).Scan(
		&s.ID, &s.SaleNumber, &s.ReceiptNumber, &s.ScanCode, &s.CustomerID, &s.EmployeeID, &s.Subtotal, &s.Discount,
		&s.BargainDiscount, &s.TaxRate, &s.Tax, &s.GrandTotal, &s.PaymentMethod, &s.AmountReceived, &s.Change, &s.Status,
		&s.IdempotencyKey, &s.CancelReason, &s.CancelledAt, &s.CancelledBy, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get sale", err)
	}
	rows, err := r.q.Query(ctx, `
		SELECT id, sale_id, product_id, stock_unit_id, quantity, unit, unit_price, line_total
		FROM sale_items WHERE sale_id = $1 ORDER BY position`, s.ID)
	if err != nil {
		return nil, wrap("list sale items", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it entity.SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.StockUnitID, &it.Quantity, &it.Unit, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, wrap("scan sale item", err)
		}
		s.Items = append(s.Items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list sale items", err)
	}
	return &s, nil
}
