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

var _ repository.PurchaseOrderRepository = (*PurchaseOrderRepo)(nil)

const purchaseOrderColumns = `
	id, order_number, supplier_id, status, order_date, expected_date, delivered_at, total, received_total,
	COALESCE(notes, ''), COALESCE(created_by, ''), created_at, updated_at`

// PurchaseOrderRepo órdenes de compra con sus líneas sobre PostgreSQL.
type PurchaseOrderRepo struct {
	q Querier
}

// NewPurchaseOrderRepository construye el adaptador. Pasar pool o tx (Querier).
func NewPurchaseOrderRepository(q Querier) *PurchaseOrderRepo {
	return &PurchaseOrderRepo{q: q}
}

// Create inserta cabecera y líneas (position conserva el orden de captura).
func (r *PurchaseOrderRepo) Create(ctx context.Context, po *entity.PurchaseOrder) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO purchase_orders (id, order_number, supplier_id, status, order_date, expected_date, delivered_at,
			total, received_total, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''), NULLIF($11, ''), $12, $13)`,
		po.ID, po.OrderNumber, po.SupplierID, string(po.Status), po.OrderDate, po.ExpectedDate, po.DeliveredAt,
		po.Total, po.ReceivedTotal, po.Notes, po.CreatedBy, po.CreatedAt, po.UpdatedAt,
	)
	if err != nil {
		return wrap("insert purchase order", err)
	}
	batch := &pgx.Batch{}
	for i, l := range po.Lines {
		batch.Queue(`
			INSERT INTO purchase_order_lines (id, purchase_order_id, position, product_id, ordered_quantity, unit_price,
				received_quantity, remaining_quantity, line_total)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			l.ID, po.ID, i, l.ProductID, l.OrderedQuantity, l.UnitPrice, l.ReceivedQuantity, l.RemainingQuantity, l.LineTotal)
	}
	return execBatch(ctx, r.q, batch, "insert purchase order lines")
}

// GetByID orden con líneas; (nil, nil) si no existe.
func (r *PurchaseOrderRepo) GetByID(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT`+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1`, id)
}

// GetForUpdate orden con líneas, bloqueando la cabecera.
func (r *PurchaseOrderRepo) GetForUpdate(ctx context.Context, id string) (*entity.PurchaseOrder, error) {
	return r.get(ctx, `SELECT`+purchaseOrderColumns+` FROM purchase_orders WHERE id = $1 FOR UPDATE`, id)
}

// Update persiste estado, totales, fecha de entrega y cantidades recibidas de cada línea.
func (r *PurchaseOrderRepo) Update(ctx context.Context, po *entity.PurchaseOrder) error {
	tag, err := r.q.Exec(ctx, `
		UPDATE purchase_orders
		SET status = $2, delivered_at = $3, total = $4, received_total = $5, updated_at = $6
		WHERE id = $1`,
		po.ID, string(po.Status), po.DeliveredAt, po.Total, po.ReceivedTotal, po.UpdatedAt,
	)
	if err != nil {
		return wrap("update purchase order", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update purchase order: %w: %s", domain.ErrNotFound, po.ID)
	}
	batch := &pgx.Batch{}
	for _, l := range po.Lines {
		batch.Queue(`
			UPDATE purchase_order_lines
			SET received_quantity = $2, remaining_quantity = $3, line_total = $4
			WHERE id = $1`, l.ID, l.ReceivedQuantity, l.RemainingQuantity, l.LineTotal)
	}
	return execBatch(ctx, r.q, batch, "update purchase order lines")
}

// Delete elimina la orden; las líneas caen por ON DELETE CASCADE.
func (r *PurchaseOrderRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.q.Exec(ctx, `DELETE FROM purchase_orders WHERE id = $1`, id)
	if err != nil {
		return wrap("delete purchase order", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete purchase order: %w: %s", domain.ErrNotFound, id)
	}
	return nil
}

func (r *PurchaseOrderRepo) get(ctx context.Context, query, id string) (*entity.PurchaseOrder, error) {
	var (
		po     entity.PurchaseOrder
		status string
	)
	err := r.q.QueryRow(ctx, query, id).Scan(
		&po.ID, &po.OrderNumber, &po.SupplierID, &status, &po.OrderDate, &po.ExpectedDate, &po.DeliveredAt,
		&po.Total, &po.ReceivedTotal, &po.Notes, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, wrap("get purchase order", err)
	}
	po.Status = entity.PurchaseOrderStatus(status)

	rows, err := r.q.Query(ctx, `
		SELECT id, purchase_order_id, product_id, ordered_quantity, unit_price, received_quantity, remaining_quantity, line_total
		FROM purchase_order_lines WHERE purchase_order_id = $1 ORDER BY position`, po.ID)
	if err != nil {
		return nil, wrap("list purchase order lines", err)
	}
	defer rows.Close()
	for rows.Next() {
		var l entity.PurchaseOrderLine
		if err := rows.Scan(&l.ID, &l.PurchaseOrderID, &l.ProductID, &l.OrderedQuantity, &l.UnitPrice,
			&l.ReceivedQuantity, &l.RemainingQuantity, &l.LineTotal); err != nil {
			return nil, wrap("scan purchase order line", err)
		}
		po.Lines = append(po.Lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, wrap("list purchase order lines", err)
	}
	return &po, nil
}
