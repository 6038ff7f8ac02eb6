package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockUnitResponse salida de un rollo.
type StockUnitResponse struct {
	ID                string          `json:"id"`
	UnitNumber        string          `json:"unit_number"`
	ScanCode          string          `json:"scan_code"`
	BatchCode         string          `json:"batch_code,omitempty"`
	ProductID         string          `json:"product_id"`
	SupplierID        string          `json:"supplier_id,omitempty"`
	PurchaseOrderID   string          `json:"purchase_order_id,omitempty"`
	InitialQuantity   decimal.Decimal `json:"initial_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	Unit              string          `json:"unit"`
	UnitCost          decimal.Decimal `json:"unit_cost"`
	MinCutLength      decimal.Decimal `json:"min_cut_length"`
	LocationID        string          `json:"location_id,omitempty"`
	IsTail            bool            `json:"is_tail"`
	Status            string          `json:"status"`
	ReceivedAt        time.Time       `json:"received_at"`
	UpdatedAt         time.Time       `json:"updated_at"`
}

// AvailabilityResponse rollos vendibles de un producto en orden FIFO.
type AvailabilityResponse struct {
	ProductID      string              `json:"product_id"`
	TotalRemaining decimal.Decimal     `json:"total_remaining"`
	AverageCost    decimal.Decimal     `json:"average_cost"`
	Units          []StockUnitResponse `json:"units"`
}

// AdjustUnitRequest body para POST /api/inventory/units/:id/adjust. Delta con signo.
type AdjustUnitRequest struct {
	Delta  decimal.Decimal `json:"delta"`
	Reason string          `json:"reason" validate:"required,min=3,max=500"`
}

// DisposeUnitRequest body para dar de baja un rollo.
type DisposeUnitRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// TransferUnitRequest body para mover un rollo de ubicación.
type TransferUnitRequest struct {
	LocationID string `json:"location_id" validate:"required"`
}

// MovementFilterRequest query de GET /api/inventory/movements.
type MovementFilterRequest struct {
	StockUnitID   string `query:"stock_unit_id"`
	ProductID     string `query:"product_id"`
	Type          string `query:"type" validate:"omitempty,oneof=IN OUT ADJUST DISPOSAL RETURN TRANSFER"`
	ReferenceType string `query:"reference_type" validate:"omitempty,oneof=SALE PURCHASE ADJUSTMENT SEED TRANSFER"`
	ReferenceID   string `query:"reference_id"`
	From          string `query:"from" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	To            string `query:"to" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit         int    `query:"limit" validate:"min=0,max=500"`
	Offset        int    `query:"offset" validate:"min=0"`
}

// StockMovementResponse movimiento del ledger de inventario.
type StockMovementResponse struct {
	ID             string          `json:"id"`
	Sequence       int64           `json:"sequence"`
	StockUnitID    string          `json:"stock_unit_id"`
	ProductID      string          `json:"product_id"`
	Type           string          `json:"type"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	ReferenceType  string          `json:"reference_type"`
	ReferenceID    string          `json:"reference_id"`
	Reason         string          `json:"reason,omitempty"`
	BeforeQuantity decimal.Decimal `json:"before_quantity"`
	AfterQuantity  decimal.Decimal `json:"after_quantity"`
	CreatedAt      time.Time       `json:"created_at"`
	CreatedBy      string          `json:"created_by,omitempty"`
}

// MovementListResponse lista paginada de movimientos.
type MovementListResponse struct {
	Items []StockMovementResponse `json:"items"`
	Page  PageResponse            `json:"page"`
}

// ReconciliationResponse resultado de reproducir el ledger de un rollo.
type ReconciliationResponse struct {
	StockUnitID string          `json:"stock_unit_id"`
	Initial     decimal.Decimal `json:"initial_quantity"`
	Stored      decimal.Decimal `json:"stored_remaining"`
	Replayed    decimal.Decimal `json:"replayed_remaining"`
	Entries     int             `json:"entries"`
	Consistent  bool            `json:"consistent"`
	Issues      []string        `json:"issues,omitempty"`
}
