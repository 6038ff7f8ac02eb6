package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderLineRequest línea de una orden nueva.
type PurchaseOrderLineRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	OrderedQuantity decimal.Decimal `json:"ordered_quantity"`
	UnitPrice       decimal.Decimal `json:"unit_price"`
}

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID   string                     `json:"supplier_id" validate:"required"`
	Lines        []PurchaseOrderLineRequest `json:"lines" validate:"required,min=1,dive"`
	ExpectedDate *time.Time                 `json:"expected_date,omitempty"`
	Notes        string                     `json:"notes,omitempty" validate:"max=1000"`
}

// ReceiveLineRequest cantidad recibida de una línea; se crea un rollo por línea recibida.
type ReceiveLineRequest struct {
	LineID       string           `json:"line_id" validate:"required"`
	Quantity     decimal.Decimal  `json:"quantity"`
	LocationID   string           `json:"location_id" validate:"required"`
	BatchCode    string           `json:"batch_code,omitempty" validate:"max=100"`
	ScanCode     string           `json:"scan_code,omitempty" validate:"omitempty,len=13,numeric"`
	MinCutLength *decimal.Decimal `json:"min_cut_length,omitempty"`
}

// ReceivePurchaseOrderRequest body para POST /api/purchase-orders/:id/receive.
type ReceivePurchaseOrderRequest struct {
	Lines []ReceiveLineRequest `json:"lines" validate:"required,min=1,dive"`
}

// PurchaseOrderLineResponse línea de orden.
type PurchaseOrderLineResponse struct {
	ID                string          `json:"id"`
	ProductID         string          `json:"product_id"`
	OrderedQuantity   decimal.Decimal `json:"ordered_quantity"`
	UnitPrice         decimal.Decimal `json:"unit_price"`
	ReceivedQuantity  decimal.Decimal `json:"received_quantity"`
	RemainingQuantity decimal.Decimal `json:"remaining_quantity"`
	LineTotal         decimal.Decimal `json:"line_total"`
}

// PurchaseOrderResponse salida de una orden de compra.
type PurchaseOrderResponse struct {
	ID            string                      `json:"id"`
	OrderNumber   string                      `json:"order_number"`
	SupplierID    string                      `json:"supplier_id"`
	Status        string                      `json:"status"`
	Lines         []PurchaseOrderLineResponse `json:"lines"`
	OrderDate     time.Time                   `json:"order_date"`
	ExpectedDate  *time.Time                  `json:"expected_date,omitempty"`
	DeliveredAt   *time.Time                  `json:"delivered_at,omitempty"`
	Total         decimal.Decimal             `json:"total"`
	ReceivedTotal decimal.Decimal             `json:"received_total"`
	Notes         string                      `json:"notes,omitempty"`
	CreatedAt     time.Time                   `json:"created_at"`
}

// ReceiptResponse resultado de una recepción: orden actualizada y rollos creados.
type ReceiptResponse struct {
	Order PurchaseOrderResponse `json:"order"`
	Units []StockUnitResponse   `json:"units"`
}
