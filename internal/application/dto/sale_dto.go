package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// SaleItemRequest una línea del carrito: corte de un rollo concreto.
type SaleItemRequest struct {
	ProductID   string          `json:"product_id" validate:"required"`
	StockUnitID string          `json:"stock_unit_id" validate:"required"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest body para POST /api/sales.
type CreateSaleRequest struct {
	IdempotencyKey  string            `json:"idempotency_key,omitempty" validate:"omitempty,max=100"`
	CustomerID      string            `json:"customer_id,omitempty"`
	EmployeeID      string            `json:"employee_id,omitempty"`
	Items           []SaleItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount        decimal.Decimal   `json:"discount"`
	BargainDiscount decimal.Decimal   `json:"bargain_discount"`
	TaxRate         *decimal.Decimal  `json:"tax_rate,omitempty"`
	PaymentMethod   string            `json:"payment_method" validate:"required,oneof=cash card transfer credit"`
	AmountReceived  decimal.Decimal   `json:"amount_received"`
}

// CancelSaleRequest body para anular o devolver una venta. El motivo es opcional.
type CancelSaleRequest struct {
	Reason string `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// SaleItemResponse línea de venta.
type SaleItemResponse struct {
	ID          string          `json:"id"`
	ProductID   string          `json:"product_id"`
	StockUnitID string          `json:"stock_unit_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	Unit        string          `json:"unit"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	LineTotal   decimal.Decimal `json:"line_total"`
}

// SaleResponse salida de una venta.
type SaleResponse struct {
	ID              string             `json:"id"`
	SaleNumber      string             `json:"sale_number"`
	ReceiptNumber   string             `json:"receipt_number"`
	ScanCode        string             `json:"scan_code"`
	CustomerID      string             `json:"customer_id,omitempty"`
	EmployeeID      string             `json:"employee_id"`
	Items           []SaleItemResponse `json:"items"`
	Subtotal        decimal.Decimal    `json:"subtotal"`
	Discount        decimal.Decimal    `json:"discount"`
	BargainDiscount decimal.Decimal    `json:"bargain_discount"`
	TaxRate         decimal.Decimal    `json:"tax_rate"`
	Tax             decimal.Decimal    `json:"tax"`
	GrandTotal      decimal.Decimal    `json:"grand_total"`
	PaymentMethod   string             `json:"payment_method"`
	AmountReceived  decimal.Decimal    `json:"amount_received"`
	Change          decimal.Decimal    `json:"change"`
	Status          string             `json:"status"`
	CancelReason    string             `json:"cancel_reason,omitempty"`
	CancelledAt     *time.Time         `json:"cancelled_at,omitempty"`
	CancelledBy     string             `json:"cancelled_by,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}
