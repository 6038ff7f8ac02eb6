package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de una venta.
const (
	SaleStatusPending   = "pending"
	SaleStatusCompleted = "completed"
	SaleStatusCancelled = "cancelled"
	SaleStatusRefunded  = "refunded"
)

// Medios de pago aceptados en caja.
const (
	PaymentCash     = "cash"
	PaymentCard     = "card"
	PaymentTransfer = "transfer"
	PaymentCredit   = "credit"
)

// Sale cabecera de una venta de punto de venta.
type Sale struct {
	ID              string
	SaleNumber      string
	ReceiptNumber   string
	ScanCode        string
	CustomerID      string
	EmployeeID      string
	Items           []SaleItem
	Subtotal        decimal.Decimal
	Discount        decimal.Decimal
	BargainDiscount decimal.Decimal
	TaxRate         decimal.Decimal
	Tax             decimal.Decimal
	GrandTotal      decimal.Decimal
	PaymentMethod   string
	AmountReceived  decimal.Decimal
	Change          decimal.Decimal
	Status          string
	IdempotencyKey  string
	CancelReason    string
	CancelledAt     *time.Time
	CancelledBy     string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// SaleItem línea de venta: un corte de un rollo concreto.
type SaleItem struct {
	ID          string
	SaleID      string
	ProductID   string
	StockUnitID string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// AmountPaid parte del total cubierta en caja (el resto queda como crédito del cliente).
func (s *Sale) AmountPaid() decimal.Decimal {
	if s.AmountReceived.GreaterThan(s.GrandTotal) {
		return s.GrandTotal
	}
	return s.AmountReceived
}

// Clone copia la venta incluyendo sus líneas.
func (s *Sale) Clone() *Sale {
	c := *s
	c.Items = append([]SaleItem(nil), s.Items...)
	if s.CancelledAt != nil {
		t := *s.CancelledAt
		c.CancelledAt = &t
	}
	return &c
}
