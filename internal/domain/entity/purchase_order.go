package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado de una orden de compra (ver purchasing.OrderMachine).
type PurchaseOrderStatus string

const (
	POStatusCreated           PurchaseOrderStatus = "Created"
	POStatusOrdered           PurchaseOrderStatus = "Ordered"
	POStatusPartiallyReceived PurchaseOrderStatus = "Partially Received"
	POStatusReceived          PurchaseOrderStatus = "Received"
	POStatusClosed            PurchaseOrderStatus = "Closed"
	POStatusCancelled         PurchaseOrderStatus = "Cancelled"
)

// PurchaseOrder cabecera de una orden a proveedor con líneas embebidas.
type PurchaseOrder struct {
	ID            string
	OrderNumber   string
	SupplierID    string
	Status        PurchaseOrderStatus
	Lines         []PurchaseOrderLine
	OrderDate     time.Time
	ExpectedDate  *time.Time
	DeliveredAt   *time.Time
	Total         decimal.Decimal
	ReceivedTotal decimal.Decimal
	Notes         string
	CreatedBy     string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PurchaseOrderLine invariante: ReceivedQuantity + RemainingQuantity = OrderedQuantity.
type PurchaseOrderLine struct {
	ID                string
	PurchaseOrderID   string
	ProductID         string
	OrderedQuantity   decimal.Decimal
	UnitPrice         decimal.Decimal
	ReceivedQuantity  decimal.Decimal
	RemainingQuantity decimal.Decimal
	LineTotal         decimal.Decimal
}

// Line busca una línea por ID.
func (po *PurchaseOrder) Line(lineID string) *PurchaseOrderLine {
	for i := range po.Lines {
		if po.Lines[i].ID == lineID {
			return &po.Lines[i]
		}
	}
	return nil
}

// HasReceipts indica si alguna línea ya recibió mercancía.
func (po *PurchaseOrder) HasReceipts() bool {
	for _, l := range po.Lines {
		if l.ReceivedQuantity.GreaterThan(decimal.Zero) {
			return true
		}
	}
	return false
}

// RecomputeTotals recalcula totales de líneas y cabecera.
func (po *PurchaseOrder) RecomputeTotals() {
	total := decimal.Zero
	received := decimal.Zero
	for i := range po.Lines {
		l := &po.Lines[i]
		l.LineTotal = l.OrderedQuantity.Mul(l.UnitPrice).Round(2)
		total = total.Add(l.LineTotal)
		received = received.Add(l.ReceivedQuantity.Mul(l.UnitPrice))
	}
	po.Total = total
	po.ReceivedTotal = received.Round(2)
}

// Clone copia la orden incluyendo sus líneas.
func (po *PurchaseOrder) Clone() *PurchaseOrder {
	c := *po
	c.Lines = append([]PurchaseOrderLine(nil), po.Lines...)
	return &c
}
