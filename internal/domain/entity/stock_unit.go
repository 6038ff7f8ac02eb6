package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockUnitStatus estado de un rollo (ver inventory.StatusMachine para las transiciones).
type StockUnitStatus string

const (
	StockUnitAvailable  StockUnitStatus = "Available"
	StockUnitReserved   StockUnitStatus = "Reserved" // cola (tail): excluido de la venta normal
	StockUnitDamaged    StockUnitStatus = "Damaged"
	StockUnitDisposed   StockUnitStatus = "Disposed"
	StockUnitOutOfStock StockUnitStatus = "OutOfStock"
)

// StockUnit representa un rollo/lote físico consumible parcialmente.
// Invariante: 0 <= RemainingQuantity <= InitialQuantity.
type StockUnit struct {
	ID                  string
	UnitNumber          string // ROLL-000001
	ScanCode            string // EAN-13
	BatchCode           string
	ProductID           string
	SupplierID          string
	PurchaseOrderID     string
	PurchaseOrderLineID string
	InitialQuantity     decimal.Decimal
	RemainingQuantity   decimal.Decimal
	Unit                string
	UnitCost            decimal.Decimal
	MinCutLength        decimal.Decimal
	LocationID          string
	IsTail              bool
	Status              StockUnitStatus
	ReceivedAt          time.Time
	CreatedAt           time.Time
	UpdatedAt           time.Time
}

// Sellable indica si el rollo puede usarse en una venta (cajero lo escanea explícitamente).
// Las colas (Reserved) se venden solo si se piden de forma explícita.
func (u *StockUnit) Sellable() bool {
	return u.Status == StockUnitAvailable || u.Status == StockUnitReserved
}

// Eligible indica si el rollo aparece en la consulta de disponibilidad.
func (u *StockUnit) Eligible() bool {
	return u.Status == StockUnitAvailable && !u.IsTail && u.RemainingQuantity.GreaterThan(decimal.Zero)
}

// Clone devuelve una copia independiente.
func (u *StockUnit) Clone() *StockUnit {
	c := *u
	return &c
}
