package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del ledger de inventario.
const (
	MovementTypeIN       = "IN"       // entrada (recepción, anulación de venta)
	MovementTypeOUT      = "OUT"      // salida por venta
	MovementTypeADJUST   = "ADJUST"   // ajuste manual
	MovementTypeDISPOSAL = "DISPOSAL" // baja del rollo
	MovementTypeRETURN   = "RETURN"   // devolución de venta
	MovementTypeTRANSFER = "TRANSFER" // cambio de ubicación (cantidad 0)
)

// Tipos de referencia del movimiento.
const (
	ReferenceSale       = "SALE"
	ReferencePurchase   = "PURCHASE"
	ReferenceAdjustment = "ADJUSTMENT"
	ReferenceSeed       = "SEED"
	ReferenceTransfer   = "TRANSFER"
)

// StockMovement registro inmutable de un cambio de cantidad de un rollo.
// Quantity es el delta con signo (negativo cuando sale stock del rollo).
type StockMovement struct {
	ID             string
	Sequence       int64 // orden de creación
	StockUnitID    string
	ProductID      string
	Type           string
	Quantity       decimal.Decimal
	Unit           string
	ReferenceType  string
	ReferenceID    string
	Reason         string
	BeforeQuantity decimal.Decimal
	AfterQuantity  decimal.Decimal
	CreatedAt      time.Time
	CreatedBy      string
}

// MovementFilter filtros de consulta del ledger; los campos vacíos no filtran.
type MovementFilter struct {
	StockUnitID   string
	ProductID     string
	Type          string
	ReferenceType string
	ReferenceID   string
	From          *time.Time
	To            *time.Time
	Limit         int
	Offset        int
}
