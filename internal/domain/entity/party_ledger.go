package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de tercero del ledger de saldos.
const (
	PartyCustomer = "customer"
	PartySupplier = "supplier"
	PartyEmployee = "employee"
)

// Tipos de asiento del ledger de terceros.
const (
	PartyEntrySale       = "Sale"
	PartyEntryPayment    = "Payment"
	PartyEntryPurchase   = "Purchase"
	PartyEntryReturn     = "Return"
	PartyEntryRefund     = "Refund"
	PartyEntryAdvance    = "Advance"
	PartyEntrySalary     = "Salary"
	PartyEntryCommission = "Commission"
	PartyEntryAdjustment = "Adjustment"
)

// PartyLedgerEntry asiento inmutable de saldo corrido de un cliente/proveedor/empleado.
// Balance = saldo anterior + Debit - Credit.
type PartyLedgerEntry struct {
	ID            string
	Sequence      int64
	PartyType     string
	PartyID       string
	EntryType     string
	Debit         decimal.Decimal
	Credit        decimal.Decimal
	Balance       decimal.Decimal
	ReferenceType string
	ReferenceID   string
	Description   string
	CreatedAt     time.Time
}

// Party identidad mínima de un tercero (directorio externo, solo lectura).
type Party struct {
	ID   string
	Type string
	Name string
}
