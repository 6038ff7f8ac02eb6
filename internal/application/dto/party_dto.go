package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// PartyLedgerEntryResponse asiento del ledger de terceros.
type PartyLedgerEntryResponse struct {
	ID            string          `json:"id"`
	Sequence      int64           `json:"sequence"`
	EntryType     string          `json:"entry_type"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	Balance       decimal.Decimal `json:"balance"`
	ReferenceType string          `json:"reference_type"`
	ReferenceID   string          `json:"reference_id"`
	Description   string          `json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PartyLedgerResponse saldo actual y asientos de un tercero.
type PartyLedgerResponse struct {
	PartyType string                     `json:"party_type"`
	PartyID   string                     `json:"party_id"`
	Balance   decimal.Decimal            `json:"balance"`
	Entries   []PartyLedgerEntryResponse `json:"entries"`
	Page      PageResponse               `json:"page"`
}
