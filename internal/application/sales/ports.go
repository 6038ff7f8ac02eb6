package sales

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ReceiptLine línea del recibo con datos de catálogo resueltos.
type ReceiptLine struct {
	SKU         string
	ProductName string
	UnitNumber  string
	Quantity    decimal.Decimal
	Unit        string
	UnitPrice   decimal.Decimal
	LineTotal   decimal.Decimal
}

// ReceiptPDFGenerator genera la representación impresa de la venta.
type ReceiptPDFGenerator interface {
	GenerateReceiptPDF(ctx context.Context, sale *entity.Sale, customer *entity.Party, lines []ReceiptLine) ([]byte, error)
}
