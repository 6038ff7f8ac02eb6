package sales

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// Totals resultado del cálculo de una venta.
type Totals struct {
	Subtotal   decimal.Decimal
	Taxable    decimal.Decimal
	Tax        decimal.Decimal
	GrandTotal decimal.Decimal
	Change     decimal.Decimal
}

// LineTotal cantidad x precio, redondeado a 2 decimales.
func LineTotal(qty, price decimal.Decimal) decimal.Decimal {
	return qty.Mul(price).Round(2)
}

// ComputeTotals calcula subtotal, impuesto, total y cambio.
//
//	tax        = (subtotal - discount - bargain) * taxRate  (2 decimales)
//	grandTotal = subtotal - discount - bargain + tax
//	change     = max(0, received - grandTotal)
func ComputeTotals(items []entity.SaleItem, discount, bargain, taxRate, received decimal.Decimal) (Totals, error) {
	if discount.IsNegative() || bargain.IsNegative() || taxRate.IsNegative() || received.IsNegative() {
		return Totals{}, domain.ErrInvalidInput
	}
	var t Totals
	for _, it := range items {
		t.Subtotal = t.Subtotal.Add(it.LineTotal)
	}
	t.Taxable = t.Subtotal.Sub(discount).Sub(bargain)
	if t.Taxable.IsNegative() {
		return Totals{}, domain.ErrInvalidInput
	}
	t.Tax = t.Taxable.Mul(taxRate).Round(2)
	t.GrandTotal = t.Taxable.Add(t.Tax)
	if received.GreaterThan(t.GrandTotal) {
		t.Change = received.Sub(t.GrandTotal)
	}
	return t, nil
}

// ValidatePayment aplica las reglas de caja: crédito requiere cliente, el resto exige pago completo.
func ValidatePayment(method, customerID string, received, grandTotal decimal.Decimal) error {
	switch method {
	case entity.PaymentCredit:
		if customerID == "" {
			return domain.ErrInvalidInput
		}
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer:
		if received.LessThan(grandTotal) {
			return domain.ErrInvalidInput
		}
	default:
		return domain.ErrInvalidInput
	}
	return nil
}
