package numbering_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/rollpos-api/internal/domain/numbering"
)

func TestFormatos(t *testing.T) {
	assert.Equal(t, "SAL-000001", numbering.SaleNumber(1))
	assert.Equal(t, "ROLL-000042", numbering.StockUnitNumber(42))
	assert.Equal(t, "PO-000007", numbering.PurchaseOrderNumber(7))
	at := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, "RCP-20240309-000012", numbering.ReceiptNumber(at, 12))
}

func TestEAN13_DigitoDeControl(t *testing.T) {
	// 400638133393 -> dígito 1 (ejemplo público)
	assert.True(t, numbering.ValidEAN13("4006381333931"))
	assert.False(t, numbering.ValidEAN13("4006381333932"))
	assert.False(t, numbering.ValidEAN13("40063813339"))

	code := numbering.StockUnitScanCode(1)
	assert.Len(t, code, 13)
	assert.Equal(t, "210000000001", code[:12])
	assert.True(t, numbering.ValidEAN13(code))
	assert.NotEqual(t, code, numbering.SaleScanCode(1))
}
