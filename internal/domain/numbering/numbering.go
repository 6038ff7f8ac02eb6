// Package numbering formatea los consecutivos del sistema y genera códigos EAN-13.
package numbering

import (
	"fmt"
	"strconv"
	"time"
)

// Prefijos de los consecutivos.
const (
	PrefixSale      = "SAL"
	PrefixReceipt   = "RCP"
	PrefixStockUnit = "ROLL"
	PrefixPO        = "PO"
)

// Prefijos EAN-13 internos (rango 20-29 reservado para uso en tienda).
const (
	scanPrefixStockUnit = "21"
	scanPrefixSale      = "22"
)

// SaleNumber SAL-000001.
func SaleNumber(n int64) string { return fmt.Sprintf("%s-%06d", PrefixSale, n) }

// StockUnitNumber ROLL-000001.
func StockUnitNumber(n int64) string { return fmt.Sprintf("%s-%06d", PrefixStockUnit, n) }

// PurchaseOrderNumber PO-000001.
func PurchaseOrderNumber(n int64) string { return fmt.Sprintf("%s-%06d", PrefixPO, n) }

// ReceiptNumber RCP-YYYYMMDD-000001.
func ReceiptNumber(at time.Time, n int64) string {
	return fmt.Sprintf("%s-%s-%06d", PrefixReceipt, at.Format("20060102"), n)
}

// StockUnitScanCode EAN-13 derivado del consecutivo del rollo.
func StockUnitScanCode(n int64) string { return EAN13(scanPrefixStockUnit, n) }

// SaleScanCode EAN-13 derivado del consecutivo de la venta.
func SaleScanCode(n int64) string { return EAN13(scanPrefixSale, n) }

// EAN13 arma 12 dígitos (prefijo + número con ceros) y agrega el dígito de control.
func EAN13(prefix string, n int64) string {
	body := fmt.Sprintf("%s%0*d", prefix, 12-len(prefix), n%pow10(12-len(prefix)))
	return body + strconv.Itoa(checkDigit(body))
}

// ValidEAN13 verifica longitud, dígitos y dígito de control.
func ValidEAN13(code string) bool {
	if len(code) != 13 {
		return false
	}
	for _, c := range code {
		if c < '0' || c > '9' {
			return false
		}
	}
	return int(code[12]-'0') == checkDigit(code[:12])
}

func checkDigit(body string) int {
	sum := 0
	for i, c := range body {
		d := int(c - '0')
		if i%2 == 1 {
			d *= 3
		}
		sum += d
	}
	return (10 - sum%10) % 10
}

func pow10(n int) int64 {
	p := int64(1)
	for i := 0; i < n; i++ {
		p *= 10
	}
	return p
}
