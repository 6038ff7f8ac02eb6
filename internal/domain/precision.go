package domain

import "github.com/shopspring/decimal"

// Decimales que guardan las columnas NUMERIC del esquema.
const (
	QuantityScale int32 = 3 // NUMERIC(14,3): cantidades de rollos, ventas y órdenes
	MoneyScale    int32 = 2 // NUMERIC(14,2): precios, descuentos, totales
	CostScale     int32 = 4 // NUMERIC(14,4): costo unitario del rollo
	RateScale     int32 = 4 // NUMERIC(6,4): tarifa de impuesto
)

// FitsScale indica si d se puede guardar con scale decimales sin redondeo.
// "1.2000" cabe en escala 3; "1.2345" no.
func FitsScale(d decimal.Decimal, scale int32) bool {
	return d.Equal(d.Truncate(scale))
}
