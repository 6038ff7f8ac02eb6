package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// CostCalculator implementa la lógica de costo promedio ponderado (servicio de dominio).
// NuevoCosto = ((StockActual * CostoActual) + (CantEntrada * CostoEntrada)) / (StockActual + CantEntrada)
func CostCalculator(stockActual, costoActual, cantEntrada, costoEntrada decimal.Decimal) decimal.Decimal {
	sum := stockActual.Add(cantEntrada)
	if sum.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	num := stockActual.Mul(costoActual).Add(cantEntrada.Mul(costoEntrada))
	return num.Div(sum)
}

// WeightedAverageCost acumula CostCalculator sobre los rollos usando su cantidad restante.
// Devuelve la cantidad total y el costo promedio ponderado (redondeado a 4 decimales).
func WeightedAverageCost(units []*entity.StockUnit) (total, avgCost decimal.Decimal) {
	total, avgCost = decimal.Zero, decimal.Zero
	for _, u := range units {
		if !u.RemainingQuantity.GreaterThan(decimal.Zero) {
			continue
		}
		avgCost = CostCalculator(total, avgCost, u.RemainingQuantity, u.UnitCost)
		total = total.Add(u.RemainingQuantity)
	}
	return total, avgCost.Round(4)
}
