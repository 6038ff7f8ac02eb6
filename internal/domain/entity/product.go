package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del catálogo (solo lectura para el motor).
// MinPrice/MaxPrice acotan el precio negociable en caja; cero significa sin límite.
type Product struct {
	ID            string
	SKU           string
	Name          string
	Unit          string // unidad de medida: m, yd, kg...
	Price         decimal.Decimal
	MinPrice      decimal.Decimal
	MaxPrice      decimal.Decimal
	DefaultMinCut decimal.Decimal // corte mínimo por defecto para rollos nuevos
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// PriceAllowed verifica que el precio esté dentro de los límites del catálogo.
func (p *Product) PriceAllowed(price decimal.Decimal) bool {
	if price.LessThan(decimal.Zero) {
		return false
	}
	if p.MinPrice.GreaterThan(decimal.Zero) && price.LessThan(p.MinPrice) {
		return false
	}
	if p.MaxPrice.GreaterThan(decimal.Zero) && price.GreaterThan(p.MaxPrice) {
		return false
	}
	return true
}
