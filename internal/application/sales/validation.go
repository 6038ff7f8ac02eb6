package sales

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// severidad del tipo de error reportado cuando hay líneas con fallas distintas
var kindRank = []error{
	domain.ErrNotFound,
	domain.ErrInvalidInput,
	domain.ErrInvalidStateTransition,
	domain.ErrInsufficientStock,
}

// violations acumula líneas rechazadas; Kind queda en el error más severo visto.
type violations struct {
	err  *domain.LineError
	rank int
}

func (v *violations) add(kind error, lv domain.LineViolation) {
	rank := len(kindRank)
	for i, k := range kindRank {
		if k == kind {
			rank = i
		}
	}
	if v.err == nil {
		v.err = domain.NewLineError(kind)
		v.rank = rank
	} else if rank < v.rank {
		v.err.Kind = kind
		v.rank = rank
	}
	v.err.Add(lv)
}

func (v *violations) result() error {
	if v.err.HasViolations() {
		return v.err
	}
	return nil
}

// precheck validaciones que no requieren leer la base.
func precheck(in dto.CreateSaleRequest) error {
	if len(in.Items) == 0 {
		return fmt.Errorf("%w: la venta no tiene líneas", domain.ErrInvalidInput)
	}
	switch in.PaymentMethod {
	case entity.PaymentCash, entity.PaymentCard, entity.PaymentTransfer, entity.PaymentCredit:
	default:
		return fmt.Errorf("%w: medio de pago %q", domain.ErrInvalidInput, in.PaymentMethod)
	}
	if in.Discount.IsNegative() || in.BargainDiscount.IsNegative() || in.AmountReceived.IsNegative() {
		return fmt.Errorf("%w: montos negativos", domain.ErrInvalidInput)
	}
	if in.TaxRate != nil && (in.TaxRate.IsNegative() || in.TaxRate.GreaterThan(decimal.NewFromInt(1))) {
		return fmt.Errorf("%w: tarifa de impuesto fuera de rango", domain.ErrInvalidInput)
	}
	if in.TaxRate != nil && !domain.FitsScale(*in.TaxRate, domain.RateScale) {
		return fmt.Errorf("%w: tarifa de impuesto admite hasta %d decimales", domain.ErrInvalidInput, domain.RateScale)
	}
	for _, amount := range []decimal.Decimal{in.Discount, in.BargainDiscount, in.AmountReceived} {
		if !domain.FitsScale(amount, domain.MoneyScale) {
			return fmt.Errorf("%w: los montos admiten hasta %d decimales (%s)", domain.ErrInvalidInput, domain.MoneyScale, amount)
		}
	}
	var v violations
	for i, it := range in.Items {
		if it.StockUnitID == "" || it.ProductID == "" {
			v.add(domain.ErrInvalidInput, domain.LineViolation{Line: i, Reference: it.StockUnitID, Reason: "producto y rollo requeridos"})
			continue
		}
		if !it.Quantity.GreaterThan(decimal.Zero) {
			v.add(domain.ErrInvalidInput, domain.LineViolation{Line: i, Reference: it.StockUnitID, Requested: it.Quantity, Reason: "cantidad debe ser mayor a cero"})
		}
		if !domain.FitsScale(it.Quantity, domain.QuantityScale) {
			v.add(domain.ErrInvalidInput, domain.LineViolation{
				Line: i, Reference: it.StockUnitID, Requested: it.Quantity,
				Reason: fmt.Sprintf("la cantidad admite hasta %d decimales", domain.QuantityScale),
			})
		}
		if it.UnitPrice.IsNegative() {
			v.add(domain.ErrInvalidInput, domain.LineViolation{Line: i, Reference: it.StockUnitID, Reason: "precio negativo"})
		} else if !domain.FitsScale(it.UnitPrice, domain.MoneyScale) {
			v.add(domain.ErrInvalidInput, domain.LineViolation{
				Line: i, Reference: it.StockUnitID, Requested: it.Quantity,
				Reason: fmt.Sprintf("el precio admite hasta %d decimales", domain.MoneyScale),
			})
		}
	}
	return v.result()
}

// lockUnits bloquea los rollos del carrito en orden ascendente de id.
// Los rollos inexistentes no aparecen en el mapa.
func lockUnits(ctx context.Context, r ports.Repos, items []dto.SaleItemRequest) (map[string]*entity.StockUnit, error) {
	ids := make([]string, 0, len(items))
	seen := make(map[string]bool, len(items))
	for _, it := range items {
		if !seen[it.StockUnitID] {
			seen[it.StockUnitID] = true
			ids = append(ids, it.StockUnitID)
		}
	}
	sort.Strings(ids)
	units := make(map[string]*entity.StockUnit, len(ids))
	for _, id := range ids {
		u, err := r.Units.GetForUpdate(ctx, id)
		if err != nil {
			return nil, err
		}
		if u != nil {
			units[id] = u
		}
	}
	return units, nil
}

// validateLines revisa todas las líneas contra los rollos ya bloqueados y reporta todas las fallas juntas.
func (s *Service) validateLines(ctx context.Context, r ports.Repos, items []dto.SaleItemRequest, units map[string]*entity.StockUnit) error {
	var v violations
	products := map[string]*entity.Product{}
	demand := map[string]decimal.Decimal{}

	for i, it := range items {
		u, ok := units[it.StockUnitID]
		if !ok {
			v.add(domain.ErrNotFound, domain.LineViolation{Line: i, Reference: it.StockUnitID, Requested: it.Quantity, Reason: "rollo no existe"})
			continue
		}
		p, ok := products[it.ProductID]
		if !ok {
			var err error
			if p, err = r.Products.GetByID(ctx, it.ProductID); err != nil {
				return err
			}
			products[it.ProductID] = p
		}
		if p == nil {
			v.add(domain.ErrNotFound, domain.LineViolation{Line: i, Reference: it.ProductID, Requested: it.Quantity, Reason: "producto no existe"})
			continue
		}
		if u.ProductID != it.ProductID {
			v.add(domain.ErrInvalidInput, domain.LineViolation{Line: i, Reference: u.ID, Requested: it.Quantity, Reason: "el rollo no pertenece al producto"})
			continue
		}
		if !u.Sellable() {
			v.add(domain.ErrInvalidStateTransition, domain.LineViolation{
				Line: i, Reference: u.ID, Requested: it.Quantity, Available: u.RemainingQuantity,
				Reason: fmt.Sprintf("rollo %s en estado %s", u.UnitNumber, u.Status),
			})
			continue
		}
		if !p.PriceAllowed(it.UnitPrice) {
			v.add(domain.ErrInvalidInput, domain.LineViolation{
				Line: i, Reference: u.ID, Requested: it.Quantity,
				Reason: fmt.Sprintf("precio %s fuera del rango permitido [%s, %s]", it.UnitPrice, p.MinPrice, p.MaxPrice),
			})
		}
		demand[u.ID] = demand[u.ID].Add(it.Quantity)
	}

	for i, it := range items {
		u, ok := units[it.StockUnitID]
		if !ok || !u.Sellable() || u.ProductID != it.ProductID {
			continue
		}
		if total := demand[u.ID]; total.GreaterThan(u.RemainingQuantity) {
			v.add(domain.ErrInsufficientStock, domain.LineViolation{
				Line: i, Reference: u.ID, Requested: total, Available: u.RemainingQuantity,
				Reason: fmt.Sprintf("rollo %s: se piden %s, quedan %s", u.UnitNumber, total, u.RemainingQuantity),
			})
		}
	}
	return v.result()
}
