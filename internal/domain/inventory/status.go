package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// stockUnitTransitions tabla de transiciones permitidas del estado de un rollo.
// Disposed es terminal.
var stockUnitTransitions = map[entity.StockUnitStatus][]entity.StockUnitStatus{
	entity.StockUnitAvailable: {
		entity.StockUnitReserved, entity.StockUnitOutOfStock, entity.StockUnitDamaged, entity.StockUnitDisposed,
	},
	entity.StockUnitReserved: {
		entity.StockUnitAvailable, entity.StockUnitOutOfStock, entity.StockUnitDamaged, entity.StockUnitDisposed,
	},
	entity.StockUnitOutOfStock: {
		entity.StockUnitAvailable, entity.StockUnitReserved, entity.StockUnitDisposed,
	},
	entity.StockUnitDamaged: {
		entity.StockUnitAvailable, entity.StockUnitReserved, entity.StockUnitOutOfStock, entity.StockUnitDisposed,
	},
	entity.StockUnitDisposed: {},
}

// CanTransition indica si from -> to está en la tabla. Mismo estado siempre es válido.
func CanTransition(from, to entity.StockUnitStatus) bool {
	if from == to {
		return true
	}
	for _, s := range stockUnitTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Transition cambia el estado validando contra la tabla.
func Transition(u *entity.StockUnit, to entity.StockUnitStatus) error {
	if !CanTransition(u.Status, to) {
		return fmt.Errorf("%w: rollo %s %s -> %s", domain.ErrInvalidStateTransition, u.UnitNumber, u.Status, to)
	}
	u.Status = to
	return nil
}

// DeriveStatus calcula estado y marca de cola a partir de la cantidad restante:
//   - remaining <= 0            -> OutOfStock
//   - 0 < remaining < minCut    -> Reserved (cola)
//   - remaining >= minCut       -> Available
func DeriveStatus(remaining, minCut decimal.Decimal) (entity.StockUnitStatus, bool) {
	switch {
	case remaining.LessThanOrEqual(decimal.Zero):
		return entity.StockUnitOutOfStock, false
	case remaining.LessThan(minCut):
		return entity.StockUnitReserved, true
	default:
		return entity.StockUnitAvailable, false
	}
}

// Recompute actualiza estado y marca de cola después de una mutación de cantidad.
// Damaged y Disposed son manuales: se conservan y solo se refresca IsTail.
func Recompute(u *entity.StockUnit) error {
	status, tail := DeriveStatus(u.RemainingQuantity, u.MinCutLength)
	if u.Status == entity.StockUnitDamaged || u.Status == entity.StockUnitDisposed {
		u.IsTail = tail
		return nil
	}
	if err := Transition(u, status); err != nil {
		return err
	}
	u.IsTail = tail
	return nil
}

// Restore saca un rollo de Damaged y lo devuelve al estado derivado de su cantidad.
func Restore(u *entity.StockUnit) error {
	if u.Status != entity.StockUnitDamaged {
		return fmt.Errorf("%w: rollo %s no está en Damaged", domain.ErrInvalidStateTransition, u.UnitNumber)
	}
	status, tail := DeriveStatus(u.RemainingQuantity, u.MinCutLength)
	if err := Transition(u, status); err != nil {
		return err
	}
	u.IsTail = tail
	return nil
}
