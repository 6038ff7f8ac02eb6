package inventory

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/domain/entity"
)

// ReconciliationReport resultado de reproducir el ledger de un rollo.
type ReconciliationReport struct {
	StockUnitID string
	Initial     decimal.Decimal
	Stored      decimal.Decimal
	Replayed    decimal.Decimal
	Entries     int
	Consistent  bool
	Issues      []string
}

// Reconcile reproduce los movimientos (en orden de creación) y los compara con la cantidad guardada.
// El movimiento de apertura (recepción o semilla) va de 0 a Initial; a partir de ahí cada
// movimiento debe encadenar Before con el After anterior.
func Reconcile(unit *entity.StockUnit, movements []*entity.StockMovement) ReconciliationReport {
	rep := ReconciliationReport{
		StockUnitID: unit.ID,
		Initial:     unit.InitialQuantity,
		Stored:      unit.RemainingQuantity,
		Replayed:    decimal.Zero,
		Entries:     len(movements),
	}
	if len(movements) == 0 {
		rep.Issues = append(rep.Issues, "sin movimiento de apertura")
		return rep
	}
	if !movements[0].BeforeQuantity.IsZero() || !movements[0].AfterQuantity.Equal(unit.InitialQuantity) {
		rep.Issues = append(rep.Issues, fmt.Sprintf("apertura %s -> %s no coincide con inicial %s",
			movements[0].BeforeQuantity, movements[0].AfterQuantity, unit.InitialQuantity))
	}
	for i, m := range movements {
		if !m.BeforeQuantity.Equal(rep.Replayed) {
			rep.Issues = append(rep.Issues, fmt.Sprintf("movimiento %d: before %s, esperado %s", i, m.BeforeQuantity, rep.Replayed))
		}
		rep.Replayed = rep.Replayed.Add(m.Quantity)
		if !m.AfterQuantity.Equal(rep.Replayed) {
			rep.Issues = append(rep.Issues, fmt.Sprintf("movimiento %d: after %s, esperado %s", i, m.AfterQuantity, rep.Replayed))
		}
		if rep.Replayed.LessThan(decimal.Zero) || rep.Replayed.GreaterThan(unit.InitialQuantity) {
			rep.Issues = append(rep.Issues, fmt.Sprintf("movimiento %d: cantidad fuera de rango %s", i, rep.Replayed))
		}
	}
	if !rep.Replayed.Equal(unit.RemainingQuantity) {
		rep.Issues = append(rep.Issues, fmt.Sprintf("replay %s distinto de guardado %s", rep.Replayed, unit.RemainingQuantity))
	}
	rep.Consistent = len(rep.Issues) == 0
	return rep
}

// Consumed cantidad consumida según el ledger (inicial - restante).
func (r ReconciliationReport) Consumed() decimal.Decimal {
	return r.Initial.Sub(r.Replayed)
}
