package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/rollpos-api/internal/domain/inventory"
	"github.com/jhoicas/rollpos-api/internal/domain/numbering"
)

// Ref origen de un movimiento: a qué documento pertenece y quién lo hizo.
type Ref struct {
	Type   string // entity.ReferenceSale, ReferencePurchase...
	ID     string
	Reason string
	By     string
}

// AllocateInput datos de un rollo nuevo (recepción o semilla).
type AllocateInput struct {
	ProductID           string
	SupplierID          string
	PurchaseOrderID     string
	PurchaseOrderLineID string
	BatchCode           string
	ScanCode            string // vacío = se genera EAN-13 desde el consecutivo
	LocationID          string
	Quantity            decimal.Decimal
	UnitCost            decimal.Decimal
	MinCutLength        *decimal.Decimal // nil = corte mínimo por defecto del producto
	ReceivedAt          time.Time
}

// Lifecycle operaciones sobre rollos dentro de una transacción abierta.
// Toda mutación de cantidad escribe exactamente un movimiento en el ledger.
type Lifecycle struct {
	now func() time.Time
}

// NewLifecycle construye el servicio.
func NewLifecycle() *Lifecycle {
	return &Lifecycle{now: time.Now}
}

// Allocate crea un rollo con su movimiento IN de apertura (0 -> cantidad).
func (l *Lifecycle) Allocate(ctx context.Context, r ports.Repos, in AllocateInput, ref Ref) (*entity.StockUnit, error) {
	if !in.Quantity.GreaterThan(decimal.Zero) || in.UnitCost.IsNegative() {
		return nil, fmt.Errorf("%w: cantidad y costo del rollo", domain.ErrInvalidInput)
	}
	if err := checkScale(in.Quantity); err != nil {
		return nil, err
	}
	if !domain.FitsScale(in.UnitCost, domain.CostScale) {
		return nil, fmt.Errorf("%w: el costo admite hasta %d decimales", domain.ErrInvalidInput, domain.CostScale)
	}
	if in.MinCutLength != nil {
		if err := checkScale(*in.MinCutLength); err != nil {
			return nil, err
		}
	}
	product, err := r.Products.GetByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("%w: producto %s", domain.ErrNotFound, in.ProductID)
	}
	if in.LocationID != "" {
		loc, err := r.Locations.GetByID(ctx, in.LocationID)
		if err != nil {
			return nil, err
		}
		if loc == nil {
			return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, in.LocationID)
		}
	}
	minCut := product.DefaultMinCut
	if in.MinCutLength != nil {
		if in.MinCutLength.IsNegative() {
			return nil, fmt.Errorf("%w: corte mínimo negativo", domain.ErrInvalidInput)
		}
		minCut = *in.MinCutLength
	}

	seq, err := r.Sequences.Next(ctx, entity.SequenceStockUnit)
	if err != nil {
		return nil, err
	}
	now := l.now()
	receivedAt := in.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = now
	}
	scan := in.ScanCode
	if scan == "" {
		scan = numbering.StockUnitScanCode(seq)
	}
	status, tail := domaininv.DeriveStatus(in.Quantity, minCut)
	unit := &entity.StockUnit{
		ID:                  uuid.New().String(),
		UnitNumber:          numbering.StockUnitNumber(seq),
		ScanCode:            scan,
		BatchCode:           in.BatchCode,
		ProductID:           in.ProductID,
		SupplierID:          in.SupplierID,
		PurchaseOrderID:     in.PurchaseOrderID,
		PurchaseOrderLineID: in.PurchaseOrderLineID,
		InitialQuantity:     in.Quantity,
		RemainingQuantity:   in.Quantity,
		Unit:                product.Unit,
		UnitCost:            in.UnitCost,
		MinCutLength:        minCut,
		LocationID:          in.LocationID,
		IsTail:              tail,
		Status:              status,
		ReceivedAt:          receivedAt,
		CreatedAt:           now,
		UpdatedAt:           now,
	}
	if err := r.Units.Create(ctx, unit); err != nil {
		return nil, err
	}
	if err := l.record(ctx, r, unit, entity.MovementTypeIN, decimal.Zero, ref); err != nil {
		return nil, err
	}
	return unit, nil
}

// Decrement saca cantidad de un rollo por venta (OUT).
func (l *Lifecycle) Decrement(ctx context.Context, r ports.Repos, unitID string, qty decimal.Decimal, ref Ref) (*entity.StockUnit, error) {
	return l.mutate(ctx, r, unitID, entity.MovementTypeOUT, ref, func(u *entity.StockUnit) error {
		if !qty.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
		}
		if err := checkScale(qty); err != nil {
			return err
		}
		if !u.Sellable() {
			return fmt.Errorf("%w: rollo %s en estado %s", domain.ErrInvalidStateTransition, u.UnitNumber, u.Status)
		}
		if qty.GreaterThan(u.RemainingQuantity) {
			return domain.NewLineError(domain.ErrInsufficientStock, domain.LineViolation{
				Reference: u.ID, Requested: qty, Available: u.RemainingQuantity, Reason: "stock insuficiente en el rollo",
			})
		}
		u.RemainingQuantity = u.RemainingQuantity.Sub(qty)
		return domaininv.Recompute(u)
	})
}

// Increment devuelve cantidad a un rollo. movementType es IN (anulación) o RETURN (devolución).
func (l *Lifecycle) Increment(ctx context.Context, r ports.Repos, unitID string, qty decimal.Decimal, movementType string, ref Ref) (*entity.StockUnit, error) {
	return l.mutate(ctx, r, unitID, movementType, ref, func(u *entity.StockUnit) error {
		if !qty.GreaterThan(decimal.Zero) {
			return fmt.Errorf("%w: cantidad debe ser mayor a cero", domain.ErrInvalidInput)
		}
		if err := checkScale(qty); err != nil {
			return err
		}
		if u.Status == entity.StockUnitDisposed {
			return fmt.Errorf("%w: rollo %s dado de baja", domain.ErrInvalidStateTransition, u.UnitNumber)
		}
		next := u.RemainingQuantity.Add(qty)
		if next.GreaterThan(u.InitialQuantity) {
			return fmt.Errorf("%w: rollo %s quedaría con %s de %s", domain.ErrInvalidInput, u.UnitNumber, next, u.InitialQuantity)
		}
		u.RemainingQuantity = next
		return domaininv.Recompute(u)
	})
}

// Adjust ajuste manual con delta con signo, acotado a 0 <= restante <= inicial.
func (l *Lifecycle) Adjust(ctx context.Context, r ports.Repos, unitID string, delta decimal.Decimal, ref Ref) (*entity.StockUnit, error) {
	return l.mutate(ctx, r, unitID, entity.MovementTypeADJUST, ref, func(u *entity.StockUnit) error {
		if delta.IsZero() {
			return fmt.Errorf("%w: delta no puede ser cero", domain.ErrInvalidInput)
		}
		if err := checkScale(delta); err != nil {
			return err
		}
		if u.Status == entity.StockUnitDisposed {
			return fmt.Errorf("%w: rollo %s dado de baja", domain.ErrInvalidStateTransition, u.UnitNumber)
		}
		next := u.RemainingQuantity.Add(delta)
		if next.IsNegative() || next.GreaterThan(u.InitialQuantity) {
			return fmt.Errorf("%w: ajuste deja el rollo %s en %s (0..%s)", domain.ErrInvalidInput, u.UnitNumber, next, u.InitialQuantity)
		}
		u.RemainingQuantity = next
		return domaininv.Recompute(u)
	})
}

// Dispose baja definitiva: restante a 0 y estado Disposed.
func (l *Lifecycle) Dispose(ctx context.Context, r ports.Repos, unitID string, ref Ref) (*entity.StockUnit, error) {
	return l.mutate(ctx, r, unitID, entity.MovementTypeDISPOSAL, ref, func(u *entity.StockUnit) error {
		if u.Status == entity.StockUnitDisposed {
			return fmt.Errorf("%w: rollo %s ya fue dado de baja", domain.ErrInvalidStateTransition, u.UnitNumber)
		}
		if err := domaininv.Transition(u, entity.StockUnitDisposed); err != nil {
			return err
		}
		u.RemainingQuantity = decimal.Zero
		u.IsTail = false
		return nil
	})
}

// Transfer cambia la ubicación; el movimiento TRANSFER va con cantidad 0 (solo auditoría).
func (l *Lifecycle) Transfer(ctx context.Context, r ports.Repos, unitID, locationID string, ref Ref) (*entity.StockUnit, error) {
	loc, err := r.Locations.GetByID(ctx, locationID)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, fmt.Errorf("%w: ubicación %s", domain.ErrNotFound, locationID)
	}
	return l.mutate(ctx, r, unitID, entity.MovementTypeTRANSFER, ref, func(u *entity.StockUnit) error {
		if u.Status == entity.StockUnitDisposed {
			return fmt.Errorf("%w: rollo %s dado de baja", domain.ErrInvalidStateTransition, u.UnitNumber)
		}
		if u.LocationID == locationID {
			return fmt.Errorf("%w: el rollo ya está en la ubicación", domain.ErrInvalidInput)
		}
		u.LocationID = locationID
		return nil
	})
}

// MarkDamaged cambio manual de estado; no mueve cantidad ni escribe movimiento.
func (l *Lifecycle) MarkDamaged(ctx context.Context, r ports.Repos, unitID string) (*entity.StockUnit, error) {
	return l.setStatus(ctx, r, unitID, func(u *entity.StockUnit) error {
		if u.Status == entity.StockUnitDamaged {
			return fmt.Errorf("%w: rollo %s ya está en Damaged", domain.ErrInvalidStateTransition, u.UnitNumber)
		}
		return domaininv.Transition(u, entity.StockUnitDamaged)
	})
}

// Restore saca el rollo de Damaged.
func (l *Lifecycle) Restore(ctx context.Context, r ports.Repos, unitID string) (*entity.StockUnit, error) {
	return l.setStatus(ctx, r, unitID, domaininv.Restore)
}

func (l *Lifecycle) lock(ctx context.Context, r ports.Repos, unitID string) (*entity.StockUnit, error) {
	u, err := r.Units.GetForUpdate(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: rollo %s", domain.ErrNotFound, unitID)
	}
	return u, nil
}

func (l *Lifecycle) setStatus(ctx context.Context, r ports.Repos, unitID string, change func(*entity.StockUnit) error) (*entity.StockUnit, error) {
	u, err := l.lock(ctx, r, unitID)
	if err != nil {
		return nil, err
	}
	if err := change(u); err != nil {
		return nil, err
	}
	u.UpdatedAt = l.now()
	if err := r.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// mutate bloquea el rollo, aplica change y registra el movimiento con el delta resultante.
func (l *Lifecycle) mutate(ctx context.Context, r ports.Repos, unitID, movementType string, ref Ref, change func(*entity.StockUnit) error) (*entity.StockUnit, error) {
	u, err := l.lock(ctx, r, unitID)
	if err != nil {
		return nil, err
	}
	before := u.RemainingQuantity
	if err := change(u); err != nil {
		return nil, err
	}
	if u.RemainingQuantity.IsNegative() || u.RemainingQuantity.GreaterThan(u.InitialQuantity) {
		return nil, fmt.Errorf("%w: rollo %s fuera de rango", domain.ErrInvalidInput, u.UnitNumber)
	}
	u.UpdatedAt = l.now()
	if err := r.Units.Update(ctx, u); err != nil {
		return nil, err
	}
	if err := l.record(ctx, r, u, movementType, before, ref); err != nil {
		return nil, err
	}
	return u, nil
}

func (l *Lifecycle) record(ctx context.Context, r ports.Repos, u *entity.StockUnit, movementType string, before decimal.Decimal, ref Ref) error {
	m := &entity.StockMovement{
		ID:             uuid.New().String(),
		StockUnitID:    u.ID,
		ProductID:      u.ProductID,
		Type:           movementType,
		Quantity:       u.RemainingQuantity.Sub(before),
		Unit:           u.Unit,
		ReferenceType:  ref.Type,
		ReferenceID:    ref.ID,
		Reason:         ref.Reason,
		BeforeQuantity: before,
		AfterQuantity:  u.RemainingQuantity,
		CreatedAt:      u.UpdatedAt,
		CreatedBy:      ref.By,
	}
	return r.Movements.Create(ctx, m)
}

// checkScale rechaza cantidades que la columna NUMERIC(14,3) redondearía;
// el ledger debe reproducir exactamente lo guardado.
func checkScale(qty decimal.Decimal) error {
	if !domain.FitsScale(qty, domain.QuantityScale) {
		return fmt.Errorf("%w: cantidad %s admite hasta %d decimales", domain.ErrInvalidInput, qty, domain.QuantityScale)
	}
	return nil
}
