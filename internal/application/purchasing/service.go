// Package purchasing implementa las órdenes de compra y su recepción en rollos.
package purchasing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	appinv "github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/application/party"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/numbering"
	domainpo "github.com/jhoicas/rollpos-api/internal/domain/purchasing"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

// Service casos de uso de órdenes de compra.
type Service struct {
	tx        ports.TxRunner
	locker    ports.Locker
	lifecycle *appinv.Lifecycle
	log       *logger.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewService construye el caso de uso. locker puede ser nil.
func NewService(tx ports.TxRunner, locker ports.Locker, lifecycle *appinv.Lifecycle, log *logger.Logger, m *metrics.Metrics) *Service {
	if locker == nil {
		locker = ports.NoopLocker{}
	}
	return &Service{tx: tx, locker: locker, lifecycle: lifecycle, log: log, metrics: m, now: time.Now}
}

// CreateOrder crea la orden en estado Created con número PO-000001.
func (s *Service) CreateOrder(ctx context.Context, userID string, in dto.CreatePurchaseOrderRequest) (*dto.PurchaseOrderResponse, error) {
	if in.SupplierID == "" || len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: proveedor y líneas requeridos", domain.ErrInvalidInput)
	}
	var v []domain.LineViolation
	for i, l := range in.Lines {
		switch {
		case !l.OrderedQuantity.GreaterThan(decimal.Zero) || l.UnitPrice.IsNegative():
			v = append(v, domain.LineViolation{Line: i, Reference: l.ProductID, Requested: l.OrderedQuantity, Reason: "cantidad o precio inválido"})
		case !domain.FitsScale(l.OrderedQuantity, domain.QuantityScale) || !domain.FitsScale(l.UnitPrice, domain.MoneyScale):
			v = append(v, domain.LineViolation{
				Line: i, Reference: l.ProductID, Requested: l.OrderedQuantity,
				Reason: fmt.Sprintf("cantidad hasta %d decimales y precio hasta %d", domain.QuantityScale, domain.MoneyScale),
			})
		}
	}
	if len(v) > 0 {
		return nil, domain.NewLineError(domain.ErrInvalidInput, v...)
	}

	var po *entity.PurchaseOrder
	err := s.run(ctx, "create_order", func(r ports.Repos) error {
		supplier, err := r.Parties.GetByID(ctx, entity.PartySupplier, in.SupplierID)
		if err != nil {
			return err
		}
		if supplier == nil {
			return fmt.Errorf("%w: proveedor %s", domain.ErrNotFound, in.SupplierID)
		}
		for i, l := range in.Lines {
			p, err := r.Products.GetByID(ctx, l.ProductID)
			if err != nil {
				return err
			}
			if p == nil {
				return domain.NewLineError(domain.ErrNotFound, domain.LineViolation{Line: i, Reference: l.ProductID, Reason: "producto no existe"})
			}
		}
		seq, err := r.Sequences.Next(ctx, entity.SequencePO)
		if err != nil {
			return err
		}
		now := s.now()
		po = &entity.PurchaseOrder{
			ID:           uuid.New().String(),
			OrderNumber:  numbering.PurchaseOrderNumber(seq),
			SupplierID:   in.SupplierID,
			Status:       entity.POStatusCreated,
			OrderDate:    now,
			ExpectedDate: in.ExpectedDate,
			Notes:        in.Notes,
			CreatedBy:    userID,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		for _, l := range in.Lines {
			po.Lines = append(po.Lines, entity.PurchaseOrderLine{
				ID:                uuid.New().String(),
				PurchaseOrderID:   po.ID,
				ProductID:         l.ProductID,
				OrderedQuantity:   l.OrderedQuantity,
				UnitPrice:         l.UnitPrice,
				ReceivedQuantity:  decimal.Zero,
				RemainingQuantity: l.OrderedQuantity,
			})
		}
		po.RecomputeTotals()
		return r.Orders.Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", po.ID).Str("order_number", po.OrderNumber).Int("lines", len(po.Lines)).Msg("orden de compra creada")
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// GetOrder obtiene una orden con sus líneas.
func (s *Service) GetOrder(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	po, err := s.tx.Read().Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

// MarkOrdered Created -> Ordered.
func (s *Service) MarkOrdered(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	return s.transition(ctx, "mark_ordered", orderID, entity.POStatusOrdered)
}

// Close Received -> Closed.
func (s *Service) Close(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	return s.transition(ctx, "close_order", orderID, entity.POStatusClosed)
}

// Cancel Created/Ordered -> Cancelled.
func (s *Service) Cancel(ctx context.Context, orderID string) (*dto.PurchaseOrderResponse, error) {
	return s.transition(ctx, "cancel_order", orderID, entity.POStatusCancelled)
}

// Delete elimina la orden si no tiene recepciones y está en Created, Ordered o Cancelled.
func (s *Service) Delete(ctx context.Context, orderID string) error {
	return s.run(ctx, "delete_order", func(r ports.Repos) error {
		po, err := s.lock(ctx, r, orderID)
		if err != nil {
			return err
		}
		if !domainpo.CanDelete(po) {
			return fmt.Errorf("%w: orden %s en estado %s o con recepciones", domain.ErrInvalidStateTransition, po.OrderNumber, po.Status)
		}
		return r.Orders.Delete(ctx, po.ID)
	})
}

// Receive recibe líneas de la orden: un rollo nuevo por línea recibida con su movimiento IN,
// cantidades de línea actualizadas, asiento Purchase al proveedor y estado recalculado.
func (s *Service) Receive(ctx context.Context, userID, orderID string, in dto.ReceivePurchaseOrderRequest) (*dto.ReceiptResponse, error) {
	if len(in.Lines) == 0 {
		return nil, fmt.Errorf("%w: la recepción no tiene líneas", domain.ErrInvalidInput)
	}
	var bad []domain.LineViolation
	for i, l := range in.Lines {
		switch {
		case !l.Quantity.GreaterThan(decimal.Zero):
			bad = append(bad, domain.LineViolation{Line: i, Reference: l.LineID, Requested: l.Quantity, Reason: "cantidad debe ser mayor a cero"})
		case !domain.FitsScale(l.Quantity, domain.QuantityScale):
			bad = append(bad, domain.LineViolation{Line: i, Reference: l.LineID, Requested: l.Quantity, Reason: fmt.Sprintf("la cantidad admite hasta %d decimales", domain.QuantityScale)})
		case l.MinCutLength != nil && !domain.FitsScale(*l.MinCutLength, domain.QuantityScale):
			bad = append(bad, domain.LineViolation{Line: i, Reference: l.LineID, Requested: l.Quantity, Reason: fmt.Sprintf("el corte mínimo admite hasta %d decimales", domain.QuantityScale)})
		}
	}
	if len(bad) > 0 {
		return nil, domain.NewLineError(domain.ErrInvalidInput, bad...)
	}

	unlock, err := s.locker.Lock(ctx, "po:"+orderID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var (
		po    *entity.PurchaseOrder
		units []*entity.StockUnit
	)
	err = s.run(ctx, "receive_order", func(r ports.Repos) error {
		var err error
		po, err = s.lock(ctx, r, orderID)
		if err != nil {
			return err
		}
		if !domainpo.CanReceive(po.Status) {
			return fmt.Errorf("%w: orden %s en estado %s no admite recepciones", domain.ErrInvalidStateTransition, po.OrderNumber, po.Status)
		}
		if err := checkReceipt(po, in.Lines); err != nil {
			return err
		}

		ref := appinv.Ref{Type: entity.ReferencePurchase, ID: po.ID, Reason: "Recepción " + po.OrderNumber, By: userID}
		value := decimal.Zero
		now := s.now()
		for _, rl := range in.Lines {
			line := po.Line(rl.LineID)
			unit, err := s.lifecycle.Allocate(ctx, r, appinv.AllocateInput{
				ProductID:           line.ProductID,
				SupplierID:          po.SupplierID,
				PurchaseOrderID:     po.ID,
				PurchaseOrderLineID: line.ID,
				BatchCode:           rl.BatchCode,
				ScanCode:            rl.ScanCode,
				LocationID:          rl.LocationID,
				Quantity:            rl.Quantity,
				UnitCost:            line.UnitPrice,
				MinCutLength:        rl.MinCutLength,
				ReceivedAt:          now,
			}, ref)
			if err != nil {
				return err
			}
			units = append(units, unit)
			if err := domainpo.ApplyReceipt(line, rl.Quantity); err != nil {
				return err
			}
			value = value.Add(rl.Quantity.Mul(line.UnitPrice))
		}

		if err := domainpo.Transition(po, domainpo.DeriveReceiptStatus(po)); err != nil {
			return err
		}
		if po.Status == entity.POStatusReceived {
			po.DeliveredAt = &now
		}
		po.RecomputeTotals()
		po.UpdatedAt = now
		if err := r.Orders.Update(ctx, po); err != nil {
			return err
		}
		return party.Post(ctx, r, &entity.PartyLedgerEntry{
			PartyType:     entity.PartySupplier,
			PartyID:       po.SupplierID,
			EntryType:     entity.PartyEntryPurchase,
			Debit:         value.Round(2),
			Credit:        decimal.Zero,
			ReferenceType: entity.ReferencePurchase,
			ReferenceID:   po.ID,
			Description:   "Recepción " + po.OrderNumber,
		})
	})
	if err != nil {
		s.metrics.RecordReceipt("rejected")
		return nil, err
	}
	s.metrics.RecordReceipt(string(po.Status))
	for range units {
		s.metrics.RecordMovement(entity.MovementTypeIN)
	}
	s.log.Info().Str("order_id", po.ID).Str("status", string(po.Status)).Int("units", len(units)).Msg("recepción registrada")

	out := &dto.ReceiptResponse{Order: ToPurchaseOrderResponse(po), Units: make([]dto.StockUnitResponse, 0, len(units))}
	for _, u := range units {
		out.Units = append(out.Units, appinv.ToStockUnitResponse(u))
	}
	return out, nil
}

// checkReceipt agrega cantidades por línea y reporta todas las líneas que superan lo pendiente.
func checkReceipt(po *entity.PurchaseOrder, lines []dto.ReceiveLineRequest) error {
	requested := map[string]decimal.Decimal{}
	var missing []domain.LineViolation
	for i, rl := range lines {
		if po.Line(rl.LineID) == nil {
			missing = append(missing, domain.LineViolation{Line: i, Reference: rl.LineID, Requested: rl.Quantity, Reason: "la línea no pertenece a la orden"})
			continue
		}
		requested[rl.LineID] = requested[rl.LineID].Add(rl.Quantity)
	}
	if len(missing) > 0 {
		return domain.NewLineError(domain.ErrNotFound, missing...)
	}
	over := domain.NewLineError(domain.ErrOverReceipt)
	for i, rl := range lines {
		line := po.Line(rl.LineID)
		if total := requested[rl.LineID]; total.GreaterThan(line.RemainingQuantity) {
			over.Add(domain.LineViolation{
				Line: i, Reference: line.ID, Requested: total, Available: line.RemainingQuantity,
				Reason: fmt.Sprintf("se reciben %s, quedan %s pendientes", total, line.RemainingQuantity),
			})
		}
	}
	if over.HasViolations() {
		return over
	}
	return nil
}

func (s *Service) transition(ctx context.Context, op, orderID string, to entity.PurchaseOrderStatus) (*dto.PurchaseOrderResponse, error) {
	var po *entity.PurchaseOrder
	err := s.run(ctx, op, func(r ports.Repos) error {
		var err error
		if po, err = s.lock(ctx, r, orderID); err != nil {
			return err
		}
		if err := domainpo.Transition(po, to); err != nil {
			return err
		}
		po.UpdatedAt = s.now()
		return r.Orders.Update(ctx, po)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("order_id", po.ID).Str("status", string(po.Status)).Msg("orden de compra actualizada")
	resp := ToPurchaseOrderResponse(po)
	return &resp, nil
}

func (s *Service) lock(ctx context.Context, r ports.Repos, orderID string) (*entity.PurchaseOrder, error) {
	po, err := r.Orders.GetForUpdate(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if po == nil {
		return nil, fmt.Errorf("%w: orden %s", domain.ErrNotFound, orderID)
	}
	return po, nil
}

func (s *Service) run(ctx context.Context, op string, fn func(r ports.Repos) error) error {
	start := s.now()
	err := s.tx.Run(ctx, fn)
	s.metrics.RecordTx(op, err, errors.Is(err, domain.ErrConcurrencyConflict), time.Since(start))
	return err
}
