// Package sales implementa el motor transaccional de ventas: creación, anulación y devolución.
package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
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
	domainsales "github.com/jhoicas/rollpos-api/internal/domain/sales"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

// Motivos fijos de los movimientos de reverso.
const (
	ReasonCancellation = "Sale Cancellation"
	ReasonRefund       = "Sale Refund"
)

// Service casos de uso de venta.
type Service struct {
	tx             ports.TxRunner
	locker         ports.Locker
	lifecycle      *appinv.Lifecycle
	pdf            ReceiptPDFGenerator
	log            *logger.Logger
	metrics        *metrics.Metrics
	defaultTaxRate decimal.Decimal
	now            func() time.Time
}

// Config dependencias del servicio de ventas.
type Config struct {
	TxRunner       ports.TxRunner
	Locker         ports.Locker
	Lifecycle      *appinv.Lifecycle
	PDF            ReceiptPDFGenerator
	Logger         *logger.Logger
	Metrics        *metrics.Metrics
	DefaultTaxRate decimal.Decimal
}

// NewService construye el caso de uso. Sin Locker se usa ports.NoopLocker.
func NewService(cfg Config) *Service {
	locker := cfg.Locker
	if locker == nil {
		locker = ports.NoopLocker{}
	}
	return &Service{
		tx:             cfg.TxRunner,
		locker:         locker,
		lifecycle:      cfg.Lifecycle,
		pdf:            cfg.PDF,
		log:            cfg.Logger,
		metrics:        cfg.Metrics,
		defaultTaxRate: cfg.DefaultTaxRate,
		now:            time.Now,
	}
}

// CreateSale valida el carrito y, en una sola transacción, persiste la venta, descuenta
// cada rollo con su movimiento OUT y registra el asiento del cliente.
// Una clave de idempotencia repetida devuelve la venta ya confirmada.
func (s *Service) CreateSale(ctx context.Context, userID string, in dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	if err := precheck(in); err != nil {
		s.metrics.RecordSale("rejected", 0)
		return nil, err
	}

	if in.IdempotencyKey != "" {
		if existing, err := s.tx.Read().Sales.GetByIdempotencyKey(ctx, in.IdempotencyKey); err != nil {
			return nil, err
		} else if existing != nil {
			resp := ToSaleResponse(existing)
			return &resp, nil
		}
		unlock, err := s.locker.Lock(ctx, "sale-idem:"+in.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		defer unlock()
	}

	var (
		sale     *entity.Sale
		replayed bool
	)
	start := s.now()
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		if in.IdempotencyKey != "" {
			existing, err := r.Sales.GetByIdempotencyKey(ctx, in.IdempotencyKey)
			if err != nil {
				return err
			}
			if existing != nil {
				sale, replayed = existing, true
				return nil
			}
		}
		var err error
		sale, err = s.createInTx(ctx, r, userID, in)
		return err
	})
	s.metrics.RecordTx("create_sale", err, errors.Is(err, domain.ErrConcurrencyConflict), time.Since(start))

	// carrera con la misma clave: la otra transacción ganó el índice único
	if errors.Is(err, domain.ErrDuplicate) && in.IdempotencyKey != "" {
		existing, gerr := s.tx.Read().Sales.GetByIdempotencyKey(ctx, in.IdempotencyKey)
		if gerr == nil && existing != nil {
			resp := ToSaleResponse(existing)
			return &resp, nil
		}
	}
	if err != nil {
		s.metrics.RecordSale("rejected", 0)
		s.log.Warn().Err(err).Int("items", len(in.Items)).Msg("venta rechazada")
		return nil, err
	}

	if replayed {
		resp := ToSaleResponse(sale)
		return &resp, nil
	}
	total, _ := sale.GrandTotal.Float64()
	s.metrics.RecordSale(entity.SaleStatusCompleted, total)
	for range sale.Items {
		s.metrics.RecordMovement(entity.MovementTypeOUT)
	}
	s.log.Info().
		Str("sale_id", sale.ID).
		Str("sale_number", sale.SaleNumber).
		Str("grand_total", sale.GrandTotal.String()).
		Int("units", len(sale.Items)).
		Msg("venta confirmada")
	resp := ToSaleResponse(sale)
	return &resp, nil
}

func (s *Service) createInTx(ctx context.Context, r ports.Repos, userID string, in dto.CreateSaleRequest) (*entity.Sale, error) {
	employeeID := in.EmployeeID
	if employeeID != "" {
		emp, err := r.Parties.GetByID(ctx, entity.PartyEmployee, employeeID)
		if err != nil {
			return nil, err
		}
		if emp == nil {
			return nil, fmt.Errorf("%w: empleado %s", domain.ErrNotFound, employeeID)
		}
	} else {
		employeeID = userID
	}
	if in.CustomerID != "" {
		c, err := r.Parties.GetByID(ctx, entity.PartyCustomer, in.CustomerID)
		if err != nil {
			return nil, err
		}
		if c == nil {
			return nil, fmt.Errorf("%w: cliente %s", domain.ErrNotFound, in.CustomerID)
		}
	}

	units, err := lockUnits(ctx, r, in.Items)
	if err != nil {
		return nil, err
	}
	if err := s.validateLines(ctx, r, in.Items, units); err != nil {
		return nil, err
	}

	saleID := uuid.New().String()
	items := make([]entity.SaleItem, 0, len(in.Items))
	for _, it := range in.Items {
		items = append(items, entity.SaleItem{
			ID:          uuid.New().String(),
			SaleID:      saleID,
			ProductID:   it.ProductID,
			StockUnitID: it.StockUnitID,
			Quantity:    it.Quantity,
			Unit:        units[it.StockUnitID].Unit,
			UnitPrice:   it.UnitPrice,
			LineTotal:   domainsales.LineTotal(it.Quantity, it.UnitPrice),
		})
	}
	taxRate := s.defaultTaxRate
	if in.TaxRate != nil {
		taxRate = *in.TaxRate
	}
	totals, err := domainsales.ComputeTotals(items, in.Discount, in.BargainDiscount, taxRate, in.AmountReceived)
	if err != nil {
		return nil, fmt.Errorf("%w: descuentos superan el subtotal", err)
	}
	if err := domainsales.ValidatePayment(in.PaymentMethod, in.CustomerID, in.AmountReceived, totals.GrandTotal); err != nil {
		return nil, fmt.Errorf("%w: pago insuficiente o medio de pago inválido", err)
	}

	saleSeq, err := r.Sequences.Next(ctx, entity.SequenceSale)
	if err != nil {
		return nil, err
	}
	receiptSeq, err := r.Sequences.Next(ctx, entity.SequenceReceipt)
	if err != nil {
		return nil, err
	}
	now := s.now()
	sale := &entity.Sale{
		ID:              saleID,
		SaleNumber:      numbering.SaleNumber(saleSeq),
		ReceiptNumber:   numbering.ReceiptNumber(now, receiptSeq),
		ScanCode:        numbering.SaleScanCode(saleSeq),
		CustomerID:      in.CustomerID,
		EmployeeID:      employeeID,
		Items:           items,
		Subtotal:        totals.Subtotal,
		Discount:        in.Discount,
		BargainDiscount: in.BargainDiscount,
		TaxRate:         taxRate,
		Tax:             totals.Tax,
		GrandTotal:      totals.GrandTotal,
		PaymentMethod:   in.PaymentMethod,
		AmountReceived:  in.AmountReceived,
		Change:          totals.Change,
		Status:          entity.SaleStatusCompleted,
		IdempotencyKey:  in.IdempotencyKey,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := r.Sales.Create(ctx, sale); err != nil {
		return nil, err
	}

	ref := appinv.Ref{Type: entity.ReferenceSale, ID: sale.ID, Reason: "Venta " + sale.SaleNumber, By: employeeID}
	for _, it := range sale.Items {
		if _, err := s.lifecycle.Decrement(ctx, r, it.StockUnitID, it.Quantity, ref); err != nil {
			return nil, err
		}
	}

	if sale.CustomerID != "" {
		if err := party.Post(ctx, r, saleEntry(sale)); err != nil {
			return nil, err
		}
	}
	return sale, nil
}

// CancelSale anula una venta completada: devuelve cada corte a su rollo (IN) y reversa el asiento.
func (s *Service) CancelSale(ctx context.Context, userID, saleID string, in dto.CancelSaleRequest) (*dto.SaleResponse, error) {
	return s.reverse(ctx, "cancel_sale", userID, saleID, in.Reason, reversal{
		status:       entity.SaleStatusCancelled,
		movementType: entity.MovementTypeIN,
		entryType:    entity.PartyEntryRefund,
		reason:       ReasonCancellation,
	})
}

// RefundSale devolución de una venta completada: RETURN por línea y asiento Return.
func (s *Service) RefundSale(ctx context.Context, userID, saleID string, in dto.CancelSaleRequest) (*dto.SaleResponse, error) {
	return s.reverse(ctx, "refund_sale", userID, saleID, in.Reason, reversal{
		status:       entity.SaleStatusRefunded,
		movementType: entity.MovementTypeRETURN,
		entryType:    entity.PartyEntryReturn,
		reason:       ReasonRefund,
	})
}

type reversal struct {
	status       string
	movementType string
	entryType    string
	reason       string
}

func (s *Service) reverse(ctx context.Context, op, userID, saleID, reason string, rv reversal) (*dto.SaleResponse, error) {
	if reason == "" {
		reason = rv.reason
	}
	unlock, err := s.locker.Lock(ctx, "sale:"+saleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	var sale *entity.Sale
	start := s.now()
	err = s.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		sale, err = r.Sales.GetForUpdate(ctx, saleID)
		if err != nil {
			return err
		}
		if sale == nil {
			return fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
		}
		if sale.Status != entity.SaleStatusCompleted {
			return fmt.Errorf("%w: venta %s en estado %s", domain.ErrInvalidStateTransition, sale.SaleNumber, sale.Status)
		}
		now := s.now()
		sale.Status = rv.status
		sale.CancelReason = reason
		sale.CancelledAt = &now
		sale.CancelledBy = userID
		sale.UpdatedAt = now
		if err := r.Sales.UpdateStatus(ctx, sale, entity.SaleStatusCompleted); err != nil {
			return err
		}

		// mismo orden de bloqueo que la creación
		items := append([]entity.SaleItem(nil), sale.Items...)
		sort.SliceStable(items, func(i, j int) bool { return items[i].StockUnitID < items[j].StockUnitID })
		ref := appinv.Ref{Type: entity.ReferenceSale, ID: sale.ID, Reason: rv.reason, By: userID}
		for _, it := range items {
			if _, err := s.lifecycle.Increment(ctx, r, it.StockUnitID, it.Quantity, rv.movementType, ref); err != nil {
				return err
			}
		}
		if sale.CustomerID != "" {
			entry := party.Reverse(saleEntry(sale), rv.entryType, rv.reason+": "+sale.SaleNumber)
			if err := party.Post(ctx, r, entry); err != nil {
				return err
			}
		}
		return nil
	})
	s.metrics.RecordTx(op, err, errors.Is(err, domain.ErrConcurrencyConflict), time.Since(start))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSale(rv.status, 0)
	for range sale.Items {
		s.metrics.RecordMovement(rv.movementType)
	}
	s.log.Info().Str("sale_id", sale.ID).Str("status", sale.Status).Str("by", userID).Msg("venta reversada")
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetSale obtiene una venta con sus líneas.
func (s *Service) GetSale(ctx context.Context, saleID string) (*dto.SaleResponse, error) {
	sale, err := s.tx.Read().Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ReceiptPDF genera el recibo de la venta.
func (s *Service) ReceiptPDF(ctx context.Context, saleID string) ([]byte, string, error) {
	if s.pdf == nil {
		return nil, "", fmt.Errorf("%w: generador de recibos no configurado", domain.ErrPersistenceFailure)
	}
	repos := s.tx.Read()
	sale, err := repos.Sales.GetByID(ctx, saleID)
	if err != nil {
		return nil, "", err
	}
	if sale == nil {
		return nil, "", fmt.Errorf("%w: venta %s", domain.ErrNotFound, saleID)
	}
	var customer *entity.Party
	if sale.CustomerID != "" {
		if customer, err = repos.Parties.GetByID(ctx, entity.PartyCustomer, sale.CustomerID); err != nil {
			return nil, "", err
		}
	}
	lines := make([]ReceiptLine, 0, len(sale.Items))
	for _, it := range sale.Items {
		line := ReceiptLine{Quantity: it.Quantity, Unit: it.Unit, UnitPrice: it.UnitPrice, LineTotal: it.LineTotal}
		if p, err := repos.Products.GetByID(ctx, it.ProductID); err == nil && p != nil {
			line.SKU, line.ProductName = p.SKU, p.Name
		}
		if u, err := repos.Units.GetByID(ctx, it.StockUnitID); err == nil && u != nil {
			line.UnitNumber = u.UnitNumber
		}
		lines = append(lines, line)
	}
	doc, err := s.pdf.GenerateReceiptPDF(ctx, sale, customer, lines)
	if err != nil {
		return nil, "", err
	}
	return doc, sale.ReceiptNumber + ".pdf", nil
}

// saleEntry asiento del cliente: debe el total, abona lo pagado en caja.
func saleEntry(sale *entity.Sale) *entity.PartyLedgerEntry {
	return &entity.PartyLedgerEntry{
		PartyType:     entity.PartyCustomer,
		PartyID:       sale.CustomerID,
		EntryType:     entity.PartyEntrySale,
		Debit:         sale.GrandTotal,
		Credit:        sale.AmountPaid(),
		ReferenceType: entity.ReferenceSale,
		ReferenceID:   sale.ID,
		Description:   "Venta " + sale.SaleNumber,
	}
}
