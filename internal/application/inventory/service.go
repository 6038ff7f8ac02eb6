package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	domaininv "github.com/jhoicas/rollpos-api/internal/domain/inventory"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

// Service casos de uso de inventario: ajustes manuales, bajas, traslados y consultas del ledger.
type Service struct {
	tx          ports.TxRunner
	lifecycle   *Lifecycle
	log         *logger.Logger
	metrics     *metrics.Metrics
	readRetries int
}

// NewService construye el caso de uso. readRetries acota los reintentos de consultas.
func NewService(tx ports.TxRunner, lifecycle *Lifecycle, log *logger.Logger, m *metrics.Metrics, readRetries int) *Service {
	return &Service{tx: tx, lifecycle: lifecycle, log: log, metrics: m, readRetries: readRetries}
}

// Availability rollos vendibles del producto (FIFO), total y costo promedio ponderado.
// Reintenta con backoff exponencial ante fallas transitorias.
func (s *Service) Availability(ctx context.Context, productID string) (*dto.AvailabilityResponse, error) {
	if productID == "" {
		return nil, fmt.Errorf("%w: product_id requerido", domain.ErrInvalidInput)
	}
	var units []*entity.StockUnit
	err := s.retryRead(ctx, func() error {
		repos := s.tx.Read()
		product, err := repos.Products.GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return fmt.Errorf("%w: producto %s", domain.ErrNotFound, productID)
		}
		units, err = repos.Units.ListEligibleByProduct(ctx, productID)
		return err
	})
	if err != nil {
		return nil, err
	}
	total, avg := domaininv.WeightedAverageCost(units)
	out := &dto.AvailabilityResponse{
		ProductID:      productID,
		TotalRemaining: total,
		AverageCost:    avg,
		Units:          make([]dto.StockUnitResponse, 0, len(units)),
	}
	for _, u := range units {
		out.Units = append(out.Units, ToStockUnitResponse(u))
	}
	return out, nil
}

// GetUnit obtiene un rollo.
func (s *Service) GetUnit(ctx context.Context, unitID string) (*dto.StockUnitResponse, error) {
	u, err := s.tx.Read().Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: rollo %s", domain.ErrNotFound, unitID)
	}
	resp := ToStockUnitResponse(u)
	return &resp, nil
}

// AdjustUnit ajuste manual de cantidad (ADJUST).
func (s *Service) AdjustUnit(ctx context.Context, userID, unitID string, in dto.AdjustUnitRequest) (*dto.StockUnitResponse, error) {
	ref := Ref{Type: entity.ReferenceAdjustment, ID: unitID, Reason: in.Reason, By: userID}
	return s.write(ctx, "adjust_unit", entity.MovementTypeADJUST, func(r ports.Repos) (*entity.StockUnit, error) {
		return s.lifecycle.Adjust(ctx, r, unitID, in.Delta, ref)
	})
}

// DisposeUnit baja definitiva del rollo (DISPOSAL).
func (s *Service) DisposeUnit(ctx context.Context, userID, unitID string, in dto.DisposeUnitRequest) (*dto.StockUnitResponse, error) {
	ref := Ref{Type: entity.ReferenceAdjustment, ID: unitID, Reason: in.Reason, By: userID}
	return s.write(ctx, "dispose_unit", entity.MovementTypeDISPOSAL, func(r ports.Repos) (*entity.StockUnit, error) {
		return s.lifecycle.Dispose(ctx, r, unitID, ref)
	})
}

// TransferUnit cambia la ubicación del rollo (TRANSFER, cantidad 0).
func (s *Service) TransferUnit(ctx context.Context, userID, unitID string, in dto.TransferUnitRequest) (*dto.StockUnitResponse, error) {
	ref := Ref{Type: entity.ReferenceTransfer, ID: in.LocationID, Reason: "Traslado de ubicación", By: userID}
	return s.write(ctx, "transfer_unit", entity.MovementTypeTRANSFER, func(r ports.Repos) (*entity.StockUnit, error) {
		return s.lifecycle.Transfer(ctx, r, unitID, in.LocationID, ref)
	})
}

// MarkDamaged marca el rollo como dañado.
func (s *Service) MarkDamaged(ctx context.Context, unitID string) (*dto.StockUnitResponse, error) {
	return s.write(ctx, "mark_damaged", "", func(r ports.Repos) (*entity.StockUnit, error) {
		return s.lifecycle.MarkDamaged(ctx, r, unitID)
	})
}

// RestoreUnit saca el rollo de Damaged.
func (s *Service) RestoreUnit(ctx context.Context, unitID string) (*dto.StockUnitResponse, error) {
	return s.write(ctx, "restore_unit", "", func(r ports.Repos) (*entity.StockUnit, error) {
		return s.lifecycle.Restore(ctx, r, unitID)
	})
}

// SeedUnit carga un rollo inicial (referencia SEED), usado por cmd/seed.
func (s *Service) SeedUnit(ctx context.Context, userID string, in AllocateInput) (*dto.StockUnitResponse, error) {
	ref := Ref{Type: entity.ReferenceSeed, Reason: "Carga inicial", By: userID}
	return s.write(ctx, "seed_unit", entity.MovementTypeIN, func(r ports.Repos) (*entity.StockUnit, error) {
		return s.lifecycle.Allocate(ctx, r, in, ref)
	})
}

// ListMovements consulta el ledger con filtros, en orden de creación.
func (s *Service) ListMovements(ctx context.Context, in dto.MovementFilterRequest) (*dto.MovementListResponse, error) {
	filter := entity.MovementFilter{
		StockUnitID:   in.StockUnitID,
		ProductID:     in.ProductID,
		Type:          in.Type,
		ReferenceType: in.ReferenceType,
		ReferenceID:   in.ReferenceID,
		Limit:         in.Limit,
		Offset:        in.Offset,
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	var err error
	if filter.From, err = parseTime(in.From); err != nil {
		return nil, err
	}
	if filter.To, err = parseTime(in.To); err != nil {
		return nil, err
	}
	var list []*entity.StockMovement
	err = s.retryRead(ctx, func() error {
		var err error
		list, err = s.tx.Read().Movements.List(ctx, filter)
		return err
	})
	if err != nil {
		return nil, err
	}
	items := make([]dto.StockMovementResponse, 0, len(list))
	for _, m := range list {
		items = append(items, ToStockMovementResponse(m))
	}
	return &dto.MovementListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: filter.Limit, Offset: filter.Offset},
	}, nil
}

// Reconcile reproduce el ledger del rollo y lo compara con la cantidad guardada.
func (s *Service) Reconcile(ctx context.Context, unitID string) (*dto.ReconciliationResponse, error) {
	repos := s.tx.Read()
	u, err := repos.Units.GetByID(ctx, unitID)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("%w: rollo %s", domain.ErrNotFound, unitID)
	}
	movs, err := repos.Movements.ListByUnit(ctx, unitID)
	if err != nil {
		return nil, err
	}
	rep := domaininv.Reconcile(u, movs)
	if !rep.Consistent {
		s.log.Warn().Str("unit_id", unitID).Strs("issues", rep.Issues).Msg("ledger de rollo descuadrado")
	}
	return &dto.ReconciliationResponse{
		StockUnitID: rep.StockUnitID,
		Initial:     rep.Initial,
		Stored:      rep.Stored,
		Replayed:    rep.Replayed,
		Entries:     rep.Entries,
		Consistent:  rep.Consistent,
		Issues:      rep.Issues,
	}, nil
}

// write ejecuta una mutación de un rollo en su propia transacción y registra métricas.
func (s *Service) write(ctx context.Context, op, movementType string, fn func(r ports.Repos) (*entity.StockUnit, error)) (*dto.StockUnitResponse, error) {
	var unit *entity.StockUnit
	start := time.Now()
	err := s.tx.Run(ctx, func(r ports.Repos) error {
		var err error
		unit, err = fn(r)
		return err
	})
	s.metrics.RecordTx(op, err, errors.Is(err, domain.ErrConcurrencyConflict), time.Since(start))
	if err != nil {
		return nil, err
	}
	if movementType != "" {
		s.metrics.RecordMovement(movementType)
	}
	s.log.Info().Str("op", op).Str("unit_id", unit.ID).Str("status", string(unit.Status)).
		Str("remaining", unit.RemainingQuantity.String()).Msg("rollo actualizado")
	resp := ToStockUnitResponse(unit)
	return &resp, nil
}

// retryRead reintenta lecturas solo ante errores transitorios.
func (s *Service) retryRead(ctx context.Context, op func() error) error {
	return RetryRead(ctx, s.readRetries, op)
}

// RetryRead backoff exponencial acotado para consultas; los errores no transitorios salen al primer intento.
func RetryRead(ctx context.Context, retries int, op func() error) error {
	if retries < 0 {
		retries = 0
	}
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 50 * time.Millisecond
	eb.MaxInterval = time.Second
	eb.MaxElapsedTime = 5 * time.Second
	b := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
	return backoff.Retry(func() error {
		err := op()
		if err != nil && !domain.IsRetryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}, b)
}

func parseTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("%w: fecha %q", domain.ErrInvalidInput, s)
	}
	return &t, nil
}
