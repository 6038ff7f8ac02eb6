package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/memory"
)

func unit(id string) *entity.StockUnit {
	return &entity.StockUnit{
		ID: id, UnitNumber: "ROLL-" + id, ProductID: "p-1",
		InitialQuantity: decimal.NewFromInt(10), RemainingQuantity: decimal.NewFromInt(10),
		Status: entity.StockUnitAvailable,
	}
}

func TestRun_ErrorDescartaCambios(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	boom := errors.New("boom")

	err := s.Run(ctx, func(r ports.Repos) error {
		require.NoError(t, r.Units.Create(ctx, unit("u1")))
		_, err := r.Sequences.Next(ctx, entity.SequenceSale)
		require.NoError(t, err)
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, err := s.Read().Units.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Nil(t, got, "el rollo no debe persistir tras rollback")

	n, err := s.Read().Sequences.Next(ctx, entity.SequenceSale)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n, "la secuencia tampoco avanza")
}

func TestRun_PanicDescartaCambios(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	assert.Panics(t, func() {
		_ = s.Run(ctx, func(r ports.Repos) error {
			_ = r.Units.Create(ctx, unit("u1"))
			panic("fallo")
		})
	})
	got, _ := s.Read().Units.GetByID(ctx, "u1")
	assert.Nil(t, got)

	// el mutex quedó liberado
	require.NoError(t, s.Run(ctx, func(r ports.Repos) error { return r.Units.Create(ctx, unit("u2")) }))
}

func TestRun_ContextoVencido(t *testing.T) {
	s := memory.New(memory.WithTxTimeout(time.Millisecond))
	ctx := context.Background()
	err := s.Run(ctx, func(r ports.Repos) error {
		time.Sleep(5 * time.Millisecond)
		return r.Units.Create(ctx, unit("u1"))
	})
	assert.ErrorIs(t, err, domain.ErrPersistenceFailure)
	got, _ := s.Read().Units.GetByID(ctx, "u1")
	assert.Nil(t, got)
}

func TestMovements_FiltroYOrden(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	require.NoError(t, s.Run(ctx, func(r ports.Repos) error {
		for i, typ := range []string{entity.MovementTypeIN, entity.MovementTypeOUT, entity.MovementTypeOUT} {
			m := &entity.StockMovement{ID: string(rune('a' + i)), StockUnitID: "u1", Type: typ, ReferenceType: entity.ReferenceSale}
			if err := r.Movements.Create(ctx, m); err != nil {
				return err
			}
		}
		return r.Movements.Create(ctx, &entity.StockMovement{ID: "z", StockUnitID: "u2", Type: entity.MovementTypeIN})
	}))

	outs, err := s.Read().Movements.List(ctx, entity.MovementFilter{StockUnitID: "u1", Type: entity.MovementTypeOUT})
	require.NoError(t, err)
	require.Len(t, outs, 2)
	assert.Less(t, outs[0].Sequence, outs[1].Sequence)

	paged, err := s.Read().Movements.List(ctx, entity.MovementFilter{Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, paged, 2)
	assert.Equal(t, "b", paged[0].ID)
}

func TestSales_UpdateStatusProtegido(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	sale := &entity.Sale{ID: "s1", SaleNumber: "SAL-000001", Status: entity.SaleStatusCompleted, IdempotencyKey: "k1"}
	require.NoError(t, s.Run(ctx, func(r ports.Repos) error { return r.Sales.Create(ctx, sale) }))

	dup := &entity.Sale{ID: "s2", IdempotencyKey: "k1"}
	err := s.Run(ctx, func(r ports.Repos) error { return r.Sales.Create(ctx, dup) })
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	upd := sale.Clone()
	upd.Status = entity.SaleStatusCancelled
	require.NoError(t, s.Run(ctx, func(r ports.Repos) error {
		return r.Sales.UpdateStatus(ctx, upd, entity.SaleStatusCompleted)
	}))
	err = s.Run(ctx, func(r ports.Repos) error {
		return r.Sales.UpdateStatus(ctx, upd, entity.SaleStatusCompleted)
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
}
