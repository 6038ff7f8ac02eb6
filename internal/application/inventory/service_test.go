package inventory_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/internal/application/apptest"
	"github.com/jhoicas/rollpos-api/internal/application/dto"
	"github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/domain/numbering"
)

var d = apptest.D

// ──────────────────────────────────────────────────────────────────────────────
// SeedUnit / Allocate
// ──────────────────────────────────────────────────────────────────────────────

func TestSeedUnit_AbreElRolloConMovimientoIN(t *testing.T) {
	env := apptest.New(t)
	u := env.Unit(t, apptest.ProductID, "100", "5")

	assert.Equal(t, "ROLL-000001", u.UnitNumber)
	assert.True(t, numbering.ValidEAN13(u.ScanCode))
	assert.Equal(t, entity.StockUnitAvailable, u.Status)
	assert.True(t, u.RemainingQuantity.Equal(u.InitialQuantity))

	list, err := env.Inventory.ListMovements(context.Background(), dto.MovementFilterRequest{StockUnitID: u.ID})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	m := list.Items[0]
	assert.Equal(t, entity.MovementTypeIN, m.Type)
	assert.Equal(t, entity.ReferenceSeed, m.ReferenceType)
	assert.True(t, m.BeforeQuantity.IsZero())
	assert.True(t, m.AfterQuantity.Equal(d("100")))
}

func TestSeedUnit_CorteMinimoPorDefectoDelProducto(t *testing.T) {
	env := apptest.New(t)
	resp, err := env.Inventory.SeedUnit(context.Background(), apptest.UserID, inventory.AllocateInput{
		ProductID: apptest.ProductID, LocationID: apptest.LocationA, Quantity: d("3"), UnitCost: d("1"),
	})
	require.NoError(t, err)
	assert.True(t, resp.MinCutLength.Equal(d("5")))
	assert.True(t, resp.IsTail, "3 < corte mínimo 5")
	assert.Equal(t, string(entity.StockUnitReserved), resp.Status)
}

func TestSeedUnit_Validaciones(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	cases := []struct {
		name string
		in   inventory.AllocateInput
		want error
	}{
		{"cantidad cero", inventory.AllocateInput{ProductID: apptest.ProductID, LocationID: apptest.LocationA}, domain.ErrInvalidInput},
		{"producto inexistente", inventory.AllocateInput{ProductID: "x", LocationID: apptest.LocationA, Quantity: d("1")}, domain.ErrNotFound},
		{"ubicación inexistente", inventory.AllocateInput{ProductID: apptest.ProductID, LocationID: "x", Quantity: d("1")}, domain.ErrNotFound},
		{"cantidad con 4 decimales", inventory.AllocateInput{ProductID: apptest.ProductID, LocationID: apptest.LocationA, Quantity: d("10.0005")}, domain.ErrInvalidInput},
		{"costo con 5 decimales", inventory.AllocateInput{ProductID: apptest.ProductID, LocationID: apptest.LocationA, Quantity: d("10"), UnitCost: d("1.00001")}, domain.ErrInvalidInput},
		{"corte mínimo con 4 decimales", inventory.AllocateInput{ProductID: apptest.ProductID, LocationID: apptest.LocationA, Quantity: d("10"), MinCutLength: ptr(d("0.0001"))}, domain.ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := env.Inventory.SeedUnit(ctx, apptest.UserID, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Ajustes, bajas y traslados
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjustUnit_RespetaLimites(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "50", "5")

	_, err := env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("1"), Reason: "sobra"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no supera la cantidad inicial")
	_, err = env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("-51"), Reason: "falta"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput, "no queda negativo")
	_, err = env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("0"), Reason: "nada"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	resp, err := env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("-50"), Reason: "conteo físico"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StockUnitOutOfStock), resp.Status)

	resp, err = env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("20"), Reason: "reconteo"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StockUnitAvailable), resp.Status)
	assert.True(t, resp.RemainingQuantity.Equal(d("20")))

	list, err := env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{StockUnitID: u.ID, Type: entity.MovementTypeADJUST})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.True(t, list.Items[0].Quantity.Equal(d("-50")))
	assert.Equal(t, "conteo físico", list.Items[0].Reason)
}

func TestAdjustUnit_DecimalesFueraDeEscala(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "50", "5")

	_, err := env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("-1.2345"), Reason: "merma"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)
	assert.True(t, env.Remaining(t, u.ID).Equal(d("50")))

	_, err = env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("-1.2340"), Reason: "merma"})
	require.NoError(t, err)
	rep, err := env.Inventory.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, rep.Consistent)
}

func ptr[T any](v T) *T { return &v }

func TestDisposeUnit_EsTerminal(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "30", "5")

	resp, err := env.Inventory.DisposeUnit(ctx, apptest.UserID, u.ID, dto.DisposeUnitRequest{Reason: "humedad"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.StockUnitDisposed), resp.Status)
	assert.True(t, resp.RemainingQuantity.IsZero())

	_, err = env.Inventory.DisposeUnit(ctx, apptest.UserID, u.ID, dto.DisposeUnitRequest{Reason: "otra vez"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("1"), Reason: "revivir"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)
	_, err = env.Inventory.MarkDamaged(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	rep, err := env.Inventory.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, rep.Consistent)
	assert.Equal(t, 2, rep.Entries)
}

func TestTransferUnit(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "30", "5")

	resp, err := env.Inventory.TransferUnit(ctx, apptest.UserID, u.ID, dto.TransferUnitRequest{LocationID: apptest.LocationB})
	require.NoError(t, err)
	assert.Equal(t, apptest.LocationB, resp.LocationID)
	assert.True(t, resp.RemainingQuantity.Equal(d("30")))

	_, err = env.Inventory.TransferUnit(ctx, apptest.UserID, u.ID, dto.TransferUnitRequest{LocationID: apptest.LocationB})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = env.Inventory.TransferUnit(ctx, apptest.UserID, u.ID, dto.TransferUnitRequest{LocationID: "bodega-x"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	list, err := env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{StockUnitID: u.ID, Type: entity.MovementTypeTRANSFER})
	require.NoError(t, err)
	require.Len(t, list.Items, 1)
	assert.True(t, list.Items[0].Quantity.IsZero())
}

func TestMarkDamaged_YRestore(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "30", "5")

	resp, err := env.Inventory.MarkDamaged(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StockUnitDamaged), resp.Status)

	_, err = env.Inventory.MarkDamaged(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	avail, err := env.Inventory.Availability(ctx, apptest.ProductID)
	require.NoError(t, err)
	assert.Empty(t, avail.Units)

	resp, err = env.Inventory.RestoreUnit(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, string(entity.StockUnitAvailable), resp.Status)

	_, err = env.Inventory.RestoreUnit(ctx, u.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	list, err := env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{StockUnitID: u.ID})
	require.NoError(t, err)
	assert.Len(t, list.Items, 1, "los cambios de estado no escriben movimientos")
}

// ──────────────────────────────────────────────────────────────────────────────
// Consultas
// ──────────────────────────────────────────────────────────────────────────────

func TestAvailability_FIFOYCostoPromedio(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	first := env.Unit(t, apptest.ProductID, "10", "1")
	_, err := env.Inventory.SeedUnit(ctx, apptest.UserID, inventory.AllocateInput{
		ProductID: apptest.ProductID, LocationID: apptest.LocationA, Quantity: d("30"), UnitCost: d("12000"),
	})
	require.NoError(t, err)
	env.Unit(t, apptest.Product2ID, "99", "1")

	avail, err := env.Inventory.Availability(ctx, apptest.ProductID)
	require.NoError(t, err)
	require.Len(t, avail.Units, 2)
	assert.Equal(t, first.ID, avail.Units[0].ID, "el más antiguo primero")
	assert.True(t, avail.TotalRemaining.Equal(d("40")))
	// (10*8000 + 30*12000) / 40
	assert.True(t, avail.AverageCost.Equal(d("11000")), "avg %s", avail.AverageCost)
}

func TestAvailability_ProductoInexistente(t *testing.T) {
	env := apptest.New(t)
	_, err := env.Inventory.Availability(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = env.Inventory.Availability(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestGetUnit_NoExiste(t *testing.T) {
	env := apptest.New(t)
	_, err := env.Inventory.GetUnit(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListMovements_FiltrosYPaginacion(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "100", "5")
	for i := 0; i < 4; i++ {
		_, err := env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("-1"), Reason: "merma"})
		require.NoError(t, err)
	}

	list, err := env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{StockUnitID: u.ID, Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.Less(t, list.Items[0].Sequence, list.Items[1].Sequence)
	assert.Equal(t, entity.MovementTypeADJUST, list.Items[0].Type)

	future := time.Now().Add(time.Hour).UTC().Format(time.RFC3339)
	list, err = env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{From: future})
	require.NoError(t, err)
	assert.Empty(t, list.Items)

	_, err = env.Inventory.ListMovements(ctx, dto.MovementFilterRequest{From: "ayer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestReconcile_RolloConHistoria(t *testing.T) {
	env := apptest.New(t)
	ctx := context.Background()
	u := env.Unit(t, apptest.ProductID, "100", "5")
	_, err := env.Inventory.AdjustUnit(ctx, apptest.UserID, u.ID, dto.AdjustUnitRequest{Delta: d("-12.5"), Reason: "merma"})
	require.NoError(t, err)
	_, err = env.Inventory.TransferUnit(ctx, apptest.UserID, u.ID, dto.TransferUnitRequest{LocationID: apptest.LocationB})
	require.NoError(t, err)

	rep, err := env.Inventory.Reconcile(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, rep.Consistent, "issues: %v", rep.Issues)
	assert.Equal(t, 3, rep.Entries)
	assert.True(t, rep.Replayed.Equal(d("87.5")))

	_, err = env.Inventory.Reconcile(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// ──────────────────────────────────────────────────────────────────────────────
// RetryRead
// ──────────────────────────────────────────────────────────────────────────────

func TestRetryRead_ReintentaSoloTransitorios(t *testing.T) {
	calls := 0
	err := inventory.RetryRead(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return domain.ErrPersistenceFailure
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = inventory.RetryRead(context.Background(), 3, func() error {
		calls++
		return domain.ErrNotFound
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 1, calls)

	calls = 0
	err = inventory.RetryRead(context.Background(), 1, func() error {
		calls++
		return domain.ErrConcurrencyConflict
	})
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)
	assert.Equal(t, 2, calls)
}
