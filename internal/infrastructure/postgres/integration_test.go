package postgres_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/internal/application/dto"
	appinv "github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/application/sales"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/rollpos-api/pkg/config"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

// Requiere una base vacía o dedicada: aplica el esquema y crea datos con sufijo único.
func TestPostgres_VentaConcurrenteYAnulacion(t *testing.T) {
	databaseURL := os.Getenv("ROLLPOS_TEST_DATABASE_URL")
	if databaseURL == "" {
		t.Skip("set ROLLPOS_TEST_DATABASE_URL to run postgres integration test")
	}
	ctx := context.Background()
	pool, err := postgres.NewPool(ctx, config.DBConfig{DatabaseURL: databaseURL})
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, postgres.Migrate(ctx, pool))

	log := logger.Nop()
	m := metrics.New(metrics.Config{Namespace: "it"})
	runner := postgres.NewTxRunner(pool, postgres.TxRunnerConfig{
		TxTimeout: 5 * time.Second, LockTimeout: 2 * time.Second, MaxFailures: 5, OpenTimeout: time.Second,
	}, log, m)

	stamp := time.Now().UnixNano()
	productID := fmt.Sprintf("it-prod-%d", stamp)
	locationID := fmt.Sprintf("it-loc-%d", stamp)
	now := time.Now()
	require.NoError(t, runner.Run(ctx, func(r ports.Repos) error {
		if err := r.Products.Create(ctx, &entity.Product{
			ID: productID, SKU: productID, Name: "Lino IT", Unit: "m", Price: decimal.NewFromInt(12000),
			DefaultMinCut: decimal.NewFromInt(5), CreatedAt: now, UpdatedAt: now,
		}); err != nil {
			return err
		}
		return r.Locations.Create(ctx, &entity.Location{ID: locationID, Name: "IT", CreatedAt: now, UpdatedAt: now})
	}))

	lifecycle := appinv.NewLifecycle()
	inv := appinv.NewService(runner, lifecycle, log, m, 2)
	unit, err := inv.SeedUnit(ctx, "it", appinv.AllocateInput{
		ProductID: productID, LocationID: locationID, Quantity: decimal.NewFromInt(100), UnitCost: decimal.NewFromInt(8000),
	})
	require.NoError(t, err)

	svc := sales.NewService(sales.Config{TxRunner: runner, Lifecycle: lifecycle, Logger: log, Metrics: m})
	req := dto.CreateSaleRequest{
		Items: []dto.SaleItemRequest{{
			ProductID: productID, StockUnitID: unit.ID, Quantity: decimal.NewFromInt(60), UnitPrice: decimal.NewFromInt(12000),
		}},
		PaymentMethod:  entity.PaymentCash,
		AmountReceived: decimal.NewFromInt(10_000_000),
	}

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		winners []*dto.SaleResponse
		losers  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sale, err := svc.CreateSale(ctx, "it", req)
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				winners = append(winners, sale)
			case errors.Is(err, domain.ErrInsufficientStock):
				losers++
			default:
				t.Errorf("error inesperado: %v", err)
			}
		}()
	}
	wg.Wait()
	require.Len(t, winners, 1)
	assert.Equal(t, 1, losers)

	got, err := inv.GetUnit(ctx, unit.ID)
	require.NoError(t, err)
	assert.True(t, got.RemainingQuantity.Equal(decimal.NewFromInt(40)))

	_, err = svc.CancelSale(ctx, "it", winners[0].ID, dto.CancelSaleRequest{Reason: "prueba"})
	require.NoError(t, err)
	_, err = svc.CancelSale(ctx, "it", winners[0].ID, dto.CancelSaleRequest{Reason: "prueba"})
	assert.ErrorIs(t, err, domain.ErrInvalidStateTransition)

	rep, err := inv.Reconcile(ctx, unit.ID)
	require.NoError(t, err)
	assert.True(t, rep.Consistent, "issues: %v", rep.Issues)
	assert.True(t, rep.Stored.Equal(decimal.NewFromInt(100)))
}
