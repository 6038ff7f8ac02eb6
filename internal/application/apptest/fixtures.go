// Package apptest arma un entorno en memoria con catálogo y rollos para los tests de casos de uso.
package apptest

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	appinv "github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain/entity"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/memory"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

// IDs fijos del catálogo de prueba.
const (
	ProductID  = "prod-lino"
	Product2ID = "prod-seda"
	LocationA  = "loc-a"
	LocationB  = "loc-b"
	CustomerID = "cust-1"
	SupplierID = "supp-1"
	EmployeeID = "emp-1"
	UserID     = "user-1"
)

// Env dependencias compartidas por los tests.
type Env struct {
	Store     *memory.Store
	Lifecycle *appinv.Lifecycle
	Log       *logger.Logger
	Metrics   *metrics.Metrics
	Inventory *appinv.Service
}

// D atajo para decimales literales.
func D(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// New crea el store con dos productos, dos ubicaciones y un tercero de cada tipo.
func New(t *testing.T) *Env {
	t.Helper()
	store := memory.New()
	env := &Env{
		Store:     store,
		Lifecycle: appinv.NewLifecycle(),
		Log:       logger.Nop(),
		Metrics:   metrics.New(metrics.Config{Namespace: "test"}),
	}
	env.Inventory = appinv.NewService(store, env.Lifecycle, env.Log, env.Metrics, 1)

	ctx := context.Background()
	now := time.Now()
	require.NoError(t, store.Run(ctx, func(r ports.Repos) error {
		for _, p := range []*entity.Product{
			{ID: ProductID, SKU: "LINO-01", Name: "Lino crudo", Unit: "m", Price: D("12000"), MinPrice: D("10000"), MaxPrice: D("15000"), DefaultMinCut: D("5"), CreatedAt: now, UpdatedAt: now},
			{ID: Product2ID, SKU: "SEDA-01", Name: "Seda", Unit: "m", Price: D("30000"), DefaultMinCut: D("1"), CreatedAt: now, UpdatedAt: now},
		} {
			if err := r.Products.Create(ctx, p); err != nil {
				return err
			}
		}
		for _, id := range []string{LocationA, LocationB} {
			if err := r.Locations.Create(ctx, &entity.Location{ID: id, Name: id, CreatedAt: now, UpdatedAt: now}); err != nil {
				return err
			}
		}
		for _, p := range []*entity.Party{
			{ID: CustomerID, Type: entity.PartyCustomer, Name: "Cliente"},
			{ID: SupplierID, Type: entity.PartySupplier, Name: "Proveedor"},
			{ID: EmployeeID, Type: entity.PartyEmployee, Name: "Vendedor"},
		} {
			if err := r.Parties.Create(ctx, p); err != nil {
				return err
			}
		}
		return nil
	}))
	return env
}

// Unit carga un rollo de productID con la cantidad y corte mínimo dados.
func (e *Env) Unit(t *testing.T, productID, qty, minCut string) *entity.StockUnit {
	t.Helper()
	mc := D(minCut)
	resp, err := e.Inventory.SeedUnit(context.Background(), UserID, appinv.AllocateInput{
		ProductID:    productID,
		SupplierID:   SupplierID,
		LocationID:   LocationA,
		Quantity:     D(qty),
		UnitCost:     D("8000"),
		MinCutLength: &mc,
	})
	require.NoError(t, err)
	u, err := e.Store.Read().Units.GetByID(context.Background(), resp.ID)
	require.NoError(t, err)
	return u
}

// Remaining cantidad restante actual del rollo.
func (e *Env) Remaining(t *testing.T, unitID string) decimal.Decimal {
	t.Helper()
	u, err := e.Store.Read().Units.GetByID(context.Background(), unitID)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u.RemainingQuantity
}
