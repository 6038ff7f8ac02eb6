package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/application/party"
	"github.com/jhoicas/rollpos-api/internal/application/purchasing"
	"github.com/jhoicas/rollpos-api/internal/application/sales"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName    string
	Sales      *sales.Service
	Inventory  *inventory.Service
	Purchasing *purchasing.Service
	Parties    *party.Service
	Metrics    *metrics.Metrics
	Ping       func(ctx context.Context) error // nil = siempre sano (store en memoria)
	JWTSecret  string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	if deps.Metrics != nil {
		app.Use(MetricsMiddleware(deps.Metrics))
		app.Get("/metrics", adaptor.HTTPHandler(deps.Metrics.Handler()))
	}
	app.Get("/health", healthHandler(deps))

	api := app.Group("/api", AuthMiddleware(deps.JWTSecret))

	// Ventas
	saleHandler := NewSaleHandler(deps.Sales)
	salesGroup := api.Group("/sales")
	salesGroup.Post("/", RequireRole(RoleAdmin, RoleVendedor), saleHandler.Create)
	salesGroup.Get("/:id", saleHandler.GetByID)
	salesGroup.Get("/:id/receipt", saleHandler.Receipt)
	salesGroup.Post("/:id/cancel", RequireRole(RoleAdmin), saleHandler.Cancel)
	salesGroup.Post("/:id/refund", RequireRole(RoleAdmin), saleHandler.Refund)

	// Inventario: lecturas para cualquier rol, mutaciones para bodega
	inventoryHandler := NewInventoryHandler(deps.Inventory)
	invGroup := api.Group("/inventory")
	invGroup.Get("/availability", inventoryHandler.Availability)
	invGroup.Get("/movements", inventoryHandler.ListMovements)
	invGroup.Get("/units/:id", inventoryHandler.GetUnit)
	invGroup.Get("/units/:id/reconcile", inventoryHandler.Reconcile)
	stockOps := RequireRole(RoleAdmin, RoleBodeguero)
	invGroup.Post("/units/:id/adjust", stockOps, inventoryHandler.Adjust)
	invGroup.Post("/units/:id/dispose", stockOps, inventoryHandler.Dispose)
	invGroup.Post("/units/:id/damage", stockOps, inventoryHandler.Damage)
	invGroup.Post("/units/:id/restore", stockOps, inventoryHandler.Restore)
	invGroup.Post("/units/:id/transfer", stockOps, inventoryHandler.Transfer)

	// Órdenes de compra
	purchaseHandler := NewPurchaseHandler(deps.Purchasing)
	poGroup := api.Group("/purchase-orders", RequireRole(RoleAdmin, RoleBodeguero))
	poGroup.Post("/", purchaseHandler.Create)
	poGroup.Get("/:id", purchaseHandler.GetByID)
	poGroup.Delete("/:id", purchaseHandler.Delete)
	poGroup.Post("/:id/order", purchaseHandler.Order)
	poGroup.Post("/:id/receive", purchaseHandler.Receive)
	poGroup.Post("/:id/close", purchaseHandler.Close)
	poGroup.Post("/:id/cancel", purchaseHandler.Cancel)

	// Terceros
	partyHandler := NewPartyHandler(deps.Parties)
	api.Get("/parties/:type/:id/ledger", partyHandler.Ledger)
}

func healthHandler(deps RouterDeps) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if deps.Ping != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()
			if err := deps.Ping(ctx); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "service": deps.AppName, "error": err.Error()})
			}
		}
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	}
}
