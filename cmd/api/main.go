package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/rollpos-api/docs"
	"github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/application/party"
	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/application/purchasing"
	"github.com/jhoicas/rollpos-api/internal/application/sales"
	infrapdf "github.com/jhoicas/rollpos-api/internal/infrastructure/pdf"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/memory"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/postgres"
	infraredis "github.com/jhoicas/rollpos-api/internal/infrastructure/redis"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/seed"
	httpRouter "github.com/jhoicas/rollpos-api/internal/interfaces/http"
	"github.com/jhoicas/rollpos-api/pkg/config"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
		App:   cfg.App.Name,
	})
	log.Info().
		Str("env", cfg.App.Env).
		Str("app", cfg.App.Name).
		Str("storage", cfg.App.StorageDriver).
		Msg("iniciando aplicación")

	taxRate, err := decimal.NewFromString(cfg.Engine.TaxRate)
	if err != nil {
		log.Fatal().Err(err).Str("value", cfg.Engine.TaxRate).Msg("ENGINE_TAX_RATE inválido")
	}

	ctx := context.Background()
	m := metrics.New(metrics.Config{Namespace: "rollpos"})
	lifecycle := inventory.NewLifecycle()

	// Almacenamiento: PostgreSQL en producción, memoria para desarrollo y demos.
	var (
		txRunner ports.TxRunner
		ping     func(context.Context) error
	)
	// Durante el arranque log.Fatal termina con os.Exit y no corre los defer de
	// pool/rdb; todavía no hay transacciones ni peticiones en curso.
	switch cfg.App.StorageDriver {
	case "memory":
		txRunner = memory.New(memory.WithTxTimeout(cfg.Engine.TxTimeout))
		log.Warn().Msg("almacenamiento en memoria: los datos se pierden al reiniciar")
	default:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a PostgreSQL")
		}
		defer pool.Close()
		if cfg.DB.AutoMigrate {
			if err := postgres.Migrate(ctx, pool); err != nil {
				log.Fatal().Err(err).Msg("migración de esquema")
			}
			log.Info().Msg("esquema aplicado")
		}
		runner := postgres.NewTxRunner(pool, postgres.TxRunnerConfig{
			TxTimeout:   cfg.Engine.TxTimeout,
			LockTimeout: cfg.Engine.LockTimeout,
			MaxFailures: cfg.Breaker.MaxFailures,
			OpenTimeout: cfg.Breaker.OpenTimeout,
		}, log.Component("postgres"), m)
		txRunner, ping = runner, runner.Ping
	}

	// Candado distribuido opcional por venta / orden de compra.
	var locker ports.Locker
	if cfg.Redis.Addr != "" {
		rdb, err := infraredis.Connect(ctx, cfg.Redis)
		if err != nil {
			log.Fatal().Err(err).Msg("conexión a Redis")
		}
		defer rdb.Close()
		locker = infraredis.NewLocker(rdb, cfg.Redis.LockTTL, cfg.Engine.LockTimeout, log.Component("redis"))
		log.Info().Str("addr", cfg.Redis.Addr).Msg("candado distribuido activo")
	}

	inventoryUC := inventory.NewService(txRunner, lifecycle, log.Component("inventory"), m, cfg.Engine.ReadRetries)
	salesUC := sales.NewService(sales.Config{
		TxRunner:       txRunner,
		Locker:         locker,
		Lifecycle:      lifecycle,
		PDF:            infrapdf.NewReceiptGenerator(cfg.App.Name),
		Logger:         log.Component("sales"),
		Metrics:        m,
		DefaultTaxRate: taxRate,
	})
	purchasingUC := purchasing.NewService(txRunner, locker, lifecycle, log.Component("purchasing"), m)
	partyUC := party.NewService(txRunner)

	if path := os.Getenv("SEED_FILE"); path != "" {
		cat, err := seed.Load(path)
		if err != nil {
			log.Fatal().Err(err).Msg("leer archivo de catálogo")
		}
		res, err := seed.Apply(ctx, txRunner, inventoryUC, cat, "seed", log.Component("seed"))
		if err != nil {
			log.Fatal().Err(err).Msg("cargar catálogo")
		}
		log.Info().Int("products", res.Products).Int("rolls", res.Rolls).Int("skipped", res.Skipped).Msg("catálogo cargado")
	}

	app := fiber.New(fiber.Config{
		AppName:      cfg.App.Name,
		ReadTimeout:  time.Second * 10,
		WriteTimeout: time.Second * 10,
		IdleTimeout:  time.Second * 60,
	})
	app.Use(recover.New())

	// Swagger UI en local: http://localhost:<port>/docs
	docs.SwaggerInfo.Host = cfg.HTTP.Addr()
	docPath := filepath.Join(os.TempDir(), cfg.App.Name+"-swagger.json")
	if err := os.WriteFile(docPath, []byte(docs.SwaggerInfo.ReadDoc()), 0o644); err != nil {
		log.Warn().Err(err).Msg("swagger deshabilitado: no se pudo escribir la especificación")
	} else {
		app.Use(swagger.New(swagger.Config{
			BasePath: "/",
			FilePath: docPath,
			Path:     "docs",
			Title:    "RollPOS API",
		}))
	}

	httpRouter.Router(app, httpRouter.RouterDeps{
		AppName:    cfg.App.Name,
		Sales:      salesUC,
		Inventory:  inventoryUC,
		Purchasing: purchasingUC,
		Parties:    partyUC,
		Metrics:    m,
		Ping:       ping,
		JWTSecret:  cfg.JWT.Secret,
	})

	go func() {
		if err := app.Listen(cfg.HTTP.Addr()); err != nil {
			log.Error().Err(err).Msg("servidor HTTP finalizado")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("señal de apagado recibida, cerrando servidor...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("apagado del servidor")
	}

	log.Info().Msg("aplicación detenida")
}
