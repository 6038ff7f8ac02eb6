// seed carga productos, ubicaciones, terceros y rollos de apertura en PostgreSQL.
//
// Uso: go run ./cmd/seed [ruta/catalogo.yaml]
// Por defecto busca catalog.yaml en el directorio actual. Aplica el esquema antes de cargar.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jhoicas/rollpos-api/internal/application/inventory"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/postgres"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/seed"
	"github.com/jhoicas/rollpos-api/pkg/config"
	"github.com/jhoicas/rollpos-api/pkg/logger"
)

func main() {
	path := "catalog.yaml"
	if len(os.Args) > 1 {
		path = os.Args[1]
	}
	if err := run(context.Background(), path); err != nil {
		fmt.Fprintf(os.Stderr, "seed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, path string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	cat, err := seed.Load(path)
	if err != nil {
		return err
	}
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := postgres.Migrate(ctx, pool); err != nil {
		return err
	}

	runner := postgres.NewTxRunner(pool, postgres.TxRunnerConfig{
		TxTimeout:   cfg.Engine.TxTimeout,
		LockTimeout: cfg.Engine.LockTimeout,
	}, log, nil)
	inv := inventory.NewService(runner, inventory.NewLifecycle(), log, nil, cfg.Engine.ReadRetries)

	res, err := seed.Apply(ctx, runner, inv, cat, "seed", log)
	if err != nil {
		return err
	}
	log.Info().
		Int("products", res.Products).
		Int("locations", res.Locations).
		Int("parties", res.Parties).
		Int("rolls", res.Rolls).
		Int("skipped", res.Skipped).
		Msg("catálogo cargado")
	return nil
}
