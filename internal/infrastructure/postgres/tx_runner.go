package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"

	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/pkg/logger"
	"github.com/jhoicas/rollpos-api/pkg/metrics"
)

var _ ports.TxRunner = (*TxRunner)(nil)

// TxRunnerConfig límites de cada transacción y del circuit breaker.
type TxRunnerConfig struct {
	TxTimeout   time.Duration
	LockTimeout time.Duration
	MaxFailures int
	OpenTimeout time.Duration
}

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool    *pgxpool.Pool
	cfg     TxRunnerConfig
	breaker *gobreaker.CircuitBreaker
	log     *logger.Logger
}

// NewTxRunner construye el runner con el pool. El breaker se abre tras MaxFailures
// fallos consecutivos al iniciar transacciones y publica su estado en m.
func NewTxRunner(pool *pgxpool.Pool, cfg TxRunnerConfig, log *logger.Logger, m *metrics.Metrics) *TxRunner {
	maxFailures := uint32(5)
	if cfg.MaxFailures > 0 {
		maxFailures = uint32(cfg.MaxFailures)
	}
	r := &TxRunner{pool: pool, cfg: cfg, log: log}
	r.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "postgres",
		MaxRequests: 1,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= maxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			m.SetCircuitBreakerState(name, int(to))
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker cambió de estado")
		},
	})
	return r
}

// Run inicia una transacción con tope de tiempo y lock_timeout, ejecuta fn con repos atados
// a la tx y hace Commit o Rollback. El rollback diferido cubre errores y panics.
func (r *TxRunner) Run(ctx context.Context, fn func(repos ports.Repos) error) error {
	if r.cfg.TxTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.cfg.TxTimeout)
		defer cancel()
	}

	res, err := r.breaker.Execute(func() (interface{}, error) {
		return r.pool.Begin(ctx)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return fmt.Errorf("begin transaction: %w: %w", domain.ErrPersistenceFailure, err)
		}
		return wrap("begin transaction", err)
	}
	tx := res.(pgx.Tx)
	defer func() { _ = tx.Rollback(context.WithoutCancel(ctx)) }()

	if r.cfg.LockTimeout > 0 {
		ms := fmt.Sprintf("%dms", r.cfg.LockTimeout.Milliseconds())
		if _, err := tx.Exec(ctx, `SELECT set_config('lock_timeout', $1, true)`, ms); err != nil {
			return wrap("set lock_timeout", err)
		}
	}

	if err := fn(reposFor(tx)); err != nil {
		if isTimeout(err) {
			r.log.Warn().Err(err).Dur("timeout", r.cfg.TxTimeout).Msg("transacción vencida")
		}
		if errors.Is(err, classify(err)) {
			return err
		}
		return wrap("transaction", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return wrap("commit transaction", err)
	}
	return nil
}

// Read repos sobre el pool, fuera de transacción.
func (r *TxRunner) Read() ports.Repos {
	return reposFor(r.pool)
}

// Ping verifica la conexión (health check).
func (r *TxRunner) Ping(ctx context.Context) error {
	return wrap("ping", r.pool.Ping(ctx))
}

func reposFor(q Querier) ports.Repos {
	return ports.Repos{
		Units:     NewStockUnitRepository(q),
		Movements: NewStockMovementRepository(q),
		Ledger:    NewPartyLedgerRepository(q),
		Sales:     NewSaleRepository(q),
		Orders:    NewPurchaseOrderRepository(q),
		Sequences: NewSequenceRepository(q),
		Products:  NewProductRepository(q),
		Locations: NewLocationRepository(q),
		Parties:   NewPartyRepository(q),
	}
}
