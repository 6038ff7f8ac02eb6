// Package redis provee el candado distribuido por entidad (venta, orden de compra) sobre Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bsm/redislock"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jhoicas/rollpos-api/internal/application/ports"
	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/pkg/config"
	"github.com/jhoicas/rollpos-api/pkg/logger"
)

var _ ports.Locker = (*Locker)(nil)

const keyPrefix = "rollpos:lock:"

// Connect abre el cliente y verifica la conexión.
func Connect(ctx context.Context, cfg config.RedisConfig) (*goredis.Client, error) {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return rdb, nil
}

// Locker candado con TTL: si el proceso muere, la llave expira sola.
// Las filas bloqueadas en la base siguen siendo la garantía final.
type Locker struct {
	client *redislock.Client
	ttl    time.Duration
	wait   time.Duration
	log    *logger.Logger
}

// NewLocker ttl vida máxima del candado; wait cuánto se espera por uno ocupado.
func NewLocker(rdb redislock.RedisClient, ttl, wait time.Duration, log *logger.Logger) *Locker {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	if wait <= 0 {
		wait = 2 * time.Second
	}
	return &Locker{client: redislock.New(rdb), ttl: ttl, wait: wait, log: log}
}

// Lock obtiene la llave reintentando hasta wait. Ocupada -> domain.ErrConcurrencyConflict;
// Redis caído -> domain.ErrPersistenceFailure.
func (l *Locker) Lock(ctx context.Context, key string) (func(), error) {
	obtainCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	lock, err := l.client.Obtain(obtainCtx, keyPrefix+key, l.ttl, &redislock.Options{
		RetryStrategy: redislock.LinearBackoff(25 * time.Millisecond),
	})
	switch {
	case errors.Is(err, redislock.ErrNotObtained), errors.Is(err, context.DeadlineExceeded):
		return nil, fmt.Errorf("%w: %s ocupado", domain.ErrConcurrencyConflict, key)
	case err != nil:
		l.log.Error().Err(err).Str("key", key).Msg("no se pudo obtener candado en redis")
		return nil, fmt.Errorf("%w: redis: %w", domain.ErrPersistenceFailure, err)
	}
	return func() {
		if err := lock.Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
			l.log.Warn().Err(err).Str("key", key).Msg("no se pudo liberar candado")
		}
	}, nil
}
