package redis_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/rollpos-api/internal/domain"
	"github.com/jhoicas/rollpos-api/internal/infrastructure/redis"
	"github.com/jhoicas/rollpos-api/pkg/config"
	"github.com/jhoicas/rollpos-api/pkg/logger"
)

func TestLocker_ExclusionMutua(t *testing.T) {
	addr := os.Getenv("ROLLPOS_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set ROLLPOS_TEST_REDIS_ADDR to run redis integration test")
	}
	ctx := context.Background()
	rdb, err := redis.Connect(ctx, config.RedisConfig{Addr: addr})
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	locker := redis.NewLocker(rdb, 5*time.Second, 100*time.Millisecond, logger.Nop())
	key := fmt.Sprintf("sale:%d", time.Now().UnixNano())

	unlock, err := locker.Lock(ctx, key)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, key)
	assert.ErrorIs(t, err, domain.ErrConcurrencyConflict)

	unlock()
	unlock2, err := locker.Lock(ctx, key)
	require.NoError(t, err)
	unlock2()
}

func TestConnect_DireccionInvalida(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	_, err := redis.Connect(ctx, config.RedisConfig{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
