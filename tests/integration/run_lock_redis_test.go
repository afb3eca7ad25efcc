package integration

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"

	"github.com/erp/erpsync/internal/domain/integration"
	"github.com/erp/erpsync/internal/infrastructure/cache"
	"github.com/erp/erpsync/internal/infrastructure/config"
)

func startRedis(t *testing.T) config.RedisConfig {
	t.Helper()
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "Failed to start Redis container")
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: Failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)
	return config.RedisConfig{Host: host, Port: port.Int()}
}

func TestRedisRunLock(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	client, err := cache.NewRedisClient(startRedis(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	lock := cache.NewRedisRunLock(client, zap.NewNop())
	ctx := context.Background()

	t.Run("second acquire fails until release", func(t *testing.T) {
		release, err := lock.Acquire(ctx, "erpsync:lock:a:INBOUND", time.Minute)
		require.NoError(t, err)

		_, err = lock.Acquire(ctx, "erpsync:lock:a:INBOUND", time.Minute)
		assert.ErrorIs(t, err, integration.ErrSyncInProgress)

		release()
		again, err := lock.Acquire(ctx, "erpsync:lock:a:INBOUND", time.Minute)
		require.NoError(t, err)
		again()
	})

	t.Run("expired lock can be taken and stale release keeps it", func(t *testing.T) {
		stale, err := lock.Acquire(ctx, "erpsync:lock:b:INBOUND", 100*time.Millisecond)
		require.NoError(t, err)
		time.Sleep(300 * time.Millisecond)

		fresh, err := lock.Acquire(ctx, "erpsync:lock:b:INBOUND", time.Minute)
		require.NoError(t, err)
		stale()

		_, err = lock.Acquire(ctx, "erpsync:lock:b:INBOUND", time.Minute)
		assert.ErrorIs(t, err, integration.ErrSyncInProgress)
		fresh()
	})

	t.Run("one winner among concurrent callers", func(t *testing.T) {
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if _, err := lock.Acquire(ctx, "erpsync:lock:c:OUTBOUND", time.Minute); err == nil {
					wins.Add(1)
				}
			}()
		}
		wg.Wait()
		assert.EqualValues(t, 1, wins.Load())
	})
}
