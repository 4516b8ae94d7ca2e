//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/erp/posting/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func newRedisStore(t *testing.T) *RedisIdempotencyStore {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
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
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	store, err := NewRedisIdempotencyStore(ctx, config.RedisConfig{Enabled: true, Host: host, Port: port.Int()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRedisIdempotencyStore(t *testing.T) {
	store := newRedisStore(t)
	ctx := context.Background()

	claimed, err := store.MarkProcessed(ctx, "payment:abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.MarkProcessed(ctx, "payment:abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, claimed)

	held, err := store.IsProcessed(ctx, "payment:abc")
	require.NoError(t, err)
	assert.True(t, held)

	require.NoError(t, store.Release(ctx, "payment:abc"))
	held, err = store.IsProcessed(ctx, "payment:abc")
	require.NoError(t, err)
	assert.False(t, held)

	ttl, err := func() (time.Duration, error) {
		_, _ = store.MarkProcessed(ctx, "payment:ttl", 30*time.Second)
		return store.client.TTL(ctx, DefaultKeyPrefix+"payment:ttl").Result()
	}()
	require.NoError(t, err)
	assert.InDelta(t, 30, ttl.Seconds(), 2)
}
