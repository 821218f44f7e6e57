//go:build integration

package ratelimit

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func setupRedis(t testing.TB) *redis.Client {
	t.Helper()

	ctx := context.Background()

	redisCont, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}
	t.Cleanup(func() {
		if err := redisCont.Terminate(ctx); err != nil {
			t.Fatalf("Failed to terminate redis container: %v", err)
		}
	})

	host, err := redisCont.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis container host: %v", err)
	}
	port, err := redisCont.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get redis container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%d", host, port.Int())})
	t.Cleanup(func() {
		client.Close()
	})

	return client
}

func TestRedisLimiter_Allow(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("counts and rejects", func(t *testing.T) {
		l := NewRedisLimiter(client, 2, time.Minute)

		res, err := l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 1, res.Remaining)

		res, err = l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, 0, res.Remaining)

		res, err = l.Allow(ctx, "10.0.0.1")
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Greater(t, res.RetryAfter, time.Duration(0))
		assert.LessOrEqual(t, res.RetryAfter, time.Minute)
	})

	t.Run("window expires", func(t *testing.T) {
		l := NewRedisLimiter(client, 1, 500*time.Millisecond)

		res, err := l.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, res.Allowed)

		res, err = l.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.False(t, res.Allowed)

		time.Sleep(time.Second)

		res, err = l.Allow(ctx, "10.0.0.2")
		require.NoError(t, err)
		assert.True(t, res.Allowed)
	})

	t.Run("key gets expiry", func(t *testing.T) {
		l := NewRedisLimiter(client, 10, time.Minute)

		_, err := l.Allow(ctx, "10.0.0.3")
		require.NoError(t, err)

		ttl, err := client.PTTL(ctx, defaultKeyPrefix+"10.0.0.3").Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
	})
}
