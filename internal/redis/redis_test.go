package redis_test

import (
	"context"
	"fmt"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hookdeck/redisconnect/internal/redis"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startServer(t *testing.T) (*miniredis.Miniredis, int) {
	t.Helper()
	mr := miniredis.RunT(t)
	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)
	return mr, port
}

func TestNewClient_ConnectionString(t *testing.T) {
	t.Parallel()

	mr, _ := startServer(t)
	ctx := context.Background()

	client, err := redis.NewClient(ctx, &redis.RedisConfig{
		ConnectionString: fmt.Sprintf("redis://%s/0", mr.Addr()),
		Host:             "ignored.invalid",
		TLSEnabled:       true,
	})
	require.NoError(t, err)
	defer client.Close()

	require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNewClient_Password(t *testing.T) {
	t.Parallel()

	mr, port := startServer(t)
	mr.RequireAuth("secret")
	ctx := context.Background()

	client, err := redis.NewClient(ctx, &redis.RedisConfig{
		Host:     mr.Host(),
		Port:     port,
		Password: "secret",
	})
	require.NoError(t, err)
	defer client.Close()
	assert.False(t, redis.IsEmbedded(client))

	_, err = redis.NewClient(ctx, &redis.RedisConfig{
		Host:     mr.Host(),
		Port:     port,
		Password: "wrong",
	})
	assert.Error(t, err)
}

func TestNewClient_HostOnly(t *testing.T) {
	t.Parallel()

	mr, port := startServer(t)
	ctx := context.Background()

	// TLS is never used on the host-only branch, so a plain server works.
	client, err := redis.NewClient(ctx, &redis.RedisConfig{
		Host:       mr.Host(),
		Port:       port,
		TLSEnabled: true,
	})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(ctx).Err())
}

func TestNewClient_Embedded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	client, err := redis.NewClient(ctx, &redis.RedisConfig{Source: redis.SourceNone})
	require.NoError(t, err)
	assert.True(t, redis.IsEmbedded(client))

	require.NoError(t, client.Set(ctx, "cart:1", "[]", 0).Err())
	val, err := client.Get(ctx, "cart:1").Result()
	require.NoError(t, err)
	assert.Equal(t, "[]", val)

	require.NoError(t, client.Close())
	assert.Error(t, client.Ping(ctx).Err())
}

func TestNewClient_PingFailure(t *testing.T) {
	t.Parallel()

	mr, port := startServer(t)
	host := mr.Host()
	mr.Close()

	_, err := redis.NewClient(context.Background(), &redis.RedisConfig{
		Host: host,
		Port: port,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ping failed")
}
