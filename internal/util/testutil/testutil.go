package testutil

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hookdeck/redisconnect/internal/logging"
	internalredis "github.com/hookdeck/redisconnect/internal/redis"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

func Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
}

// CreateTestRedisServer starts a miniredis server that is closed when the
// test ends.
func CreateTestRedisServer(t *testing.T) *miniredis.Miniredis {
	mr := miniredis.RunT(t)

	t.Cleanup(func() {
		mr.Close()
	})

	return mr
}

// CreateTestRedisConfig returns host-only parameters pointing at a fresh
// miniredis server.
func CreateTestRedisConfig(t *testing.T) *internalredis.RedisConfig {
	mr := CreateTestRedisServer(t)
	port, _ := strconv.Atoi(mr.Port())

	return &internalredis.RedisConfig{
		Host:   mr.Host(),
		Port:   port,
		Source: internalredis.SourceEnvDiscrete,
	}
}

// RedisURL is the connection string for mr.
func RedisURL(mr *miniredis.Miniredis) string {
	return fmt.Sprintf("redis://%s/0", mr.Addr())
}

func CreateTestLogger(t *testing.T) *logging.Logger {
	zapLogger := zaptest.NewLogger(t)
	logger := otelzap.New(zapLogger,
		otelzap.WithMinLevel(zap.InfoLevel),
	)
	return &logging.Logger{Logger: logger}
}

// CreateObservedLogger records every entry at debug level and above so
// tests can assert on what was logged.
func CreateObservedLogger(t *testing.T) (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	logger := otelzap.New(zap.New(core),
		otelzap.WithMinLevel(zap.DebugLevel),
	)
	return &logging.Logger{Logger: logger}, logs
}
