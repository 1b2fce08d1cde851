package redis

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisConfig_Mode(t *testing.T) {
	tests := []struct {
		name   string
		config RedisConfig
		want   Mode
	}{
		{
			name:   "connection string beats everything",
			config: RedisConfig{ConnectionString: "redis://cache:6379", Host: "other", Password: "secret"},
			want:   ModeConnectionString,
		},
		{
			name:   "password",
			config: RedisConfig{Host: "cache", Password: "secret"},
			want:   ModePassword,
		},
		{
			name:   "host only",
			config: RedisConfig{Host: "cache"},
			want:   ModeHost,
		},
		{
			name:   "nothing",
			config: RedisConfig{},
			want:   ModeEmbedded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.Mode())
		})
	}
}

func TestBuildOptions(t *testing.T) {
	t.Run("password with tls", func(t *testing.T) {
		options, err := buildOptions(&RedisConfig{
			Host:       "cache.example.com",
			Port:       6380,
			Password:   "secret",
			Database:   2,
			TLSEnabled: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.example.com:6380", options.Addr)
		assert.Equal(t, "secret", options.Password)
		assert.Equal(t, 2, options.DB)
		require.NotNil(t, options.TLSConfig)
		assert.Equal(t, "cache.example.com", options.TLSConfig.ServerName)
	})

	t.Run("password without tls", func(t *testing.T) {
		options, err := buildOptions(&RedisConfig{
			Host:     "cache",
			Port:     6379,
			Password: "secret",
		})
		require.NoError(t, err)
		assert.Nil(t, options.TLSConfig)
	})

	t.Run("host only ignores tls flag", func(t *testing.T) {
		options, err := buildOptions(&RedisConfig{
			Host:        "cache",
			Port:        6379,
			TLSEnabled:  true,
			DialTimeout: 2 * time.Second,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache:6379", options.Addr)
		assert.Empty(t, options.Password)
		assert.Nil(t, options.TLSConfig)
		assert.Equal(t, 2*time.Second, options.DialTimeout)
	})

	t.Run("connection string encodes its own tls and auth", func(t *testing.T) {
		options, err := buildOptions(&RedisConfig{
			ConnectionString: "rediss://:hunter2@cache.example.com:6380/1",
			TLSEnabled:       false,
		})
		require.NoError(t, err)
		assert.Equal(t, "cache.example.com:6380", options.Addr)
		assert.Equal(t, "hunter2", options.Password)
		assert.Equal(t, 1, options.DB)
		assert.NotNil(t, options.TLSConfig)
	})

	t.Run("invalid connection string", func(t *testing.T) {
		_, err := buildOptions(&RedisConfig{ConnectionString: "http://nope"})
		assert.Error(t, err)
	})

	t.Run("embedded has no network options", func(t *testing.T) {
		_, err := buildOptions(&RedisConfig{})
		assert.Error(t, err)
	})
}

func TestRedisConfig_Addr(t *testing.T) {
	assert.Equal(t, "cache:6380", (&RedisConfig{Host: "cache"}).Addr())
	assert.Equal(t, "cache:1234", (&RedisConfig{Host: "cache", Port: 1234}).Addr())
	assert.Equal(t, "[::1]:6379", (&RedisConfig{Host: "::1", Port: 6379}).Addr())
}

func TestRedisConfig_DisplayAddrAndTLS(t *testing.T) {
	tests := []struct {
		name     string
		config   RedisConfig
		wantAddr string
		wantTLS  bool
	}{
		{
			name:     "connection string",
			config:   RedisConfig{ConnectionString: "rediss://:pw@cache:6380", Port: 6380, TLSEnabled: true},
			wantAddr: "(from connection string)",
		},
		{
			name:     "password",
			config:   RedisConfig{Host: "cache", Password: "pw", TLSEnabled: true},
			wantAddr: "cache:6380",
			wantTLS:  true,
		},
		{
			name:     "host only",
			config:   RedisConfig{Host: "cache", Port: 6379, TLSEnabled: true},
			wantAddr: "cache:6379",
		},
		{
			name:     "embedded",
			config:   RedisConfig{TLSEnabled: true},
			wantAddr: "(embedded)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantAddr, tt.config.DisplayAddr())
			assert.Equal(t, tt.wantTLS, tt.config.UsesTLS())
		})
	}
}

func TestRedisConfig_StringHidesSecrets(t *testing.T) {
	config := &RedisConfig{
		Host:     "cache",
		Password: "super-secret",
		Source:   SourceEnvDiscrete,
	}
	assert.NotContains(t, config.String(), "super-secret")
	assert.Contains(t, config.String(), "env-discrete")
}
