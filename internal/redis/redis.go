package redis

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	r "github.com/redis/go-redis/v9"
)

type Cmdable = r.Cmdable

type Client interface {
	Cmdable
	Close() error
}

// NewClient builds a client for config, instruments it for tracing and
// verifies it with a PING. On any failure the client is closed and an error
// is returned; nothing is retried.
func NewClient(ctx context.Context, config *RedisConfig) (Client, error) {
	var (
		client Client
		err    error
	)
	if config.Mode() == ModeEmbedded {
		client, err = newEmbeddedClient(config)
	} else {
		client, err = newNetworkClient(config)
	}
	if err != nil {
		return nil, err
	}

	if err := instrumentOpenTelemetry(client); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis tracing instrumentation failed: %w", err)
	}

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis %s client ping failed: %w", config.Mode(), err)
	}

	return client, nil
}

func newNetworkClient(config *RedisConfig) (Client, error) {
	options, err := buildOptions(config)
	if err != nil {
		return nil, err
	}
	return r.NewClient(options), nil
}

// buildOptions maps a non-embedded config onto go-redis options.
func buildOptions(config *RedisConfig) (*r.Options, error) {
	var options *r.Options

	switch config.Mode() {
	case ModeConnectionString:
		parsed, err := r.ParseURL(config.ConnectionString)
		if err != nil {
			return nil, fmt.Errorf("parse redis connection string: %w", err)
		}
		options = parsed

	case ModePassword:
		options = &r.Options{
			Addr:     config.Addr(),
			Password: config.Password,
			DB:       config.Database,
		}
		if config.TLSEnabled {
			options.TLSConfig = &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: config.Host,
			}
		}

	case ModeHost:
		// A bare host never gets TLS or auth.
		options = &r.Options{
			Addr: config.Addr(),
			DB:   config.Database,
		}

	default:
		return nil, fmt.Errorf("redis mode %s has no network options", config.Mode())
	}

	if config.DialTimeout > 0 {
		options.DialTimeout = config.DialTimeout
	}
	return options, nil
}

func instrumentOpenTelemetry(client Client) error {
	// OpenTelemetry instrumentation requires a concrete client type for type assertions
	switch c := client.(type) {
	case *r.Client:
		return redisotel.InstrumentTracing(c)
	case *embeddedClient:
		return redisotel.InstrumentTracing(c.Client)
	}
	return nil
}
