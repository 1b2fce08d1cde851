package main

import (
	"fmt"
	"strconv"

	"github.com/hookdeck/redisconnect/internal/config"
	"github.com/urfave/cli/v3"
)

// ConfigLoader handles configuration loading and CLI overrides
type ConfigLoader struct{}

// NewConfigLoader creates a new config loader
func NewConfigLoader() *ConfigLoader {
	return &ConfigLoader{}
}

// LoadConfig loads and validates configuration from files/env and applies CLI overrides
func (cl *ConfigLoader) LoadConfig(c *cli.Command) (*config.Config, error) {
	cfg, err := config.Parse(config.Flags{
		Config: c.String("config"),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cl.applyOverrides(c, cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyOverrides applies CLI flag overrides to the configuration
func (cl *ConfigLoader) applyOverrides(c *cli.Command, cfg *config.Config) error {
	if level := c.String("log-level"); level != "" {
		cfg.LogLevel = level
	}

	if connStr := c.String("redis-connection-string"); connStr != "" {
		cfg.Redis.ConnectionString = connStr
	}

	if host := c.String("redis-host"); host != "" {
		cfg.Redis.Host = host
	}

	if portStr := c.String("redis-port"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return fmt.Errorf("invalid redis-port: %w", err)
		}
		cfg.Redis.Port = port
	}

	if password := c.String("redis-password"); password != "" {
		cfg.Redis.Password = password
	}

	if tls := c.String("redis-tls"); tls != "" {
		cfg.Redis.TLSEnabled = tls
	}

	if c.IsSet("port") {
		cfg.Health.Port = int(c.Int("port"))
	}

	return nil
}
