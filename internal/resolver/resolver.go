// Package resolver decides where the Redis connection parameters come from
// and produces a verified client.
//
// Sources are tried in a fixed order and the first one that yields
// parameters wins:
//
//  1. a connection string, from the secret vault and then REDIS_CONNECTIONSTRING
//  2. the platform service binding in VCAP_SERVICES
//  3. the discrete REDIS_HOST / REDIS_PORT / REDIS_PASSWORD variables
//
// When nothing matches, the client falls back to an embedded in-process store.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hookdeck/redisconnect/internal/logging"
	"github.com/hookdeck/redisconnect/internal/redis"
	"github.com/hookdeck/redisconnect/internal/secrets"
	"github.com/hookdeck/redisconnect/internal/vcap"
	"go.uber.org/zap"
)

var ErrConnectionFailed = errors.New("redis connection failed")

// Environment is the explicit set of inputs the resolver works from,
// captured once at startup.
type Environment struct {
	ConnectionString string
	Host             string
	Port             int
	Password         string
	Database         int
	TLSEnabled       string
	DialTimeout      time.Duration

	VCAPServices string
	// BindingLabel is the VCAP_SERVICES key holding the Redis binding.
	BindingLabel string

	// SecretName is the vault key holding a full connection string.
	SecretName string
}

type strategy struct {
	name    string
	resolve func(ctx context.Context) (*redis.RedisConfig, error)
}

type Resolver struct {
	env        Environment
	secrets    secrets.Provider
	logger     *logging.Logger
	strategies []strategy
}

func New(env Environment, provider secrets.Provider, logger *logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	if env.BindingLabel == "" {
		env.BindingLabel = "p-redis"
	}
	r := &Resolver{
		env:     env,
		secrets: provider,
		logger:  logger,
	}
	r.strategies = []strategy{
		{name: "connection-string", resolve: r.fromConnectionString},
		{name: "platform-binding", resolve: r.fromPlatformBinding},
		{name: "env-discrete", resolve: r.fromDiscreteEnv},
	}
	return r
}

// Connect resolves parameters with a new Resolver and connects.
func Connect(ctx context.Context, env Environment, provider secrets.Provider, logger *logging.Logger) (redis.Client, *redis.RedisConfig, error) {
	return New(env, provider, logger).Connect(ctx)
}

// Resolve runs the strategies in order and returns the first result. It
// never returns nil parameters without an error; when no source matches the
// result has SourceNone and connects to the embedded store.
func (r *Resolver) Resolve(ctx context.Context) (*redis.RedisConfig, error) {
	logger := r.logger.Ctx(ctx)

	tlsValue := r.env.TLSEnabled
	if tlsValue == "" {
		tlsValue = "true"
	}
	tlsEnabled, err := ParseBool(tlsValue)
	if err != nil {
		return nil, fmt.Errorf("REDIS_TLS_ENABLED: %w", err)
	}
	logger.Info("redis tls setting", zap.Bool("tls_enabled", tlsEnabled))

	for _, s := range r.strategies {
		config, err := s.resolve(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", s.name, err)
		}
		if config == nil {
			logger.Debug("redis connection source not configured", zap.String("strategy", s.name))
			continue
		}
		r.complete(config, tlsEnabled)
		logger.Info("resolved redis connection parameters",
			zap.String("source", string(config.Source)),
			zap.String("mode", config.Mode().String()))
		return config, nil
	}

	config := &redis.RedisConfig{Source: redis.SourceNone}
	r.complete(config, tlsEnabled)
	logger.Info("no redis connection source configured, using embedded store")
	return config, nil
}

func (r *Resolver) complete(config *redis.RedisConfig, tlsEnabled bool) {
	if config.Port == 0 {
		config.Port = redis.DefaultPort
	}
	config.Database = r.env.Database
	config.TLSEnabled = tlsEnabled
	config.DialTimeout = r.env.DialTimeout
}

// Connect resolves parameters, builds the client and pings it. Failures are
// logged and returned wrapped in ErrConnectionFailed; whether to terminate is
// up to the caller.
func (r *Resolver) Connect(ctx context.Context) (redis.Client, *redis.RedisConfig, error) {
	logger := r.logger.Ctx(ctx)

	config, err := r.Resolve(ctx)
	if err != nil {
		logger.Error("failed to resolve redis connection parameters", zap.Error(err))
		return nil, nil, err
	}

	logger.Info(initiatingMessage(config.Mode()),
		zap.String("source", string(config.Source)),
		zap.String("addr", config.DisplayAddr()),
		zap.Bool("tls_enabled", config.UsesTLS()))

	client, err := redis.NewClient(ctx, config)
	if err != nil {
		logger.Error("error for redis connection", zap.Error(err))
		return nil, config, fmt.Errorf("%w: %w", ErrConnectionFailed, err)
	}

	logger.Info("connected to redis", zap.String("source", string(config.Source)))
	return client, config, nil
}

func initiatingMessage(mode redis.Mode) string {
	switch mode {
	case redis.ModeConnectionString:
		return "initiating redis connection using connection string"
	case redis.ModePassword:
		return "initiating redis connection with password"
	case redis.ModeHost:
		return "initiating redis connection with no password"
	default:
		return "initiating redis connection with no host or password (using embedded store)"
	}
}

func (r *Resolver) fromConnectionString(ctx context.Context) (*redis.RedisConfig, error) {
	if r.secrets != nil && r.env.SecretName != "" {
		value, found, err := r.secrets.GetSecret(ctx, r.env.SecretName)
		switch {
		case err != nil:
			// The vault is optional; fall back to the environment.
			r.logger.Ctx(ctx).Warn("secret vault lookup failed",
				zap.String("provider", r.secrets.Name()),
				zap.String("secret", r.env.SecretName),
				zap.Error(err))
		case found && value != "":
			return &redis.RedisConfig{
				ConnectionString: value,
				Source:           redis.SourceVault,
			}, nil
		}
	}

	if r.env.ConnectionString != "" {
		return &redis.RedisConfig{
			ConnectionString: r.env.ConnectionString,
			Source:           redis.SourceEnv,
		}, nil
	}
	return nil, nil
}

func (r *Resolver) fromPlatformBinding(ctx context.Context) (*redis.RedisConfig, error) {
	if r.env.VCAPServices == "" {
		return nil, nil
	}

	services, err := vcap.Parse(r.env.VCAPServices)
	if err != nil {
		return nil, err
	}

	creds, found, err := services.Credentials(r.env.BindingLabel)
	if err != nil {
		return nil, err
	}
	if !found {
		r.logger.Ctx(ctx).Warn("No Redis service found in VCAP_SERVICES. A "+r.env.BindingLabel+" service instance should be bound to this app",
			zap.Strings("bound_services", services.Labels()))
		return nil, nil
	}

	r.logger.Ctx(ctx).Info("connecting to redis from platform binding",
		zap.String("host", creds.Host),
		zap.Int("port", int(creds.Port)))

	return &redis.RedisConfig{
		Host:     creds.Host,
		Port:     int(creds.Port),
		Password: creds.Password,
		Source:   redis.SourcePlatformBinding,
	}, nil
}

func (r *Resolver) fromDiscreteEnv(context.Context) (*redis.RedisConfig, error) {
	if r.env.Host == "" && r.env.Password == "" {
		return nil, nil
	}
	return &redis.RedisConfig{
		Host:     r.env.Host,
		Port:     r.env.Port,
		Password: r.env.Password,
		Source:   redis.SourceEnvDiscrete,
	}, nil
}
