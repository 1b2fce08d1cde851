// Package secrets looks up credentials in a secret vault by key name.
//
// Providers report a missing secret with found=false and a nil error; any
// other error means the vault itself could not answer.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

const (
	ProviderNone  = "none"
	ProviderEnv   = "env"
	ProviderAzure = "azure"
	ProviderAWS   = "aws"
)

var ErrUnknownProvider = errors.New("unknown secret provider")

type Provider interface {
	Name() string
	GetSecret(ctx context.Context, key string) (value string, found bool, err error)
}

type Config struct {
	Provider string
	Azure    AzureConfig
	AWS      AWSConfig
	// Environment backs the env provider.
	Environment map[string]string
}

func New(ctx context.Context, config Config) (Provider, error) {
	switch strings.ToLower(config.Provider) {
	case "", ProviderNone:
		return noneProvider{}, nil
	case ProviderEnv:
		return NewEnvProvider(config.Environment), nil
	case ProviderAzure:
		return NewAzureProvider(config.Azure)
	case ProviderAWS:
		return NewAWSProvider(ctx, config.AWS)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, config.Provider)
	}
}

type noneProvider struct{}

func (noneProvider) Name() string { return ProviderNone }

func (noneProvider) GetSecret(context.Context, string) (string, bool, error) {
	return "", false, nil
}

// EnvProvider serves secrets from an environment map, so vault-style key
// names work locally. "CART-REDIS-CONNECTION-STRING" is read from
// CART_REDIS_CONNECTION_STRING.
type EnvProvider struct {
	environment map[string]string
}

func NewEnvProvider(environment map[string]string) *EnvProvider {
	if environment == nil {
		environment = map[string]string{}
	}
	return &EnvProvider{environment: environment}
}

func (p *EnvProvider) Name() string { return ProviderEnv }

func (p *EnvProvider) GetSecret(_ context.Context, key string) (string, bool, error) {
	value, ok := p.environment[EnvKey(key)]
	if !ok || value == "" {
		return "", false, nil
	}
	return value, true, nil
}

func EnvKey(key string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_", "/", "_").Replace(key))
}
