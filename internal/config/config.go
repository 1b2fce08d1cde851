package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v9"
	"github.com/hookdeck/redisconnect/internal/redis"
	"github.com/hookdeck/redisconnect/internal/resolver"
	"github.com/hookdeck/redisconnect/internal/secrets"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultSecretName   = "CART-REDIS-CONNECTION-STRING"
	DefaultBindingLabel = "p-redis"
)

func getConfigLocations() []string {
	return []string{
		// Relative paths
		".env",
		".redisconnect.yaml",
		"config/redisconnect.yaml",
		"config/redisconnect/.env",

		// Container-friendly absolute paths
		"/config/redisconnect.yaml",
		"/config/redisconnect/.env",
	}
}

type Flags struct {
	Config string
}

type Config struct {
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" validate:"omitempty,oneof=debug info warn warning error fatal"`

	Redis   RedisConfig   `yaml:"redis"`
	Secrets SecretsConfig `yaml:"secrets"`
	Health  HealthConfig  `yaml:"health"`

	// VCAPServices is injected by the platform, never read from a config file.
	VCAPServices string `yaml:"-" env:"VCAP_SERVICES"`

	configPath string
	environ    map[string]string
}

type RedisConfig struct {
	ConnectionString string `yaml:"connection_string" env:"REDIS_CONNECTIONSTRING"`
	Host             string `yaml:"host" env:"REDIS_HOST"`
	Port             int    `yaml:"port" env:"REDIS_PORT" validate:"gte=0,lte=65535"`
	Password         string `yaml:"password" env:"REDIS_PASSWORD"`
	Database         int    `yaml:"database" env:"REDIS_DATABASE" validate:"gte=0"`

	// TLSEnabled stays a string so truthy spellings like "yes" or "0" are
	// accepted and anything else is rejected by the resolver.
	TLSEnabled string `yaml:"tls_enabled" env:"REDIS_TLS_ENABLED"`

	DialTimeoutSeconds int    `yaml:"dial_timeout_seconds" env:"REDIS_DIAL_TIMEOUT_SECONDS" validate:"gte=0"`
	BindingLabel       string `yaml:"binding_label" env:"REDIS_BINDING_LABEL"`
}

type SecretsConfig struct {
	Provider   string `yaml:"provider" env:"SECRET_PROVIDER" validate:"oneof=none env azure aws"`
	RedisKey   string `yaml:"redis_key" env:"REDIS_SECRET_NAME"`
	AzureVault AzureKeyVaultConfig     `yaml:"azure"`
	AWS        AWSSecretsManagerConfig `yaml:"aws"`
}

type AzureKeyVaultConfig struct {
	VaultURL  string `yaml:"vault_url" env:"AZURE_KEYVAULT_URL" validate:"omitempty,url"`
	VaultName string `yaml:"vault_name" env:"KEYVAULT_NAME"`
}

type AWSSecretsManagerConfig struct {
	Region          string `yaml:"region" env:"AWS_REGION"`
	Endpoint        string `yaml:"endpoint" env:"AWS_SECRETS_ENDPOINT" validate:"omitempty,url"`
	AccessKeyID     string `yaml:"access_key_id" env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey string `yaml:"secret_access_key" env:"AWS_SECRET_ACCESS_KEY"`
}

type HealthConfig struct {
	Port    int    `yaml:"port" env:"HEALTH_PORT" validate:"gte=0,lte=65535"`
	GinMode string `yaml:"gin_mode" env:"GIN_MODE" validate:"omitempty,oneof=debug release test"`
}

func (c *Config) initDefaults() {
	c.LogLevel = "info"
	c.Redis = RedisConfig{
		Port:         redis.DefaultPort,
		TLSEnabled:   "true",
		BindingLabel: DefaultBindingLabel,
	}
	c.Secrets = SecretsConfig{
		Provider: secrets.ProviderNone,
		RedisKey: DefaultSecretName,
	}
	c.Health = HealthConfig{
		Port:    8080,
		GinMode: "release",
	}
}

func (c *Config) parseConfigFile(flagPath string, osInterface OSInterface) error {
	// Get config file path from flag or env
	configPath := flagPath
	if envPath := osInterface.Getenv("CONFIG"); envPath != "" {
		if configPath != "" && configPath != envPath {
			return fmt.Errorf("conflicting config paths: flag=%s env=%s", configPath, envPath)
		}
		configPath = envPath
	}

	// If no explicit config path, try default locations
	if configPath == "" {
		for _, loc := range getConfigLocations() {
			if _, err := osInterface.Stat(loc); err == nil {
				configPath = loc
				break
			}
		}
	}

	if configPath == "" {
		return nil
	}

	data, err := osInterface.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	c.configPath = configPath

	if strings.HasSuffix(strings.ToLower(configPath), ".env") {
		envMap, err := godotenv.UnmarshalBytes(data)
		if err != nil {
			return fmt.Errorf("error loading .env file: %w", err)
		}
		delete(envMap, "VCAP_SERVICES")
		if err := env.ParseWithOptions(c, env.Options{
			Environment: envMap,
		}); err != nil {
			return fmt.Errorf("error parsing .env file: %w", err)
		}
		return nil
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("error parsing yaml config: %w", err)
	}
	return nil
}

func (c *Config) parseEnvVariables(osInterface OSInterface) error {
	c.environ = environMap(osInterface.Environ())
	if err := env.ParseWithOptions(c, env.Options{
		Environment: c.environ,
	}); err != nil {
		return fmt.Errorf("error parsing environment variables: %w", err)
	}
	c.Secrets.Provider = strings.ToLower(c.Secrets.Provider)
	return nil
}

func environMap(environ []string) map[string]string {
	m := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			m[k] = v
		}
	}
	return m
}

func Parse(flags Flags) (*Config, error) {
	return ParseWithOS(flags, defaultOS)
}

// ParseWithOS layers defaults, then the config file, then environment
// variables (highest priority), and validates the result.
func ParseWithOS(flags Flags, osInterface OSInterface) (*Config, error) {
	var config Config

	config.initDefaults()

	if err := config.parseConfigFile(flags.Config, osInterface); err != nil {
		return nil, err
	}

	if err := config.parseEnvVariables(osInterface); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) ConfigFilePath() string {
	return c.configPath
}

// ToEnvironment hands the resolver an explicit snapshot of its inputs.
func (c *Config) ToEnvironment() resolver.Environment {
	return resolver.Environment{
		ConnectionString: c.Redis.ConnectionString,
		Host:             c.Redis.Host,
		Port:             c.Redis.Port,
		Password:         c.Redis.Password,
		Database:         c.Redis.Database,
		TLSEnabled:       c.Redis.TLSEnabled,
		DialTimeout:      time.Duration(c.Redis.DialTimeoutSeconds) * time.Second,
		VCAPServices:     c.VCAPServices,
		BindingLabel:     c.Redis.BindingLabel,
		SecretName:       c.Secrets.RedisKey,
	}
}

func (c *SecretsConfig) ToConfig(environ map[string]string) secrets.Config {
	return secrets.Config{
		Provider: c.Provider,
		Azure: secrets.AzureConfig{
			VaultURL:  c.AzureVault.VaultURL,
			VaultName: c.AzureVault.VaultName,
		},
		AWS: secrets.AWSConfig{
			Region:          c.AWS.Region,
			Endpoint:        c.AWS.Endpoint,
			AccessKeyID:     c.AWS.AccessKeyID,
			SecretAccessKey: c.AWS.SecretAccessKey,
		},
		Environment: environ,
	}
}

// SecretsProviderConfig is the secrets config bound to the environment the
// config was parsed from.
func (c *Config) SecretsProviderConfig() secrets.Config {
	return c.Secrets.ToConfig(c.environ)
}

var (
	ErrInvalidConfig      = errors.New("invalid configuration")
	ErrMissingAzureVault  = errors.New("SECRET_PROVIDER=azure requires AZURE_KEYVAULT_URL or KEYVAULT_NAME")
	ErrMissingAWSRegion   = errors.New("SECRET_PROVIDER=aws requires AWS_REGION")
	ErrConflictingAWSKeys = errors.New("AWS_ACCESS_KEY_ID and AWS_SECRET_ACCESS_KEY must be set together")
)
