package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/hookdeck/redisconnect/internal/secrets"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := c.validateSecrets(); err != nil {
		return err
	}

	return nil
}

// validateSecrets checks the provider-specific settings that struct tags
// cannot express.
func (c *Config) validateSecrets() error {
	switch c.Secrets.Provider {
	case secrets.ProviderAzure:
		if c.Secrets.AzureVault.VaultURL == "" && c.Secrets.AzureVault.VaultName == "" {
			return ErrMissingAzureVault
		}
	case secrets.ProviderAWS:
		if c.Secrets.AWS.Region == "" {
			return ErrMissingAWSRegion
		}
		if (c.Secrets.AWS.AccessKeyID == "") != (c.Secrets.AWS.SecretAccessKey == "") {
			return ErrConflictingAWSKeys
		}
	}
	return nil
}
