package secrets

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/security/keyvault/azsecrets"
)

var ErrMissingVaultURL = errors.New("azure key vault url or name is required")

type AzureConfig struct {
	VaultURL  string
	VaultName string
}

// URL prefers the explicit vault URL and otherwise derives the public-cloud
// URL from the vault name.
func (c AzureConfig) URL() string {
	if c.VaultURL != "" {
		return c.VaultURL
	}
	if c.VaultName != "" {
		return fmt.Sprintf("https://%s.vault.azure.net/", c.VaultName)
	}
	return ""
}

type azureSecretGetter interface {
	GetSecret(ctx context.Context, name string, version string, options *azsecrets.GetSecretOptions) (azsecrets.GetSecretResponse, error)
}

type AzureProvider struct {
	client azureSecretGetter
}

// NewAzureProvider authenticates with azidentity's default credential chain
// (environment, workload identity, managed identity, Azure CLI).
func NewAzureProvider(config AzureConfig) (*AzureProvider, error) {
	vaultURL := config.URL()
	if vaultURL == "" {
		return nil, ErrMissingVaultURL
	}

	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("azure credential: %w", err)
	}

	client, err := azsecrets.NewClient(vaultURL, cred, nil)
	if err != nil {
		return nil, fmt.Errorf("azure key vault client: %w", err)
	}

	return &AzureProvider{client: client}, nil
}

func (p *AzureProvider) Name() string { return ProviderAzure }

func (p *AzureProvider) GetSecret(ctx context.Context, key string) (string, bool, error) {
	// Empty version means latest.
	resp, err := p.client.GetSecret(ctx, key, "", nil)
	if err != nil {
		var respErr *azcore.ResponseError
		if errors.As(err, &respErr) && respErr.StatusCode == http.StatusNotFound {
			return "", false, nil
		}
		return "", false, fmt.Errorf("azure key vault get %s: %w", key, err)
	}

	if resp.Value == nil || *resp.Value == "" {
		return "", false, nil
	}
	return *resp.Value, true, nil
}
