package secrets

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/smithy-go"
)

var ErrMissingRegion = errors.New("aws region is required")

type AWSConfig struct {
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string
}

type secretValueGetter interface {
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
}

type AWSProvider struct {
	client secretValueGetter
}

// NewAWSProvider uses static credentials when both keys are set and the
// default AWS credential chain otherwise.
func NewAWSProvider(ctx context.Context, config AWSConfig) (*AWSProvider, error) {
	if config.Region == "" {
		return nil, ErrMissingRegion
	}

	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(config.Region),
	}
	if config.AccessKeyID != "" && config.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(config.AccessKeyID, config.SecretAccessKey, ""),
		))
	}

	sdkConfig, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := secretsmanager.NewFromConfig(sdkConfig, func(o *secretsmanager.Options) {
		if config.Endpoint != "" {
			o.BaseEndpoint = aws.String(config.Endpoint)
		}
	})
	return &AWSProvider{client: client}, nil
}

func (p *AWSProvider) Name() string { return ProviderAWS }

func (p *AWSProvider) GetSecret(ctx context.Context, key string) (string, bool, error) {
	out, err := p.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(key),
	})
	if err != nil {
		var notFound *types.ResourceNotFoundException
		if errors.As(err, &notFound) {
			return "", false, nil
		}
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			return "", false, fmt.Errorf("secretsmanager get %s: %s: %w", key, apiErr.ErrorCode(), err)
		}
		return "", false, fmt.Errorf("secretsmanager get %s: %w", key, err)
	}

	if out.SecretString == nil || *out.SecretString == "" {
		return "", false, nil
	}
	return *out.SecretString, true, nil
}
