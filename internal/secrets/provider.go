// Package secrets resolves runtime secrets (JWT signing key, database
// password, ERP credentials) from either environment variables or
// Azure Key Vault, picked by deployment environment.
package secrets

import (
	"context"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// SecretSource selects where secrets come from.
type SecretSource string

const (
	SourceEnvironment SecretSource = "environment"
	SourceVault       SecretSource = "vault"
	// SourceAuto resolves to environment in dev/local and vault
	// everywhere else.
	SourceAuto SecretSource = "auto"
)

// ProviderConfig configures the secrets provider.
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider hands out secrets from the resolved source.
type Provider struct {
	source      SecretSource
	vault       *VaultClient
	logger      *zap.Logger
	environment string
}

func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := resolveSource(cfg)

	p := &Provider{source: source, logger: logger, environment: cfg.Environment}

	if source == SourceVault {
		if cfg.VaultName == "" {
			return nil, fmt.Errorf("vault name required when using vault secret source")
		}
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		p.vault = vault
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return p, nil
}

func resolveSource(cfg *ProviderConfig) SecretSource {
	if cfg.Source != SourceAuto {
		return cfg.Source
	}
	switch cfg.Environment {
	case "development", "local", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// GetSecret fetches a secret by name: the Key Vault secret name in
// vault mode, the environment variable name otherwise.
func (p *Provider) GetSecret(ctx context.Context, name string) (string, error) {
	switch p.source {
	case SourceEnvironment:
		value := os.Getenv(name)
		if value == "" {
			return "", fmt.Errorf("environment variable '%s' not set", name)
		}
		return value, nil
	case SourceVault:
		if p.vault == nil {
			return "", fmt.Errorf("vault client not initialized")
		}
		return p.vault.GetSecret(ctx, name)
	default:
		return "", fmt.Errorf("unknown secret source: %s", p.source)
	}
}

// GetSecretOrEnv lets an explicitly set environment variable override
// the configured source, which keeps local overrides working even in
// vault mode.
func (p *Provider) GetSecretOrEnv(ctx context.Context, secretName, envName string) (string, error) {
	if value := os.Getenv(envName); value != "" {
		p.logger.Debug("Using environment variable override", zap.String("env_name", envName))
		return value, nil
	}
	return p.GetSecret(ctx, secretName)
}

func (p *Provider) Source() SecretSource { return p.source }

func (p *Provider) IsVaultEnabled() bool { return p.source == SourceVault }
