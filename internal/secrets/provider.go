// Package secrets resolves credentials for the quotation service from Azure
// Key Vault or the process environment.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"
)

// ErrNotFound is returned when a store has no value for a secret
var ErrNotFound = errors.New("secret not found")

// SecretSource defines where secrets are loaded from
type SecretSource string

const (
	SourceEnvironment SecretSource = "environment"
	SourceVault       SecretSource = "vault"
	// SourceAuto picks vault outside development and local
	SourceAuto SecretSource = "auto"
)

// Store fetches a single named secret
type Store interface {
	GetSecret(ctx context.Context, name string) (string, error)
}

// EnvStore reads secrets from environment variables of the same name
type EnvStore struct{}

func (EnvStore) GetSecret(ctx context.Context, name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%w: environment variable %s", ErrNotFound, name)
	}
	return value, nil
}

// Binding maps a secret onto a configuration field. Env, when set, is an
// environment variable that overrides the store. Required bindings fail
// Apply when no value is found anywhere.
type Binding struct {
	Secret   string
	Env      string
	Target   *string
	Required bool
}

// ProviderConfig holds configuration for the secrets provider
type ProviderConfig struct {
	Source       SecretSource
	VaultName    string
	Environment  string
	CacheEnabled bool
	CacheTTL     time.Duration
}

// Provider resolves bindings against one store
type Provider struct {
	source SecretSource
	store  Store
	logger *zap.Logger
}

// ResolveSource turns SourceAuto into a concrete source for environment
func ResolveSource(source SecretSource, environment string) SecretSource {
	if source != SourceAuto {
		return source
	}
	switch environment {
	case "development", "local", "":
		return SourceEnvironment
	default:
		return SourceVault
	}
}

// NewProvider creates a provider for the configured source. A vault source
// connects to Key Vault immediately so misconfiguration fails at startup.
func NewProvider(cfg *ProviderConfig, logger *zap.Logger) (*Provider, error) {
	source := ResolveSource(cfg.Source, cfg.Environment)

	var store Store
	switch source {
	case SourceEnvironment:
		store = EnvStore{}
	case SourceVault:
		vault, err := NewVaultClient(&VaultConfig{
			VaultName:    cfg.VaultName,
			CacheEnabled: cfg.CacheEnabled,
			CacheTTL:     cfg.CacheTTL,
		}, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize vault client: %w", err)
		}
		store = vault
	default:
		return nil, fmt.Errorf("unknown secret source: %s", cfg.Source)
	}

	logger.Info("Secrets provider initialized",
		zap.String("source", string(source)),
		zap.String("environment", cfg.Environment),
	)
	return NewProviderWithStore(source, store, logger), nil
}

// NewProviderWithStore wraps an existing store
func NewProviderWithStore(source SecretSource, store Store, logger *zap.Logger) *Provider {
	return &Provider{source: source, store: store, logger: logger}
}

// Source returns the resolved secret source
func (p *Provider) Source() SecretSource {
	return p.source
}

// Resolve returns the value for b, preferring its environment override
func (p *Provider) Resolve(ctx context.Context, b Binding) (string, error) {
	if b.Env != "" {
		if value := os.Getenv(b.Env); value != "" {
			p.logger.Debug("Using environment variable override", zap.String("env_name", b.Env))
			return value, nil
		}
	}
	return p.store.GetSecret(ctx, b.Secret)
}

// Apply resolves every binding and writes found values into their targets.
// Missing optional secrets leave the target untouched. It returns the names
// of the secrets that were applied; errors from required bindings are joined.
func (p *Provider) Apply(ctx context.Context, bindings []Binding) ([]string, error) {
	var (
		applied []string
		errs    []error
	)
	for _, b := range bindings {
		value, err := p.Resolve(ctx, b)
		if err != nil || value == "" {
			if b.Required {
				if err == nil {
					err = fmt.Errorf("%w: %s is empty", ErrNotFound, b.Secret)
				}
				errs = append(errs, fmt.Errorf("secret %s: %w", b.Secret, err))
			} else {
				p.logger.Debug("Optional secret not resolved, keeping configured value",
					zap.String("secret_name", b.Secret),
					zap.Error(err),
				)
			}
			continue
		}
		*b.Target = value
		applied = append(applied, b.Secret)
	}
	return applied, errors.Join(errs...)
}
