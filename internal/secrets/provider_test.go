package secrets

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mapStore map[string]string

func (m mapStore) GetSecret(ctx context.Context, name string) (string, error) {
	if v, ok := m[name]; ok {
		return v, nil
	}
	return "", ErrNotFound
}

type failingStore struct{ err error }

func (f failingStore) GetSecret(ctx context.Context, name string) (string, error) {
	return "", f.err
}

func TestResolveSource(t *testing.T) {
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, "development"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceAuto, ""))
	assert.Equal(t, SourceVault, ResolveSource(SourceAuto, "production"))
	assert.Equal(t, SourceEnvironment, ResolveSource(SourceEnvironment, "production"))
}

func TestProvider_Apply(t *testing.T) {
	provider := NewProviderWithStore(SourceVault, mapStore{
		"jwt-secret":     "from-vault",
		"redis-password": "redis-from-vault",
	}, zap.NewNop())

	t.Setenv("QUOTATION_TEST_REDIS_PASSWORD", "redis-from-env")

	jwtSecret := "configured"
	redisPassword := ""
	dbHost := "localhost"

	applied, err := provider.Apply(context.Background(), []Binding{
		{Secret: "jwt-secret", Env: "QUOTATION_TEST_UNSET_JWT", Target: &jwtSecret},
		{Secret: "redis-password", Env: "QUOTATION_TEST_REDIS_PASSWORD", Target: &redisPassword},
		{Secret: "db-host", Target: &dbHost},
	})
	require.NoError(t, err)

	assert.Equal(t, "from-vault", jwtSecret)
	assert.Equal(t, "redis-from-env", redisPassword, "environment overrides the store")
	assert.Equal(t, "localhost", dbHost, "missing optional secret keeps the configured value")
	assert.Equal(t, []string{"jwt-secret", "redis-password"}, applied)
}

func TestProvider_ApplyRequired(t *testing.T) {
	provider := NewProviderWithStore(SourceVault, mapStore{"WAREHOUSE-URL": "dw:1433/erp"}, zap.NewNop())

	var url, user, password string
	_, err := provider.Apply(context.Background(), []Binding{
		{Secret: "WAREHOUSE-URL", Target: &url, Required: true},
		{Secret: "WAREHOUSE-USERNAME", Target: &user, Required: true},
		{Secret: "WAREHOUSE-PASSWORD", Target: &password, Required: true},
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorContains(t, err, "WAREHOUSE-USERNAME")
	assert.ErrorContains(t, err, "WAREHOUSE-PASSWORD")
	assert.Equal(t, "dw:1433/erp", url)
}

func TestProvider_StoreFailure(t *testing.T) {
	boom := errors.New("vault unreachable")
	provider := NewProviderWithStore(SourceVault, failingStore{err: boom}, zap.NewNop())

	target := "unchanged"
	_, err := provider.Apply(context.Background(), []Binding{{Secret: "jwt-secret", Target: &target, Required: true}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, "unchanged", target)
}

func TestEnvStore(t *testing.T) {
	t.Setenv("QUOTATION_TEST_SECRET", "s3cret")

	value, err := EnvStore{}.GetSecret(context.Background(), "QUOTATION_TEST_SECRET")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", value)

	_, err = EnvStore{}.GetSecret(context.Background(), "QUOTATION_TEST_MISSING")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestVaultClient_Cache(t *testing.T) {
	now := time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)
	v := &VaultClient{
		logger:       zap.NewNop(),
		cacheEnabled: true,
		cacheTTL:     time.Minute,
		cache:        make(map[string]cachedSecret),
		now:          func() time.Time { return now },
	}

	v.store("jwt-secret", "cached")
	value, ok := v.cached("jwt-secret")
	require.True(t, ok)
	assert.Equal(t, "cached", value)

	now = now.Add(time.Minute)
	_, ok = v.cached("jwt-secret")
	assert.False(t, ok, "entries expire after the TTL")

	v.cacheEnabled = false
	v.store("other", "x")
	_, ok = v.cached("other")
	assert.False(t, ok)
}
