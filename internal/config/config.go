package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/qes/quotation-api/internal/domain"
	"github.com/qes/quotation-api/internal/secrets"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config holds all application configuration
type Config struct {
	App           AppConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	Numbering     NumberingConfig
	Catalog       CatalogConfig
	DataWarehouse DataWarehouseConfig
	Auth          AuthConfig
	Permissions   PermissionsConfig
	Storage       StorageConfig
	Jobs          JobsConfig
	Secrets       SecretsConfig
	Logging       LoggingConfig
	Server        ServerConfig
	Metrics       MetricsConfig
	CORS          CORSConfig
	Security      SecurityConfig
	RateLimit     RateLimitConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Port        int
}

type DatabaseConfig struct {
	// Driver is "postgres" or "sqlite" (sqlite is meant for local runs only)
	Driver          string
	Host            string
	Port            int
	Name            string
	User            string
	Password        string
	SSLMode         string
	SQLitePath      string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	AutoMigrate     bool
}

// RedisConfig is only used when numbering.backend is "redis"
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NumberingConfig controls how quotation numbers are issued
type NumberingConfig struct {
	// Prefix is prepended to every number, e.g. QES/QT/OCT26/001
	Prefix string
	// Backend selects the per-month counter: "database" or "redis"
	Backend string
	// TimeZone decides which calendar month a creation falls into
	TimeZone string
	// MaxAttempts bounds the retry loop on duplicate numbers
	MaxAttempts int
}

// CatalogConfig selects where product data is resolved from
type CatalogConfig struct {
	// Source is "database" (products table) or "warehouse" (MS SQL product view)
	Source string
	// WarehouseTable is the table or view queried when Source is "warehouse"
	WarehouseTable string
}

// DataWarehouseConfig holds configuration for the MS SQL Server data warehouse
// This connection is optional and read-only
type DataWarehouseConfig struct {
	Enabled bool
	// URL is the connection URL in format host:port/database
	URL             string
	User            string
	Password        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	QueryTimeout    int
}

// AuthConfig holds bearer token validation settings
type AuthConfig struct {
	JWTSecret string
	Issuer    string
	Audience  string
	// ClockSkew is the leeway applied to exp/nbf checks (seconds)
	ClockSkew int
}

// PermissionsConfig holds the capability table applied to standard users
// whose account carries no explicit permissions
type PermissionsConfig struct {
	DefaultUser map[string]map[string]bool
}

type StorageConfig struct {
	Mode                  string
	LocalBasePath         string
	CloudConnectionString string
	CloudContainer        string
	// ArchivePrefix is the key prefix for quotation history archives
	ArchivePrefix string
}

// JobsConfig holds background job settings
type JobsConfig struct {
	PurgeEnabled       bool
	PurgeSchedule      string
	PurgeRetentionDays int
}

type SecretsConfig struct {
	// Source determines where secrets are loaded from: "environment", "vault", or "auto"
	Source       string
	KeyVaultName string
	CacheEnabled bool
	CacheTTL     int // seconds
}

type LoggingConfig struct {
	Level  string
	Format string
}

type ServerConfig struct {
	ReadTimeout    int
	WriteTimeout   int
	RequestTimeout int
	EnableSwagger  bool
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// CORSConfig holds CORS configuration
type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// SecurityConfig holds security header configuration
type SecurityConfig struct {
	EnableHSTS            bool
	HSTSMaxAge            int
	ContentSecurityPolicy string
	FrameOptions          string
	ContentTypeNosniff    bool
	ReferrerPolicy        string
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	Enabled bool
	// RequestsPerMinute is the limit for unauthenticated requests (per IP)
	RequestsPerMinute int
	// RequestsPerMinuteAuth is the limit for authenticated requests (per user)
	RequestsPerMinuteAuth int
	WhitelistPaths        []string
}

// ConnectionString builds PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DatabaseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// ConnMaxLifetimeDuration returns connection max lifetime as duration
func (d *DataWarehouseConfig) ConnMaxLifetimeDuration() time.Duration {
	return time.Duration(d.ConnMaxLifetime) * time.Second
}

// QueryTimeoutDuration returns query timeout as duration
func (d *DataWarehouseConfig) QueryTimeoutDuration() time.Duration {
	return time.Duration(d.QueryTimeout) * time.Second
}

// ReadTimeoutDuration returns read timeout as duration
func (s *ServerConfig) ReadTimeoutDuration() time.Duration {
	return time.Duration(s.ReadTimeout) * time.Second
}

// WriteTimeoutDuration returns write timeout as duration
func (s *ServerConfig) WriteTimeoutDuration() time.Duration {
	return time.Duration(s.WriteTimeout) * time.Second
}

// RequestTimeoutDuration returns request timeout as duration
func (s *ServerConfig) RequestTimeoutDuration() time.Duration {
	return time.Duration(s.RequestTimeout) * time.Second
}

// ClockSkewDuration returns the token leeway as duration
func (a *AuthConfig) ClockSkewDuration() time.Duration {
	return time.Duration(a.ClockSkew) * time.Second
}

// Location resolves the numbering time zone
func (n *NumberingConfig) Location() (*time.Location, error) {
	if n.TimeZone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(n.TimeZone)
}

// DefaultUserPermissions returns the typed form of the configured default
// capability table. Validate has already rejected unknown keys.
func (p *PermissionsConfig) DefaultUserPermissions() domain.PermissionMatrix {
	matrix, err := domain.ParsePermissionMatrix(p.DefaultUser)
	if err != nil {
		return domain.PermissionMatrix{}
	}
	return matrix
}

// Validate checks the values that cannot be corrected by defaults
func (c *Config) Validate() error {
	if _, err := domain.ParsePermissionMatrix(c.Permissions.DefaultUser); err != nil {
		return fmt.Errorf("permissions.defaultUser: %w", err)
	}
	if _, err := c.Numbering.Location(); err != nil {
		return fmt.Errorf("numbering.timeZone: %w", err)
	}
	switch c.Numbering.Backend {
	case "database":
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis.addr is required when numbering.backend is redis")
		}
	default:
		return fmt.Errorf("numbering.backend must be database or redis, got %q", c.Numbering.Backend)
	}
	if c.Numbering.MaxAttempts < 1 {
		return fmt.Errorf("numbering.maxAttempts must be at least 1")
	}
	switch c.Catalog.Source {
	case "database":
	case "warehouse":
		if !c.DataWarehouse.Enabled {
			return fmt.Errorf("catalog.source warehouse requires dataWarehouse.enabled")
		}
	default:
		return fmt.Errorf("catalog.source must be database or warehouse, got %q", c.Catalog.Source)
	}
	return nil
}

// Load loads configuration from file and environment variables
// This is a basic load that doesn't fetch secrets from vault
// Use LoadWithSecrets for full secret resolution
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override config file
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = v.GetString("JWT_SECRET")
	}
	if cfg.Secrets.KeyVaultName == "" {
		cfg.Secrets.KeyVaultName = v.GetString("AZURE_KEY_VAULT_NAME")
	}
	if v.GetBool("DATAWAREHOUSE_ENABLED") {
		cfg.DataWarehouse.Enabled = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// LoadWithSecrets loads configuration and resolves secrets from the configured source.
// Key Vault is used when USE_AZURE_KEY_VAULT=true and the environment is staging or production.
// Data warehouse credentials are loaded from Key Vault whenever the warehouse is enabled
// and a vault name is configured.
func LoadWithSecrets(ctx context.Context, logger *zap.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	useKeyVault := strings.ToLower(os.Getenv("USE_AZURE_KEY_VAULT")) == "true"
	isValidEnv := cfg.App.Environment == "staging" || cfg.App.Environment == "production"

	if cfg.DataWarehouse.Enabled && cfg.Secrets.KeyVaultName != "" {
		if err := loadDataWarehouseSecrets(ctx, cfg, logger); err != nil {
			logger.Warn("Failed to load data warehouse secrets from Key Vault",
				zap.Error(err),
				zap.String("environment", cfg.App.Environment),
			)
		}
	}

	if !useKeyVault {
		logger.Info("USE_AZURE_KEY_VAULT not enabled, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if !isValidEnv {
		logger.Warn("USE_AZURE_KEY_VAULT is enabled but environment is not staging or production, using environment variables for secrets",
			zap.String("environment", cfg.App.Environment),
		)
		return cfg, nil
	}

	if cfg.Secrets.KeyVaultName == "" {
		return nil, fmt.Errorf("AZURE_KEY_VAULT_NAME is required when USE_AZURE_KEY_VAULT=true")
	}

	provider, err := newVaultProvider(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secrets provider (USE_AZURE_KEY_VAULT=true requires valid vault): %w", err)
	}

	logger.Info("Loading secrets from Azure Key Vault",
		zap.String("key_vault_name", cfg.Secrets.KeyVaultName),
	)

	applied, err := provider.Apply(ctx, serviceSecretBindings(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to load secrets: %w", err)
	}
	if sslMode := os.Getenv("DATABASE_SSLMODE"); sslMode != "" {
		cfg.Database.SSLMode = sslMode
	}

	logger.Info("Secrets loaded from vault", zap.Strings("secrets", applied))
	return cfg, nil
}

func newVaultProvider(cfg *Config, logger *zap.Logger) (*secrets.Provider, error) {
	return secrets.NewProvider(&secrets.ProviderConfig{
		Source:       secrets.SourceVault,
		VaultName:    cfg.Secrets.KeyVaultName,
		Environment:  cfg.App.Environment,
		CacheEnabled: cfg.Secrets.CacheEnabled,
		CacheTTL:     time.Duration(cfg.Secrets.CacheTTL) * time.Second,
	}, logger)
}

// serviceSecretBindings lists the vault secrets of the quotation service.
// All of them can be overridden from the environment and none is required;
// an unset secret keeps the value from config or defaults.
func serviceSecretBindings(cfg *Config) []secrets.Binding {
	return []secrets.Binding{
		{Secret: "POSTGRES-QUOTATION-HOST", Env: "DATABASE_HOST", Target: &cfg.Database.Host},
		{Secret: "POSTGRES-QUOTATION-USER", Env: "DATABASE_USER", Target: &cfg.Database.User},
		{Secret: "POSTGRES-QUOTATION-PASSWORD", Env: "DATABASE_PASSWORD", Target: &cfg.Database.Password},
		{Secret: "jwt-secret", Env: "JWT_SECRET", Target: &cfg.Auth.JWTSecret},
		{Secret: "redis-password", Env: "REDIS_PASSWORD", Target: &cfg.Redis.Password},
		{Secret: "storage-connection-string", Env: "STORAGE_CLOUDCONNECTIONSTRING", Target: &cfg.Storage.CloudConnectionString},
	}
}

// warehouseSecretBindings lists the ERP warehouse credentials. They only
// come from Key Vault.
func warehouseSecretBindings(cfg *Config) []secrets.Binding {
	return []secrets.Binding{
		{Secret: "WAREHOUSE-URL", Target: &cfg.DataWarehouse.URL, Required: true},
		{Secret: "WAREHOUSE-USERNAME", Target: &cfg.DataWarehouse.User, Required: true},
		{Secret: "WAREHOUSE-PASSWORD", Target: &cfg.DataWarehouse.Password, Required: true},
	}
}

func loadDataWarehouseSecrets(ctx context.Context, cfg *Config, logger *zap.Logger) error {
	provider, err := newVaultProvider(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize vault client for data warehouse: %w", err)
	}
	if _, err := provider.Apply(ctx, warehouseSecretBindings(cfg)); err != nil {
		return err
	}
	logger.Info("Data warehouse credentials loaded from Key Vault")
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "QES Quotation API")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.port", 8080)

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "quotations")
	v.SetDefault("database.user", "quotation_user")
	v.SetDefault("database.password", "quotation_password")
	v.SetDefault("database.sslMode", "disable")
	v.SetDefault("database.sqlitePath", "quotations.db")
	v.SetDefault("database.maxOpenConns", 25)
	v.SetDefault("database.maxIdleConns", 5)
	v.SetDefault("database.connMaxLifetime", 300)
	v.SetDefault("database.autoMigrate", false)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)

	v.SetDefault("numbering.prefix", "QES/QT")
	v.SetDefault("numbering.backend", "database")
	v.SetDefault("numbering.timeZone", "UTC")
	v.SetDefault("numbering.maxAttempts", 3)

	v.SetDefault("catalog.source", "database")
	v.SetDefault("catalog.warehouseTable", "dbo.Products")

	v.SetDefault("dataWarehouse.enabled", false)
	v.SetDefault("dataWarehouse.maxOpenConns", 10)
	v.SetDefault("dataWarehouse.maxIdleConns", 2)
	v.SetDefault("dataWarehouse.connMaxLifetime", 300)
	v.SetDefault("dataWarehouse.queryTimeout", 30)

	v.SetDefault("auth.issuer", "qes-auth")
	v.SetDefault("auth.clockSkew", 30)

	// Standard users may work on quotations and look up catalog data
	v.SetDefault("permissions.defaultUser", map[string]map[string]bool{
		"quotation": {"create": true, "read": true, "update": true, "delete": true},
		"product":   {"read": true},
		"customer":  {"read": true},
		"company":   {"read": true},
	})

	v.SetDefault("storage.mode", "local")
	v.SetDefault("storage.localBasePath", "./storage")
	v.SetDefault("storage.archivePrefix", "quotation-archive")

	v.SetDefault("jobs.purgeEnabled", false)
	v.SetDefault("jobs.purgeSchedule", "0 30 2 * * *") // 02:30 daily
	v.SetDefault("jobs.purgeRetentionDays", 90)

	v.SetDefault("secrets.source", "auto")
	v.SetDefault("secrets.cacheEnabled", true)
	v.SetDefault("secrets.cacheTTL", 300)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("server.readTimeout", 30)
	v.SetDefault("server.writeTimeout", 30)
	v.SetDefault("server.requestTimeout", 60)
	v.SetDefault("server.enableSwagger", true)

	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.path", "/metrics")

	v.SetDefault("cors.allowedOrigins", []string{})
	v.SetDefault("cors.allowedMethods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("cors.allowedHeaders", []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"})
	v.SetDefault("cors.exposedHeaders", []string{"Location", "X-Request-ID"})
	v.SetDefault("cors.allowCredentials", true)
	v.SetDefault("cors.maxAge", 300)

	v.SetDefault("security.enableHSTS", false)
	v.SetDefault("security.hstsMaxAge", 31536000)
	v.SetDefault("security.contentSecurityPolicy", "default-src 'self'")
	v.SetDefault("security.frameOptions", "DENY")
	v.SetDefault("security.contentTypeNosniff", true)
	v.SetDefault("security.referrerPolicy", "strict-origin-when-cross-origin")

	v.SetDefault("rateLimit.enabled", true)
	v.SetDefault("rateLimit.requestsPerMinute", 60)
	v.SetDefault("rateLimit.requestsPerMinuteAuth", 120)
	v.SetDefault("rateLimit.whitelistPaths", []string{"/health", "/health/db", "/metrics"})
}
