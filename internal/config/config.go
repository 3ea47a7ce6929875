package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/julienreichel/oc-provider-backend/internal/gateway"
	"github.com/julienreichel/oc-provider-backend/internal/middleware"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
	"github.com/julienreichel/oc-provider-backend/internal/resilience"
)

// DatabaseDriver represents supported persistence backends
type DatabaseDriver string

const (
	DriverMemory   DatabaseDriver = "memory"
	DriverSQLite   DatabaseDriver = "sqlite"
	DriverPostgres DatabaseDriver = "postgres"
	DriverMySQL    DatabaseDriver = "mysql"
	DriverMongoDB  DatabaseDriver = "mongodb"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
	EnvTest        = "test"

	envPrefix = "OCP"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig                    `mapstructure:"app"`
	Server    ServerConfig                 `mapstructure:"server"`
	Log       LogConfig                    `mapstructure:"log"`
	Database  DatabaseConfig               `mapstructure:"database"`
	MongoDB   MongoDBConfig                `mapstructure:"mongodb"`
	Redis     RedisConfig                  `mapstructure:"redis"`
	Gateway   gateway.Config               `mapstructure:"gateway"`
	RateLimit resilience.RateLimiterConfig `mapstructure:"rate_limit"`
	CORS      middleware.CORSConfig        `mapstructure:"cors"`
	Metrics   observability.MetricsConfig  `mapstructure:"metrics"`
	Tracing   observability.TracingConfig  `mapstructure:"tracing"`

	// File is the config file that was read, empty when running on
	// defaults and environment only.
	File string `mapstructure:"-"`
}

// AppConfig holds application-level settings
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// LogConfig holds logger settings. Level is reloaded live from the config file.
type LogConfig struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

// DatabaseConfig holds SQL connection settings. URL wins over the discrete
// fields when set.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	URL             string        `mapstructure:"url"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	Path            string        `mapstructure:"path"` // sqlite file
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// MongoDBConfig holds MongoDB connection settings
type MongoDBConfig struct {
	URI            string        `mapstructure:"uri"`
	Database       string        `mapstructure:"database"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
}

// RedisConfig holds the document cache settings
type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Host     string        `mapstructure:"host"`
	Port     int           `mapstructure:"port"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Addr returns host:port
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from file and environment variables. An empty
// path searches the default locations.
func Load(path string) (*Config, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	cfg.applyDerivedDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Settings returns the merged settings as a nested map keyed like the
// config file, with credentials masked.
func Settings(path string) (map[string]any, error) {
	v, err := read(path)
	if err != nil {
		return nil, err
	}
	settings := v.AllSettings()
	redact(settings)
	return settings, nil
}

func read(path string) (*viper.Viper, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/oc-provider/")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindDeploymentEnv(v)

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return v, nil
}

// bindDeploymentEnv maps the plain variables deployments already set onto
// config keys. Prefixed variables take precedence.
func bindDeploymentEnv(v *viper.Viper) {
	_ = v.BindEnv("server.port", envPrefix+"_SERVER_PORT", "PORT")
	_ = v.BindEnv("app.environment", envPrefix+"_APP_ENVIRONMENT", "APP_ENV", "NODE_ENV")
	_ = v.BindEnv("database.url", envPrefix+"_DATABASE_URL", "DATABASE_URL")
	_ = v.BindEnv("gateway.base_url", envPrefix+"_GATEWAY_BASE_URL", "CLIENT_BACKEND_URL")
	_ = v.BindEnv("log.level", envPrefix+"_LOG_LEVEL", "LOG_LEVEL")
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "oc-provider-backend")
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.environment", EnvDevelopment)

	// Server defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 3001)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 60*time.Second)
	v.SetDefault("server.shutdown_timeout", 15*time.Second)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "")

	// Database defaults. The driver is derived from database.url when unset.
	v.SetDefault("database.driver", "")
	v.SetDefault("database.url", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "oc_provider")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.path", "oc-provider.db")
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.conn_max_lifetime", 5*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("mongodb.uri", "mongodb://localhost:27017")
	v.SetDefault("mongodb.database", "oc_provider")
	v.SetDefault("mongodb.connect_timeout", 10*time.Second)

	// Redis defaults
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 5*time.Minute)

	// Client backend gateway defaults
	gw := gateway.DefaultConfig()
	v.SetDefault("gateway.driver", gw.Driver)
	v.SetDefault("gateway.base_url", "")
	v.SetDefault("gateway.timeout", gw.Timeout)
	v.SetDefault("gateway.retry.max_attempts", gw.Retry.MaxAttempts)
	v.SetDefault("gateway.retry.initial_interval", gw.Retry.InitialInterval)
	v.SetDefault("gateway.retry.max_interval", gw.Retry.MaxInterval)
	v.SetDefault("gateway.retry.multiplier", gw.Retry.Multiplier)
	v.SetDefault("gateway.retry.randomization_factor", gw.Retry.RandomizationFactor)
	v.SetDefault("gateway.circuit_breaker.enabled", gw.CircuitBreaker.Enabled)
	v.SetDefault("gateway.circuit_breaker.failure_threshold", gw.CircuitBreaker.FailureThreshold)
	v.SetDefault("gateway.circuit_breaker.success_threshold", gw.CircuitBreaker.SuccessThreshold)
	v.SetDefault("gateway.circuit_breaker.open_timeout", gw.CircuitBreaker.OpenTimeout)
	v.SetDefault("gateway.circuit_breaker.max_half_open_requests", gw.CircuitBreaker.MaxHalfOpenRequests)

	rl := resilience.DefaultRateLimiterConfig()
	v.SetDefault("rate_limit.enabled", rl.Enabled)
	v.SetDefault("rate_limit.rate", rl.Rate)
	v.SetDefault("rate_limit.period", rl.Period)
	v.SetDefault("rate_limit.burst_size", rl.BurstSize)
	v.SetDefault("rate_limit.idle_ttl", rl.IdleTTL)

	cors := middleware.DefaultCORSConfig()
	v.SetDefault("cors.allow_origins", cors.AllowOrigins)
	v.SetDefault("cors.allow_methods", cors.AllowMethods)
	v.SetDefault("cors.allow_headers", cors.AllowHeaders)
	v.SetDefault("cors.expose_headers", cors.ExposeHeaders)
	v.SetDefault("cors.allow_credentials", cors.AllowCredentials)
	v.SetDefault("cors.max_age", cors.MaxAge)

	metrics := observability.DefaultMetricsConfig()
	v.SetDefault("metrics.enabled", metrics.Enabled)
	v.SetDefault("metrics.service_name", metrics.ServiceName)
	v.SetDefault("metrics.prometheus_path", metrics.PrometheusPath)

	tracing := observability.DefaultTracingConfig()
	v.SetDefault("tracing.enabled", tracing.Enabled)
	v.SetDefault("tracing.service_name", tracing.ServiceName)
	v.SetDefault("tracing.service_version", tracing.ServiceVersion)
	v.SetDefault("tracing.environment", "")
	v.SetDefault("tracing.exporter_type", tracing.ExporterType)
	v.SetDefault("tracing.otlp_endpoint", tracing.OTLPEndpoint)
	v.SetDefault("tracing.otlp_insecure", tracing.OTLPInsecure)
	v.SetDefault("tracing.sampling_rate", tracing.SamplingRate)
	v.SetDefault("tracing.propagator_type", tracing.PropagatorType)
}

func (c *Config) applyDerivedDefaults() {
	c.App.Environment = strings.ToLower(strings.TrimSpace(c.App.Environment))
	if c.Database.Driver == "" {
		if c.Database.URL != "" {
			c.Database.Driver = string(DriverPostgres)
		} else {
			c.Database.Driver = string(DriverMemory)
		}
	}
	if c.Tracing.Environment == "" {
		c.Tracing.Environment = c.App.Environment
	}
	if c.Tracing.ServiceVersion == "" {
		c.Tracing.ServiceVersion = c.App.Version
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}

	switch DatabaseDriver(c.Database.Driver) {
	case DriverMemory, DriverSQLite, DriverPostgres, DriverMySQL, DriverMongoDB:
	default:
		errs = append(errs, fmt.Errorf("unsupported database.driver %q", c.Database.Driver))
	}

	if c.IsProduction() {
		if c.Database.IsMemory() {
			errs = append(errs, errors.New("the memory database driver cannot be used in production"))
		}
		if c.Database.IsPostgres() && !hasPostgresScheme(c.Database.URL) {
			errs = append(errs, errors.New("database.url must be a postgres:// or postgresql:// URL in production"))
		}
	}

	if c.Gateway.Timeout <= 0 {
		errs = append(errs, errors.New("gateway.timeout must be positive"))
	}
	switch c.Gateway.Driver {
	case gateway.DriverHTTP, gateway.DriverLocal:
	default:
		errs = append(errs, fmt.Errorf("unsupported gateway.driver %q", c.Gateway.Driver))
	}

	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		errs = append(errs, errors.New("redis.ttl must be positive when the cache is enabled"))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate < 1 || c.RateLimit.Period <= 0) {
		errs = append(errs, errors.New("rate_limit.rate and rate_limit.period must be positive"))
	}

	return errors.Join(errs...)
}

func hasPostgresScheme(url string) bool {
	return strings.HasPrefix(url, "postgres://") || strings.HasPrefix(url, "postgresql://")
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.App.Environment == EnvProduction
}

// DSN returns the connection string for SQL drivers
func (c *DatabaseConfig) DSN() string {
	switch DatabaseDriver(c.Driver) {
	case DriverPostgres:
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
	case DriverMySQL:
		if c.URL != "" {
			return c.URL
		}
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.User, c.Password, c.Host, c.Port, c.Name)
	case DriverSQLite:
		if c.URL != "" {
			return c.URL
		}
		return c.Path
	default:
		return ""
	}
}

// IsMemory returns true if documents live in process memory
func (c *DatabaseConfig) IsMemory() bool {
	return c.Driver == string(DriverMemory)
}

// IsMongoDB returns true if MongoDB driver is configured.
func (c *DatabaseConfig) IsMongoDB() bool {
	return c.Driver == string(DriverMongoDB)
}

// IsSQL returns true if a gorm-backed driver is configured.
func (c *DatabaseConfig) IsSQL() bool {
	switch DatabaseDriver(c.Driver) {
	case DriverSQLite, DriverPostgres, DriverMySQL:
		return true
	}
	return false
}

// IsPostgres returns true if PostgreSQL driver is configured.
func (c *DatabaseConfig) IsPostgres() bool {
	return c.Driver == string(DriverPostgres)
}
