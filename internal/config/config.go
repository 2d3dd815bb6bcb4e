package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

// DevSecretKey is the default signing key. It is refused in production.
const DevSecretKey = "dev-secret"

// Config holds all configuration for the application
type Config struct {
	Env    string
	DB     DatabaseConfig
	Auth   AuthConfig
	App    AppConfig
	Redis  RedisConfig
	Logger LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // seconds
	ConnMaxIdleTime int // seconds
	AutoMigrate     bool
}

// AuthConfig holds token signing and password hashing settings
type AuthConfig struct {
	SecretKey                string
	Algorithm                string
	AccessTokenExpireMinutes int
	BcryptCost               int
}

// AccessTokenTTL returns the token lifetime as a duration.
func (a AuthConfig) AccessTokenTTL() time.Duration {
	return time.Duration(a.AccessTokenExpireMinutes) * time.Minute
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	HTTPPort               string
	GRPCPort               string // empty disables the gRPC listener
	AllowOrigins           []string
	ShutdownTimeoutSeconds int
}

// RedisConfig holds configuration for the optional user cache
type RedisConfig struct {
	Enabled         bool
	Host            string
	Port            string
	Password        string
	DB              int
	PoolSize        int
	CacheTTLSeconds int
}

// CacheTTL returns the cache entry lifetime as a duration.
func (r RedisConfig) CacheTTL() time.Duration {
	return time.Duration(r.CacheTTLSeconds) * time.Second
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string
	Format           string
	OutputPath       string
	SlowQuerySeconds float64
	EnableSampling   bool
	ServiceName      string
	ServiceVersion   string
}

// Load reads configuration from an optional app.env file in path and from
// environment variables, which take precedence.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	setDefaults(v)

	var cfg Config
	cfg.Env = v.GetString("APP_ENV")

	cfg.DB.URL = v.GetString("DATABASE_URL")
	cfg.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	cfg.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	cfg.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	cfg.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")
	cfg.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")

	cfg.Auth.SecretKey = v.GetString("SECRET_KEY")
	cfg.Auth.Algorithm = v.GetString("ALGORITHM")
	cfg.Auth.AccessTokenExpireMinutes = v.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")
	cfg.Auth.BcryptCost = v.GetInt("BCRYPT_COST")

	cfg.App.HTTPPort = v.GetString("HTTP_PORT")
	cfg.App.GRPCPort = v.GetString("GRPC_PORT")
	cfg.App.AllowOrigins = splitOrigins(v.GetString("ALLOW_ORIGINS"))
	cfg.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")

	cfg.Redis.Enabled = v.GetBool("REDIS_ENABLED")
	cfg.Redis.Host = v.GetString("REDIS_HOST")
	cfg.Redis.Port = v.GetString("REDIS_PORT")
	cfg.Redis.Password = v.GetString("REDIS_PASSWORD")
	cfg.Redis.DB = v.GetInt("REDIS_DB")
	cfg.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	cfg.Redis.CacheTTLSeconds = v.GetInt("REDIS_CACHE_TTL_SECONDS")

	cfg.Logger.Level = v.GetString("LOG_LEVEL")
	cfg.Logger.Format = v.GetString("LOG_FORMAT")
	cfg.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	cfg.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	cfg.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	cfg.Logger.ServiceName = v.GetString("SERVICE_NAME")
	cfg.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")

	v.SetDefault("DATABASE_URL", "sqlite://./ozo.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("SECRET_KEY", DevSecretKey)
	v.SetDefault("ALGORITHM", "HS256")
	v.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	v.SetDefault("BCRYPT_COST", bcrypt.DefaultCost)

	v.SetDefault("HTTP_PORT", "8000")
	v.SetDefault("GRPC_PORT", "")
	v.SetDefault("ALLOW_ORIGINS", "*")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)

	// Logger defaults depend on the environment
	if v.GetString("APP_ENV") == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "ozo-backend")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// splitOrigins parses a comma separated origin list. An empty value means "*".
func splitOrigins(raw string) []string {
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// Validate checks that the configuration can start the service.
func (c *Config) Validate() error {
	var errs []error

	if c.DB.URL == "" {
		errs = append(errs, errors.New("DATABASE_URL must not be empty"))
	}
	if c.Auth.SecretKey == "" {
		errs = append(errs, errors.New("SECRET_KEY must not be empty"))
	}
	if c.IsProduction() && c.Auth.SecretKey == DevSecretKey {
		errs = append(errs, errors.New("SECRET_KEY must be changed in production"))
	}
	if _, ok := jwt.GetSigningMethod(c.Auth.Algorithm).(*jwt.SigningMethodHMAC); !ok {
		errs = append(errs, fmt.Errorf("ALGORITHM %q is not supported, use HS256, HS384 or HS512", c.Auth.Algorithm))
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		errs = append(errs, errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive"))
	}
	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT must not be empty"))
	}
	if c.Redis.Enabled && c.Redis.CacheTTLSeconds <= 0 {
		errs = append(errs, errors.New("REDIS_CACHE_TTL_SECONDS must be positive when REDIS_ENABLED"))
	}

	return errors.Join(errs...)
}

// IsProduction reports whether APP_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
