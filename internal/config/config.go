package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"

	"github.com/jwalitptl/walkin-api/internal/model"
	"github.com/jwalitptl/walkin-api/pkg/validator"
)

// EnvPrefix prefixes every environment override, e.g. WALKIN_DATABASE_URL.
const EnvPrefix = "walkin"

type Config struct {
	Server    ServerConfig         `mapstructure:"server"`
	Database  DatabaseConfig       `mapstructure:"database"`
	Redis     RedisConfig          `mapstructure:"redis"`
	JWT       JWTConfig            `mapstructure:"jwt"`
	Staff     []model.StaffAccount `mapstructure:"staff" ignored:"true" validate:"dive"`
	RateLimit RateLimitConfig      `mapstructure:"rate_limit" split_words:"true"`
	CORS      CORSConfig           `mapstructure:"cors"`
	Log       LogConfig            `mapstructure:"log"`
	Metrics   MetricsConfig        `mapstructure:"metrics"`
}

type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Mode         string        `mapstructure:"mode" validate:"oneof=debug release test"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout" split_words:"true"`
	WriteTimeout time.Duration `mapstructure:"write_timeout" split_words:"true"`
	// LoginURL is where unauthenticated print pages are redirected.
	LoginURL string `mapstructure:"login_url" split_words:"true" validate:"required"`
}

type DatabaseConfig struct {
	Store           string        `mapstructure:"store" validate:"oneof=memory postgres"`
	URL             string        `mapstructure:"url" validate:"required_if=Store postgres"`
	MaxOpenConns    int           `mapstructure:"max_open_conns" split_words:"true" validate:"min=0"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" split_words:"true" validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" split_words:"true"`
}

type RedisConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	URL          string        `mapstructure:"url" validate:"required_if=Enabled true"`
	Key          string        `mapstructure:"key" validate:"required"`
	MaxRetries   int           `mapstructure:"max_retries" split_words:"true"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff" split_words:"true"`
	PoolSize     int           `mapstructure:"pool_size" split_words:"true"`
	MinIdleConns int           `mapstructure:"min_idle_conns" split_words:"true"`
}

type JWTConfig struct {
	Secret      string `mapstructure:"secret" validate:"required,min=16"`
	ExpiryHours int    `mapstructure:"expiry_hours" split_words:"true" validate:"min=1"`
	Issuer      string `mapstructure:"issuer"`
}

func (c JWTConfig) Expiry() time.Duration {
	return time.Duration(c.ExpiryHours) * time.Hour
}

type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" split_words:"true" validate:"required_if=Enabled true"`
	Burst             int     `mapstructure:"burst" validate:"min=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins" split_words:"true"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format" validate:"oneof=console json"`
}

type MetricsConfig struct {
	Namespace string `mapstructure:"namespace" validate:"required"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "release")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "15s")
	v.SetDefault("server.login_url", "/login")

	v.SetDefault("database.store", "memory")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.key", "walkin:patients:backup")
	v.SetDefault("redis.max_retries", 3)
	v.SetDefault("redis.retry_backoff", "500ms")
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)

	v.SetDefault("jwt.expiry_hours", 12)
	v.SetDefault("jwt.issuer", "walkin-api")

	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests_per_second", 20)
	v.SetDefault("rate_limit.burst", 40)

	v.SetDefault("cors.allowed_origins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("metrics.namespace", "walkin")
}

// LoadConfig reads config.yml from path, or from the usual search paths when
// path is empty, applies WALKIN_* environment overrides and validates the result.
// A missing file is only an error when path is given explicitly.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/app/config")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	if err := validator.New().Validate(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
