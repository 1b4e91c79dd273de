// Package config loads storefront settings from an optional YAML file and
// STOREFRONT_* environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP            HTTPConfig         `mapstructure:"http"`
	Database        DatabaseConfig     `mapstructure:"database"`
	Redis           RedisConfig        `mapstructure:"redis"`
	Identity        IdentityConfig     `mapstructure:"identity"`
	Checkout        CheckoutConfig     `mapstructure:"checkout"`
	Segmentation    SegmentationConfig `mapstructure:"segmentation"`
	ShutdownTimeout time.Duration      `mapstructure:"shutdown_timeout"`
}

type HTTPConfig struct {
	Port int `mapstructure:"port"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
	Debug  bool   `mapstructure:"debug"`
}

type RedisConfig struct {
	// Addr empty disables the catalog cache and the shared rate limiter.
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type IdentityConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
	AdminRole string `mapstructure:"admin_role"`
}

type CheckoutConfig struct {
	PersistTimeout time.Duration    `mapstructure:"persist_timeout"`
	DeliveryFees   map[string]int64 `mapstructure:"delivery_fees"`
	// RateLimit is the number of order submissions allowed per client per minute.
	RateLimit int `mapstructure:"rate_limit"`
}

type SegmentationConfig struct {
	VIPThreshold    int64 `mapstructure:"vip_threshold"`
	ChurnWindowDays int   `mapstructure:"churn_window_days"`
}

// SetDefaults registers a default for every key so environment overrides
// are picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("http.port", 3000)

	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "storefront.db")
	v.SetDefault("database.debug", false)

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "catalog:")
	v.SetDefault("redis.ttl", 5*time.Minute)

	v.SetDefault("identity.jwt_secret", "dev-secret-change-me")
	v.SetDefault("identity.issuer", "")
	v.SetDefault("identity.admin_role", "admin")

	v.SetDefault("checkout.persist_timeout", 5*time.Second)
	v.SetDefault("checkout.delivery_fees.pickup_point", 300)
	v.SetDefault("checkout.delivery_fees.courier", 600)
	v.SetDefault("checkout.rate_limit", 20)

	v.SetDefault("segmentation.vip_threshold", 15000)
	v.SetDefault("segmentation.churn_window_days", 90)

	v.SetDefault("shutdown_timeout", 30*time.Second)
}

// Load reads configuration. A missing config file is not an error unless
// path was given explicitly.
func Load(path string) (*Config, error) {
	v := viper.New()
	SetDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("storefront")
		v.SetConfigType("yaml")
		v.AddConfigPath("./")
		v.AddConfigPath("/etc/storefront/")
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	switch c.Database.Driver {
	case "sqlite", "postgres":
	default:
		return fmt.Errorf("database.driver must be sqlite or postgres, got %q", c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Identity.JWTSecret == "" {
		return fmt.Errorf("identity.jwt_secret is required")
	}
	if c.Checkout.PersistTimeout <= 0 {
		return fmt.Errorf("checkout.persist_timeout must be positive")
	}
	if len(c.Checkout.DeliveryFees) == 0 {
		return fmt.Errorf("checkout.delivery_fees must list at least one method")
	}
	for method, fee := range c.Checkout.DeliveryFees {
		if fee < 0 {
			return fmt.Errorf("checkout.delivery_fees.%s must not be negative", method)
		}
	}
	if c.Segmentation.VIPThreshold <= 0 {
		return fmt.Errorf("segmentation.vip_threshold must be positive")
	}
	if c.Segmentation.ChurnWindowDays < 1 {
		return fmt.Errorf("segmentation.churn_window_days must be at least 1")
	}
	return nil
}

// RedisEnabled reports whether a Redis address is configured.
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
