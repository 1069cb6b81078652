package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Port        string `env:"PORT" envDefault:"8080"`
	GinMode     string `env:"GIN_MODE" envDefault:"release"`
	PostgresURL string `env:"POSTGRES_URL"`
	JWTSecret   string `env:"JWT_SECRET"`
	CronSecret  string `env:"CRON_SECRET"`
	Timezone    string `env:"TIMEZONE" envDefault:"Asia/Seoul"`
	BrandDomain string `env:"BRAND_DOMAIN" envDefault:"http://localhost:8080"`

	Log     LogConfig     `envPrefix:"LOG_"`
	Toss    TossConfig    `envPrefix:"TOSS_"`
	Renewal RenewalConfig `envPrefix:"RENEWAL_"`

	Cache   CacheConfig
	Billing BillingConfig
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"console"` // console | json
}

// CacheConfig controls the slug lookup cache. An empty RedisURL selects the
// in-process store.
type CacheConfig struct {
	RedisURL string        `env:"REDIS_URL"`
	TTL      time.Duration `env:"LINK_CACHE_TTL" envDefault:"5m"`
}

type TossConfig struct {
	SecretKey string        `env:"SECRET_KEY"`
	BaseURL   string        `env:"BASE_URL" envDefault:"https://api.tosspayments.com/v1"`
	Timeout   time.Duration `env:"TIMEOUT" envDefault:"10s"`
}

type BillingConfig struct {
	ProPrice     int64  `env:"PRO_PRICE" envDefault:"4900"`
	ProOrderName string `env:"PRO_ORDER_NAME" envDefault:"LinkHub Pro 구독"`
}

type RenewalConfig struct {
	Enabled bool   `env:"ENABLED" envDefault:"false"`
	Cron    string `env:"CRON" envDefault:"0 3 * * *"`
	// Per-subscription budget covering the charge and the local write.
	PerSubscriptionTimeout time.Duration `env:"PER_SUBSCRIPTION_TIMEOUT" envDefault:"30s"`
	// Upper bound for one scheduled batch.
	RunTimeout time.Duration `env:"RUN_TIMEOUT" envDefault:"30m"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	// The .env file is optional.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	if c.Billing.ProPrice <= 0 {
		return errors.New("PRO_PRICE must be positive")
	}
	if c.Toss.Timeout <= 0 {
		return errors.New("TOSS_TIMEOUT must be positive")
	}
	return nil
}

// Location returns the zone used for calendar-day boundaries.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
