package app

import (
	"errors"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config holds runtime configuration for the application.
type Config struct {
	AppEnv            string        `envconfig:"APP_ENV" default:"development"`
	AppAddr           string        `envconfig:"APP_ADDR" default:":8080"`
	AppReadTimeout    time.Duration `envconfig:"APP_READ_TIMEOUT" default:"15s"`
	AppWriteTimeout   time.Duration `envconfig:"APP_WRITE_TIMEOUT" default:"15s"`
	AppRequestTimeout time.Duration `envconfig:"APP_REQUEST_TIMEOUT" default:"30s"`

	LogFormat string `envconfig:"LOG_FORMAT" default:"pretty"`

	RedisAddr     string        `envconfig:"REDIS_ADDR" default:"127.0.0.1:6379"`
	SessionSecret string        `envconfig:"SESSION_SECRET" required:"true"`
	SessionTTL    time.Duration `envconfig:"SESSION_TTL" default:"720h"`

	CSRFSecret string `envconfig:"CSRF_SECRET" required:"true"`

	APIBase  string `envconfig:"API_BASE" required:"true"`
	APIToken string `envconfig:"API_TOKEN" required:"true"`

	CacheTTL       time.Duration `envconfig:"CACHE_TTL" default:"5m"`
	WarmupInterval time.Duration `envconfig:"WARMUP_INTERVAL" default:"5m"`

	StylesPath         string `envconfig:"CONFIG_COLORES" default:"config_colores.json"`
	UnmappedCodePolicy string `envconfig:"UNMAPPED_CODE_POLICY" default:"drop"`

	DashUsers string `envconfig:"DASH_USERS" required:"true"`

	CreditLimit string `envconfig:"CREDIT_LIMIT" default:"180000000"`
}

// LoadConfig reads configuration from the environment, seeding it from
// a .env file when one is present.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("session secret must be provided")
	}
	if cfg.CSRFSecret == "" {
		return nil, errors.New("csrf secret must be provided")
	}
	if _, err := decimal.NewFromString(cfg.CreditLimit); err != nil {
		return nil, errors.New("credit limit must be a decimal number")
	}
	return &cfg, nil
}

// CreditLimitAmount returns the configured credit line as a decimal.
func (c *Config) CreditLimitAmount() decimal.Decimal {
	v, err := decimal.NewFromString(c.CreditLimit)
	if err != nil {
		return decimal.Zero
	}
	return v
}

// IsProduction returns true when the application runs in production.
func (c *Config) IsProduction() bool {
	return c != nil && c.AppEnv == "production"
}
