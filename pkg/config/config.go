package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	RateLimit    RateLimitConfig
	FeatureFlags FeatureFlagsConfig
	Invoicing    InvoicingConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"STOCKBILL_APP_ENV" required:"true"`
	Port         string `envconfig:"STOCKBILL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"STOCKBILL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"STOCKBILL_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"STOCKBILL_DB_DSN"`
	Driver string `envconfig:"STOCKBILL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"STOCKBILL_DB_HOST"`
	LegacyPort     int    `envconfig:"STOCKBILL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"STOCKBILL_DB_USER"`
	LegacyPassword string `envconfig:"STOCKBILL_DB_PASSWORD"`
	LegacyName     string `envconfig:"STOCKBILL_DB_NAME"`
	LegacySSLMode  string `envconfig:"STOCKBILL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"STOCKBILL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"STOCKBILL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"STOCKBILL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"STOCKBILL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

// ensureDSN assembles a postgres DSN from the discrete legacy variables when the
// flat DSN is not provided.
func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.LegacyHost == "" || d.LegacyUser == "" || d.LegacyName == "" {
		return fmt.Errorf("either STOCKBILL_DB_DSN or STOCKBILL_DB_HOST/USER/NAME must be set")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.LegacyUser, d.LegacyPassword),
		Host:   fmt.Sprintf("%s:%d", d.LegacyHost, d.LegacyPort),
		Path:   d.LegacyName,
	}
	q := u.Query()
	q.Set("sslmode", d.LegacySSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"STOCKBILL_REDIS_URL"`
	Address      string        `envconfig:"STOCKBILL_REDIS_ADDR"`
	Password     string        `envconfig:"STOCKBILL_REDIS_PASSWORD"`
	DB           int           `envconfig:"STOCKBILL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"STOCKBILL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"STOCKBILL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"STOCKBILL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"STOCKBILL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"STOCKBILL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"STOCKBILL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"STOCKBILL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"STOCKBILL_JWT_EXPIRATION_MINUTES" default:"60"`
}

// RateLimitConfig throttles the posting endpoints per organization. A zero
// window or limit disables throttling.
type RateLimitConfig struct {
	PostingWindow time.Duration `envconfig:"STOCKBILL_RATE_LIMIT_POSTING_WINDOW" default:"1m"`
	PostingLimit  int           `envconfig:"STOCKBILL_RATE_LIMIT_POSTING_LIMIT" default:"30"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"STOCKBILL_FEATURE_AUTO_MIGRATE" default:"false"`
}

// InvoicingConfig tunes invoice numbering and posting behavior.
type InvoicingConfig struct {
	NumberPrefix       string        `envconfig:"STOCKBILL_INVOICE_NUMBER_PREFIX" default:"INV"`
	PostIdempotencyTTL time.Duration `envconfig:"STOCKBILL_POST_IDEMPOTENCY_TTL" default:"168h"`
}
