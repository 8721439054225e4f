package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/Osomudeya/retoucher-demo/internal/domain"
)

type Config struct {
	Port               int           `envconfig:"PORT" default:"8080"`
	Env                string        `envconfig:"ENV" default:"development"`
	LogLevel           string        `envconfig:"LOG_LEVEL" default:"debug"`
	CORSAllowedOrigins []string      `envconfig:"CORS_ALLOWED_ORIGINS" default:"*"`
	CORSAllowedMethods []string      `envconfig:"CORS_ALLOWED_METHODS" default:"GET,POST,PUT,DELETE,OPTIONS"`
	CORSAllowedHeaders []string      `envconfig:"CORS_ALLOWED_HEADERS" default:"Origin,Content-Type,Accept,X-Request-ID,X-Admin-Key"`
	ShutdownTimeout    time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"5s"`

	DBHost           string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort           int           `envconfig:"DB_PORT" default:"5432"`
	DBName           string        `envconfig:"DB_NAME" default:"webapp"`
	DBUser           string        `envconfig:"DB_USER" default:"adminuser"`
	DBPassword       string        `envconfig:"DB_PASSWORD" default:""`
	DBSSL            bool          `envconfig:"DB_SSL" default:"false"`
	DBMaxOpenConns   int           `envconfig:"DB_MAX_OPEN_CONNS" default:"10"`
	DBIdleTimeout    time.Duration `envconfig:"DB_IDLE_TIMEOUT" default:"30s"`
	DBConnectTimeout time.Duration `envconfig:"DB_CONNECT_TIMEOUT" default:"10s"`
	DBQueryTimeout   time.Duration `envconfig:"DB_QUERY_TIMEOUT" default:"10s"`

	AdminKey        string `envconfig:"ADMIN_KEY" required:"true"`
	MemoryThreshold uint64 `envconfig:"MEMORY_THRESHOLD_BYTES" default:"524288000"`

	RedisURL         string `envconfig:"REDIS_URL" default:""`
	RateLimitEnabled bool   `envconfig:"RATE_LIMIT_ENABLED" default:"false"`
	RateLimitIPRPM   int    `envconfig:"RATE_LIMIT_IP_RPM" default:"60"`

	Version, Commit, BuildDate string
}

func Load(version, commit, buildDate string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	cfg.Version, cfg.Commit, cfg.BuildDate = version, commit, buildDate
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: PORT %d out of range", domain.ErrInvalidConfig, c.Port)
	}
	if c.DBMaxOpenConns < 1 {
		return fmt.Errorf("%w: DB_MAX_OPEN_CONNS must be positive", domain.ErrInvalidConfig)
	}
	if c.RateLimitEnabled && c.RateLimitIPRPM < 1 {
		return fmt.Errorf("%w: RATE_LIMIT_IP_RPM must be positive", domain.ErrInvalidConfig)
	}
	return nil
}
