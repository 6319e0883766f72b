package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port          string `env:"PORT,           default=8080"`
	Env           string `env:"ENV,            default=development"`
	LogLevel      string `env:"LOG_LEVEL,      default=info"`
	SessionHeader string `env:"SESSION_HEADER, default=X-Session-Token"`

	HTTP      HTTPConfig
	Store     StoreConfig
	Redis     RedisConfig
	Security  SecurityConfig
	Bootstrap BootstrapConfig
}

type HTTPConfig struct {
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT,     default=10s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT,    default=15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT,     default=60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT, default=10s"`
}

type StoreConfig struct {
	// DatabaseURL selects the backend: postgres:// and mongodb:// URLs, or a
	// SQLite file path / ":memory:".
	DatabaseURL string `env:"DATABASE_URL, default=rbac.db"`
	MongoDB     string `env:"MONGO_DB,     default=rbac"`
	LogSQL      bool   `env:"DB_LOG_SQL,   default=false"`
}

type RedisConfig struct {
	// Addr enables the session cache when set.
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,          default=0"`
	TTL      time.Duration `env:"SESSION_CACHE_TTL, default=1h"`
}

type SecurityConfig struct {
	BcryptCost int `env:"BCRYPT_COST, default=12"`
}

type BootstrapConfig struct {
	AdminEmail    string `env:"ADMIN_EMAIL,    default=admin@example.com"`
	AdminPassword string `env:"ADMIN_PASSWORD, default=admin123"`
	DefaultRole   string `env:"DEFAULT_ROLE,   default=user"`
}

// IsDevelopment reports whether the service runs in a local environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development" || c.Env == "local"
}

// Load reads an optional .env file and then the process environment.
// Variables already set in the environment win over .env entries.
func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("config: read .env: %w", err)
	}
	return load(ctx, envconfig.OsLookuper())
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("config: failed to load configuration: %w", err)
	}
	return &cfg, nil
}
