package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=3000"`
	Env       string `env:"ENV,       default=development"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`
	Service   string `env:"SERVICE_NAME, default=helpdesk-api"`
	Metrics   bool   `env:"METRICS_ENABLED, default=true"`
	JWTSecret string `env:"JWT_SECRET, required"`

	JWTExpiresIn time.Duration `env:"JWT_EXPIRES_IN, default=24h"`
	BcryptCost   int           `env:"BCRYPT_COST,    default=10"`

	Bootstrap BootstrapConfig
	DB        DBConfig
	Mongo     MongoConfig
	Redis     RedisConfig
}

// BootstrapConfig names the administrator created at startup when no user
// with that email exists. Both fields must be set for it to take effect.
type BootstrapConfig struct {
	Email    string `env:"BOOTSTRAP_ADMIN_EMAIL"`
	Password string `env:"BOOTSTRAP_ADMIN_PASSWORD"`
}

type DBConfig struct {
	Driver string `env:"DB_DRIVER, default=mysql"`
	Host   string `env:"DB_HOST,   default=localhost"`
	Port   int    `env:"DB_PORT,   default=3306"`
	User   string `env:"DB_USER,   default=root"`
	Pass   string `env:"DB_PASS"`
	Name   string `env:"DB_NAME,   default=helpdesk_db"`
	// DSN overrides the discrete settings above when set.
	DSN string `env:"DB_DSN"`

	MaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,     default=5"`
	MaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,     default=2"`
	ConnMaxIdleTime time.Duration `env:"DB_CONN_MAX_IDLE_TIME, default=10s"`
	QueryTimeout    time.Duration `env:"DB_QUERY_TIMEOUT,      default=10s"`
}

type MongoConfig struct {
	URI         string `env:"MONGO_URI,           default=mongodb://localhost:27017"`
	Database    string `env:"MONGO_DB,            default=helpdesk_db"`
	MaxPoolSize uint64 `env:"MONGO_MAX_POOL_SIZE, default=5"`
}

// RedisConfig configures the identity cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB,  default=0"`
	CacheTTL time.Duration `env:"CACHE_TTL, default=1m"`
}

// IsDevelopment reports whether error details may be shown to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads an optional .env file and then the process environment.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg, err := LoadFrom(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadFrom processes configuration from the given lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "mysql", "postgres", "sqlite", "mongo":
	default:
		return fmt.Errorf("DB_DRIVER: unsupported value %q", c.DB.Driver)
	}
	if (c.Bootstrap.Email == "") != (c.Bootstrap.Password == "") {
		return errors.New("BOOTSTRAP_ADMIN_EMAIL and BOOTSTRAP_ADMIN_PASSWORD must be set together")
	}
	if c.JWTExpiresIn <= 0 {
		return errors.New("JWT_EXPIRES_IN must be positive")
	}
	return nil
}
