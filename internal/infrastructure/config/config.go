package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port            string        `env:"PORT,             default=8080"`
	Env             string        `env:"ENV,              default=development"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT, default=10s"`

	Log    LogConfig
	Auth   AuthConfig
	Mongo  MongoConfig
	Redis  RedisConfig
	Notify NotifyConfig
	Jobs   JobsConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL,  default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

type AuthConfig struct {
	JWTSecret          string        `env:"JWT_SECRET, required"`
	TokenTTL           time.Duration `env:"JWT_TTL,                 default=720h"`
	PasswordMinLength  int           `env:"AUTH_PASSWORD_MIN,       default=6"`
	BcryptCost         int           `env:"AUTH_BCRYPT_COST,        default=10"`
	ResetTokenTTL      time.Duration `env:"AUTH_RESET_TTL,          default=10m"`
	ExposeResetToken   bool          `env:"AUTH_EXPOSE_RESET_TOKEN, default=false"`
	LoginMaxAttempts   int           `env:"AUTH_LOGIN_MAX_ATTEMPTS, default=5"`
	LoginAttemptWindow time.Duration `env:"AUTH_LOGIN_WINDOW,       default=15m"`

	// Seed for the first administrator. Both empty disables seeding.
	AdminEmail    string `env:"ADMIN_EMAIL"`
	AdminPassword string `env:"ADMIN_PASSWORD"`
}

type MongoConfig struct {
	URI      string        `env:"MONGO_URI,     default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string        `env:"MONGO_DB,      default=client_manager"`
	Timeout  time.Duration `env:"MONGO_TIMEOUT, default=10s"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR,     default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,       default=0"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
}

type JobsConfig struct {
	Interval time.Duration `env:"MAINTENANCE_INTERVAL, default=1h"`
}

// IsDevelopment reports whether the process runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from the process environment.
func Load(ctx context.Context) (*Config, error) {
	return LoadFrom(ctx, envconfig.OsLookuper())
}

// LoadFrom reads configuration through lookuper and validates it.
func LoadFrom(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: lookuper}); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch {
	case len(c.Auth.JWTSecret) < 16:
		return fmt.Errorf("JWT_SECRET must be at least 16 characters")
	case c.Auth.PasswordMinLength < 1:
		return fmt.Errorf("AUTH_PASSWORD_MIN must be positive")
	case c.Auth.BcryptCost < 4 || c.Auth.BcryptCost > 31:
		return fmt.Errorf("AUTH_BCRYPT_COST must be between 4 and 31")
	case c.Auth.TokenTTL <= 0:
		return fmt.Errorf("JWT_TTL must be positive")
	case c.Auth.AdminPassword != "" && c.Auth.AdminEmail == "":
		return fmt.Errorf("ADMIN_PASSWORD requires ADMIN_EMAIL")
	}
	return nil
}
