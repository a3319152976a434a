package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

const developmentSecret = "development-only-secret"

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Instance     InstanceConfig
	Auth         AuthConfig
	Confirmation ConfirmationConfig
	Mongo        MongoConfig
	Redis        RedisConfig
}

// InstanceConfig describes the public identity of this server.
type InstanceConfig struct {
	URL           string `env:"INSTANCE_URL,   default=http://localhost:8080"`
	DefaultAvatar string `env:"DEFAULT_AVATAR, default=http://localhost:8080/static/userpic_placeholder.svg"`
	DefaultHeader string `env:"DEFAULT_HEADER, default=http://localhost:8080/static/default_header.png"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	TokenTTL   time.Duration `env:"TOKEN_TTL,   default=240h"`
	BcryptCost int           `env:"BCRYPT_COST, default=10"`
}

type ConfirmationConfig struct {
	Required bool          `env:"CONFIRM_REQUIRED, default=true"`
	TTL      time.Duration `env:"CONFIRM_TTL,      default=24h"`
	Workers  int           `env:"CONFIRM_WORKERS,  default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017/?replicaSet=rs0"`
	Database string `env:"MONGO_DB,  default=reel2bits"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, lookuper envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: lookuper,
	}); err != nil {
		return nil, err
	}
	if cfg.Auth.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return nil, fmt.Errorf("JWT_SECRET is required outside development")
		}
		cfg.Auth.JWTSecret = developmentSecret
	}
	return &cfg, nil
}
