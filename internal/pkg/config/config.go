package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Session slot backends.
const (
	SessionStoreFile   = "file"
	SessionStoreRedis  = "redis"
	SessionStoreMemory = "memory"
)

// Credential repository backends.
const (
	CredentialStoreMemory = "memory"
	CredentialStoreMongo  = "mongo"
)

type Config struct {
	Port     string `env:"PORT,      default=8080"`
	Env      string `env:"ENV,       default=development"`
	LogLevel string `env:"LOG_LEVEL, default=info"`

	Session     SessionConfig
	Credentials CredentialConfig
	Notify      NotifyConfig

	Mongo MongoConfig
	Redis RedisConfig
}

type SessionConfig struct {
	Store string `env:"SESSION_STORE, default=file"`
	File  string `env:"SESSION_FILE,  default=data/session.json"`
	// SigningKey switches the slot record from plain JSON to an HS256 token.
	SigningKey string        `env:"SESSION_SIGNING_KEY"`
	Latency    time.Duration `env:"SESSION_LATENCY, default=0s"`
}

type CredentialConfig struct {
	Store string `env:"CREDENTIAL_STORE, default=memory"`
	Seed  bool   `env:"CREDENTIAL_SEED,  default=true"`
}

type NotifyConfig struct {
	Workers int `env:"NOTIFY_WORKERS, default=4"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=homecare_portal"`
}

type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR, default=localhost:6379"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB,   default=0"`
	Key      string `env:"REDIS_KEY,  default=careportal:session:identity"`
}

// IsDevelopment reports whether the service runs with developer defaults
// (console logs).
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects unknown backend names.
func (c *Config) Validate() error {
	switch c.Session.Store {
	case SessionStoreFile, SessionStoreRedis, SessionStoreMemory:
	default:
		return fmt.Errorf("config: unknown SESSION_STORE %q", c.Session.Store)
	}
	switch c.Credentials.Store {
	case CredentialStoreMemory, CredentialStoreMongo:
	default:
		return fmt.Errorf("config: unknown CREDENTIAL_STORE %q", c.Credentials.Store)
	}
	if c.Session.Latency < 0 {
		return fmt.Errorf("config: SESSION_LATENCY must not be negative")
	}
	return nil
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := LoadWith(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

// LoadWith reads configuration through l and validates it.
func LoadWith(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   &cfg,
		Lookuper: l,
	}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
