package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string        `env:"PORT,       default=8080"`
	Env       string        `env:"ENV,        default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	TokenTTL  time.Duration `env:"JWT_TTL,    default=1h"`
	LogLevel  string        `env:"LOG_LEVEL,  default=info"`

	Store StoreConfig
	Redis RedisConfig
}

// StoreConfig selects the document-store backend once at startup: a set
// MONGO_URI means the managed backend, otherwise the file-backed simulator
// persists to File.
type StoreConfig struct {
	MongoURI string `env:"MONGO_URI"`
	MongoDB  string `env:"MONGO_DB,   default=identity_system"`
	File     string `env:"STORE_FILE, default=local_store.json"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
