package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server configuration, loaded from environment variables.
type Config struct {
	ListenAddr       string        `env:"SYNC_LISTEN_ADDR" envDefault:":8080"`
	ServerDBPath     string        `env:"SYNC_SERVER_DB_PATH" envDefault:"./data/server.db"`
	ShutdownTimeout  time.Duration `env:"SYNC_SHUTDOWN_TIMEOUT" envDefault:"30s"`
	LogFormat        string        `env:"SYNC_LOG_FORMAT" envDefault:"json"` // "json" or "text"
	LogLevel         string        `env:"SYNC_LOG_LEVEL" envDefault:"info"`  // "debug", "info", "warn", "error"
	MaxDocumentBytes int64         `env:"SYNC_MAX_DOCUMENT_BYTES" envDefault:"10485760"`
}

// LoadConfig reads configuration from environment variables with sensible defaults.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogFormat = strings.ToLower(cfg.LogFormat)
	cfg.LogLevel = strings.ToLower(cfg.LogLevel)
	if cfg.MaxDocumentBytes <= 0 {
		cfg.MaxDocumentBytes = 10 << 20
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
	return cfg, nil
}
