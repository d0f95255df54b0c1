package api

import (
	"testing"
	"time"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.ListenAddr != ":8080" || cfg.ServerDBPath != "./data/server.db" {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.ShutdownTimeout != 30*time.Second || cfg.MaxDocumentBytes != 10<<20 {
		t.Fatalf("defaults: %+v", cfg)
	}
	if cfg.LogFormat != "json" || cfg.LogLevel != "info" {
		t.Fatalf("log defaults: %+v", cfg)
	}
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("SYNC_LISTEN_ADDR", "127.0.0.1:9999")
	t.Setenv("SYNC_SERVER_DB_PATH", "/tmp/s.db")
	t.Setenv("SYNC_SHUTDOWN_TIMEOUT", "5s")
	t.Setenv("SYNC_LOG_FORMAT", "TEXT")
	t.Setenv("SYNC_LOG_LEVEL", "Debug")
	t.Setenv("SYNC_MAX_DOCUMENT_BYTES", "2048")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := Config{
		ListenAddr:       "127.0.0.1:9999",
		ServerDBPath:     "/tmp/s.db",
		ShutdownTimeout:  5 * time.Second,
		LogFormat:        "text",
		LogLevel:         "debug",
		MaxDocumentBytes: 2048,
	}
	if cfg != want {
		t.Fatalf("got %+v, want %+v", cfg, want)
	}
}

func TestLoadConfigInvalid(t *testing.T) {
	t.Setenv("SYNC_SHUTDOWN_TIMEOUT", "soon")
	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for invalid duration")
	}
}
