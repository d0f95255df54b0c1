// Package syncconfig reads and writes the dmscreen user configuration under
// ~/.config/dmscreen, with environment overrides.
package syncconfig

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backend names a remote store implementation
type Backend string

const (
	BackendHTTP Backend = "http"
	BackendS3   Backend = "s3"
)

// AutoSyncConfig holds auto-sync settings.
type AutoSyncConfig struct {
	Enabled  *bool  `json:"enabled,omitempty"`  // nil = default true
	Interval string `json:"interval,omitempty"` // duration string, default "5m"
}

// S3Config holds settings for the s3 backend.
type S3Config struct {
	Bucket       string `json:"bucket,omitempty"`
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	Prefix       string `json:"prefix,omitempty"`
	UsePathStyle bool   `json:"use_path_style,omitempty"`
}

// SyncConfig holds sync-related settings.
type SyncConfig struct {
	URL     string         `json:"url,omitempty"`
	Backend Backend        `json:"backend,omitempty"`
	S3      S3Config       `json:"s3"`
	Auto    AutoSyncConfig `json:"auto"`
}

// Config is the global config stored at ~/.config/dmscreen/config.json.
type Config struct {
	Sync SyncConfig `json:"sync"`
}

// AuthCredentials stores authentication state at ~/.config/dmscreen/auth.json.
type AuthCredentials struct {
	APIKey    string `json:"api_key"`
	UserID    string `json:"user_id"`
	ServerURL string `json:"server_url,omitempty"`
	DeviceID  string `json:"device_id"`
}

const (
	defaultServerURL = "http://localhost:8080"
	defaultInterval  = 5 * time.Minute
)

// ConfigDir returns ~/.config/dmscreen, creating it if necessary.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".config", "dmscreen")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create config dir: %w", err)
	}
	return dir, nil
}

// DataDir returns the directory holding the local state database.
// Priority: DMSCREEN_DATA_DIR env > ~/.config/dmscreen/data.
func DataDir() (string, error) {
	if v := os.Getenv("DMSCREEN_DATA_DIR"); v != "" {
		return v, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "data"), nil
}

// LoadConfig reads the global config from ~/.config/dmscreen/config.json.
func LoadConfig() (*Config, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "config.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config.json: %w", err)
	}
	return &cfg, nil
}

// SaveConfig writes the global config to ~/.config/dmscreen/config.json.
func SaveConfig(cfg *Config) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0644)
}

// LoadAuth reads auth credentials from ~/.config/dmscreen/auth.json.
// A missing file is nil, nil.
func LoadAuth() (*AuthCredentials, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(dir, "auth.json"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var creds AuthCredentials
	if err := json.Unmarshal(data, &creds); err != nil {
		return nil, fmt.Errorf("parse auth.json: %w", err)
	}
	return &creds, nil
}

// SaveAuth writes auth credentials to ~/.config/dmscreen/auth.json (0600 perms).
func SaveAuth(creds *AuthCredentials) error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(creds, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "auth.json"), data, 0600)
}

// ClearAuth removes the auth.json file.
func ClearAuth() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(dir, "auth.json"))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// GetServerURL returns the sync server URL.
// Priority: DMSCREEN_SYNC_URL env > auth.json server_url > config.json > default.
func GetServerURL() string {
	if v := os.Getenv("DMSCREEN_SYNC_URL"); v != "" {
		return v
	}
	if creds, err := LoadAuth(); err == nil && creds != nil && creds.ServerURL != "" {
		return creds.ServerURL
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.URL != "" {
		return cfg.Sync.URL
	}
	return defaultServerURL
}

// GetBackend returns the remote store backend.
// Priority: DMSCREEN_SYNC_BACKEND env > config.json > http.
func GetBackend() (Backend, error) {
	v := os.Getenv("DMSCREEN_SYNC_BACKEND")
	if v == "" {
		if cfg, err := LoadConfig(); err == nil {
			v = string(cfg.Sync.Backend)
		}
	}
	switch Backend(strings.ToLower(strings.TrimSpace(v))) {
	case "", BackendHTTP:
		return BackendHTTP, nil
	case BackendS3:
		return BackendS3, nil
	}
	return "", fmt.Errorf("unknown sync backend %q", v)
}

// GetS3Config returns the s3 backend settings from config.json.
func GetS3Config() S3Config {
	cfg, err := LoadConfig()
	if err != nil {
		return S3Config{}
	}
	return cfg.Sync.S3
}

// GetAPIKey returns the API key.
// Priority: DMSCREEN_AUTH_KEY env > auth.json.
func GetAPIKey() string {
	if v := os.Getenv("DMSCREEN_AUTH_KEY"); v != "" {
		return v
	}
	creds, err := LoadAuth()
	if err == nil && creds != nil {
		return creds.APIKey
	}
	return ""
}

// GetUserID returns the user identity documents are keyed by.
// Priority: DMSCREEN_USER_ID env > auth.json.
func GetUserID() string {
	if v := os.Getenv("DMSCREEN_USER_ID"); v != "" {
		return v
	}
	creds, err := LoadAuth()
	if err == nil && creds != nil {
		return creds.UserID
	}
	return ""
}

// IsAuthenticated returns true if a user identity is available.
func IsAuthenticated() bool {
	return GetUserID() != ""
}

// GetDeviceID returns the device ID from auth.json, generating one if needed.
func GetDeviceID() (string, error) {
	creds, err := LoadAuth()
	if err != nil {
		return "", err
	}
	if creds != nil && creds.DeviceID != "" {
		return creds.DeviceID, nil
	}
	return GenerateDeviceID(), nil
}

// GenerateDeviceID creates a new random device ID.
func GenerateDeviceID() string {
	return uuid.NewString()
}

// parseBoolEnv returns nil if env not set, pointer to bool if set.
func parseBoolEnv(envKey string) *bool {
	v := os.Getenv(envKey)
	if v == "" {
		return nil
	}
	v = strings.ToLower(v)
	if v == "1" || v == "true" {
		b := true
		return &b
	}
	if v == "0" || v == "false" {
		b := false
		return &b
	}
	return nil
}

// GetAutoSyncEnabled returns whether auto-sync is enabled.
// Priority: DMSCREEN_SYNC_AUTO env > config.json sync.auto.enabled > true
func GetAutoSyncEnabled() bool {
	if v := parseBoolEnv("DMSCREEN_SYNC_AUTO"); v != nil {
		return *v
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto.Enabled != nil {
		return *cfg.Sync.Auto.Enabled
	}
	return true
}

// GetAutoSyncInterval returns the periodic sync interval.
// Priority: DMSCREEN_SYNC_INTERVAL env > config.json sync.auto.interval > 5m.
// Non-positive durations are ignored.
func GetAutoSyncInterval() time.Duration {
	if v := os.Getenv("DMSCREEN_SYNC_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	cfg, err := LoadConfig()
	if err == nil && cfg.Sync.Auto.Interval != "" {
		if d, err := time.ParseDuration(cfg.Sync.Auto.Interval); err == nil && d > 0 {
			return d
		}
	}
	return defaultInterval
}
