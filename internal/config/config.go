package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// defaultConfigFile is the config file name looked up next to the binary.
const defaultConfigFile = "config.yaml"

// AppConfig holds process-level options resolved from flags.
type AppConfig struct {
	ConfigPath string // Path to the YAML config file.
}

// ServerConfig holds HTTP server options.
type ServerConfig struct {
	Addr string `yaml:"addr"` // Listen address, e.g. ":8080".
}

// DatabaseConfig holds the backing store DSN.
type DatabaseConfig struct {
	DSN string `yaml:"dsn"` // PostgreSQL or SQLite DSN.
}

// JWTConfig holds token signing options.
type JWTConfig struct {
	Secret      string `yaml:"secret"`       // HMAC signing secret.
	ExpiryHours int    `yaml:"expiry-hours"` // Token lifetime in hours.
}

// Expiry returns the configured token lifetime, defaulting to 24h.
func (c JWTConfig) Expiry() time.Duration {
	if c.ExpiryHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.ExpiryHours) * time.Hour
}

// ProviderConfig holds payment-provider options.
type ProviderConfig struct {
	Endpoint         string `yaml:"endpoint"`          // Payment request endpoint URL.
	DefaultRecipient string `yaml:"default-recipient"` // Recipient used when no customer email is given.
	Message          string `yaml:"message"`           // Message attached to every payment request.
	TimeoutSeconds   int    `yaml:"timeout-seconds"`   // HTTP client timeout.
}

// RedisConfig holds the optional dashboard cache backend.
type RedisConfig struct {
	Addr     string `yaml:"addr"` // Redis address; empty disables caching.
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// LogConfig holds logging options.
type LogConfig struct {
	Level      string `yaml:"level"`       // logrus level name.
	File       string `yaml:"file"`        // Log file path; empty logs to stderr.
	MaxSizeMB  int    `yaml:"max-size"`    // Rotate after this many megabytes.
	MaxBackups int    `yaml:"max-backups"` // Rotated files to keep.
	MaxAgeDays int    `yaml:"max-age"`     // Days to keep rotated files.
}

// Config is the full service configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	JWT      JWTConfig      `yaml:"jwt"`
	Provider ProviderConfig `yaml:"provider"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// ResolveConfigPath resolves the config file path, falling back to
// config.yaml in the working directory.
func ResolveConfigPath(path string) string {
	trimmed := strings.TrimSpace(path)
	if trimmed != "" {
		return filepath.Clean(trimmed)
	}
	return defaultConfigFile
}

// Load reads the YAML config file and applies environment overrides.
//
// SALESBOARD_DSN, SALESBOARD_JWT_SECRET and SALESBOARD_REDIS_ADDR override
// their file counterparts so deployments can keep secrets out of the file.
func Load(path string) (Config, error) {
	var cfg Config

	data, errRead := os.ReadFile(path)
	switch {
	case errRead == nil:
		if errUnmarshal := yaml.Unmarshal(data, &cfg); errUnmarshal != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, errUnmarshal)
		}
	case os.IsNotExist(errRead):
		// Environment-only configuration is allowed.
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, errRead)
	}

	if dsn := strings.TrimSpace(os.Getenv("SALESBOARD_DSN")); dsn != "" {
		cfg.Database.DSN = dsn
	}
	if secret := strings.TrimSpace(os.Getenv("SALESBOARD_JWT_SECRET")); secret != "" {
		cfg.JWT.Secret = secret
	}
	if addr := strings.TrimSpace(os.Getenv("SALESBOARD_REDIS_ADDR")); addr != "" {
		cfg.Redis.Addr = addr
	}

	cfg.applyDefaults()

	if strings.TrimSpace(cfg.Database.DSN) == "" {
		return Config{}, fmt.Errorf("config: missing database dsn")
	}
	if strings.TrimSpace(cfg.JWT.Secret) == "" {
		return Config{}, fmt.Errorf("config: missing jwt secret")
	}
	return cfg, nil
}

// applyDefaults fills in defaults for optional fields.
func (c *Config) applyDefaults() {
	if strings.TrimSpace(c.Server.Addr) == "" {
		c.Server.Addr = ":8080"
	}
	if strings.TrimSpace(c.Provider.Endpoint) == "" {
		c.Provider.Endpoint = "https://lydia-app.com/api/request/do.json"
	}
	if strings.TrimSpace(c.Provider.DefaultRecipient) == "" {
		c.Provider.DefaultRecipient = "client@comptoir.fr"
	}
	if strings.TrimSpace(c.Provider.Message) == "" {
		c.Provider.Message = "Paiement comptoir"
	}
	if c.Provider.TimeoutSeconds <= 0 {
		c.Provider.TimeoutSeconds = 30
	}
	if strings.TrimSpace(c.Log.Level) == "" {
		c.Log.Level = "info"
	}
}
