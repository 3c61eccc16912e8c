// Package config loads and validates the studio configuration from a
// YAML file, environment variables and CLI overrides, in that order.
package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Version info (set at build time)
var (
	Version   = "dev"
	BuildTime = ""
	GitCommit = ""
)

// Config represents the complete application configuration.
type Config struct {
	mu         sync.RWMutex
	configPath string

	Server   ServerConfig   `yaml:"server"`
	Cores    CoresConfig    `yaml:"cores"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds the HTTP server settings.
type ServerConfig struct {
	Address        string          `yaml:"address"`
	Port           int             `yaml:"port"`
	Mode           string          `yaml:"mode"` // production, development
	Title          string          `yaml:"title"`
	Description    string          `yaml:"description"`
	AdminTokenHash string          `yaml:"admin_token_hash"` // bcrypt hash, empty disables auth
	TrustedProxies []string        `yaml:"trusted_proxies"`
	RateLimit      RateLimitConfig `yaml:"rate_limit"`
	CORS           CORSConfig      `yaml:"cors"`
}

// RateLimitConfig holds token bucket rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool     `yaml:"enabled"`
	RequestsPerMinute int      `yaml:"requests_per_minute"`
	BurstSize         int      `yaml:"burst_size"`
	Whitelist         []string `yaml:"whitelist"`
}

// CORSConfig holds cross-origin settings.
type CORSConfig struct {
	Enabled        bool     `yaml:"enabled"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	AllowedMethods []string `yaml:"allowed_methods"`
	AllowedHeaders []string `yaml:"allowed_headers"`
}

// CoresConfig holds phantom-core settings.
type CoresConfig struct {
	// Seed pins the synthetic data generator; 0 seeds from time.
	Seed           int64 `yaml:"seed"`
	StatusCacheTTL int   `yaml:"status_cache_ttl"` // seconds, 0 disables
}

// DatabaseConfig holds the platform database settings.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // sqlite, postgres, mysql, sqlserver, libsql
	DSN      string `yaml:"dsn"`
	DataDir  string `yaml:"data_dir"`
	MaxOpen  int    `yaml:"max_open"`
	MaxIdle  int    `yaml:"max_idle"`
	Lifetime int    `yaml:"lifetime"` // seconds
}

// CacheConfig holds response cache settings.
type CacheConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Backend  string `yaml:"backend"` // memory, redis
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	TTL      int    `yaml:"ttl"` // seconds
	MaxSize  int    `yaml:"max_size"`
}

// LoggingConfig holds log output settings.
type LoggingConfig struct {
	Dir      string `yaml:"dir"`
	Level    string `yaml:"level"` // debug, info, warn, error
	MaxSize  int    `yaml:"max_size"`  // MB per file
	MaxFiles int    `yaml:"max_files"` // rotated files kept
}

// Default returns the configuration defaults.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Address:     "0.0.0.0",
			Port:        8080,
			Mode:        "production",
			Title:       "Phantom Core Studio",
			Description: "Security operations API",
			RateLimit: RateLimitConfig{
				Enabled:           true,
				RequestsPerMinute: 120,
				BurstSize:         30,
			},
			CORS: CORSConfig{
				Enabled:        false,
				AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
				AllowedHeaders: []string{"Content-Type", "Authorization"},
			},
		},
		Cores: CoresConfig{
			Seed:           0,
			StatusCacheTTL: 10,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DataDir:  "data/db",
			MaxOpen:  10,
			MaxIdle:  5,
			Lifetime: 300,
		},
		Cache: CacheConfig{
			Enabled: false,
			Backend: "memory",
			Address: "localhost:6379",
			TTL:     300,
			MaxSize: 10000,
		},
		Logging: LoggingConfig{
			Dir:      "data/logs",
			Level:    "info",
			MaxSize:  10,
			MaxFiles: 5,
		},
	}
}

// Load reads configuration from path, layered over defaults and under
// environment overrides. A missing file is not an error; defaults
// plus environment apply.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			cfg.configPath = path
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SetPath sets the config file path for reload.
func (c *Config) SetPath(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.configPath = path
}

// Reload re-reads the configuration from the original file. Address
// and port changes require a restart and are ignored here.
func (c *Config) Reload() error {
	c.mu.RLock()
	path := c.configPath
	c.mu.RUnlock()

	if path == "" {
		return fmt.Errorf("config path not set, cannot reload")
	}

	fresh, err := Load(path)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	oldAddress, oldPort := c.Server.Address, c.Server.Port
	c.Server = fresh.Server
	c.Cores = fresh.Cores
	c.Database = fresh.Database
	c.Cache = fresh.Cache
	c.Logging = fresh.Logging
	c.Server.Address, c.Server.Port = oldAddress, oldPort
	return nil
}

// ListenAddr returns the address:port the server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// IsDevelopment reports whether the server runs in development mode.
func (c *Config) IsDevelopment() bool {
	return c.Server.Mode == "development"
}
