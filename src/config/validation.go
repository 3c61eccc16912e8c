package config

import (
	"fmt"
	"strings"
)

var validModes = map[string]bool{
	"production":  true,
	"development": true,
}

var validDrivers = map[string]bool{
	"sqlite":    true,
	"libsql":    true,
	"turso":     true,
	"postgres":  true,
	"pgx":       true,
	"mysql":     true,
	"mariadb":   true,
	"mssql":     true,
	"sqlserver": true,
}

var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// Validate checks the configuration for values that would fail at
// runtime and normalizes a few fields in place.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range 1-65535", c.Server.Port)
	}

	c.Server.Mode = strings.ToLower(strings.TrimSpace(c.Server.Mode))
	if !validModes[c.Server.Mode] {
		return fmt.Errorf("server.mode %q must be production or development", c.Server.Mode)
	}

	if c.Server.RateLimit.Enabled {
		if c.Server.RateLimit.RequestsPerMinute < 1 {
			return fmt.Errorf("rate_limit.requests_per_minute must be positive")
		}
		if c.Server.RateLimit.BurstSize < 1 {
			return fmt.Errorf("rate_limit.burst_size must be positive")
		}
	}

	driver := strings.ToLower(strings.TrimSpace(c.Database.Driver))
	if !validDrivers[driver] {
		return fmt.Errorf("database.driver %q is not supported", c.Database.Driver)
	}
	c.Database.Driver = driver

	switch c.Cache.Backend {
	case "", "memory", "redis":
	default:
		return fmt.Errorf("cache.backend %q must be memory or redis", c.Cache.Backend)
	}

	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "" {
		level = "info"
	}
	if !validLogLevels[level] {
		return fmt.Errorf("logging.level %q must be debug, info, warn or error", c.Logging.Level)
	}
	c.Logging.Level = level

	return nil
}
