package config

import (
	"os"
	"strconv"
	"strings"
)

// getEnv returns the first non-empty value among the given variable
// names, or "" when none is set.
func getEnv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

func parseBool(v string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true, true
	case "0", "false", "no", "off":
		return false, true
	}
	return false, false
}

// applyEnv layers PHANTOM_* environment variables over the config.
func applyEnv(cfg *Config) {
	if v := getEnv("PHANTOM_ADDRESS", "BIND_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := getEnv("PHANTOM_PORT", "PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := getEnv("PHANTOM_MODE", "MODE"); v != "" {
		cfg.Server.Mode = v
	}
	if v := getEnv("PHANTOM_ADMIN_TOKEN_HASH"); v != "" {
		cfg.Server.AdminTokenHash = v
	}
	if v := getEnv("PHANTOM_CORES_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Cores.Seed = seed
		}
	}

	if v := getEnv("PHANTOM_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := getEnv("PHANTOM_DB_DSN", "DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := getEnv("PHANTOM_DATA_DIR", "DATA_DIR"); v != "" {
		cfg.Database.DataDir = v
	}

	if v := getEnv("PHANTOM_CACHE_BACKEND"); v != "" {
		cfg.Cache.Backend = v
		cfg.Cache.Enabled = true
	}
	if v := getEnv("PHANTOM_REDIS_ADDR", "REDIS_ADDR"); v != "" {
		cfg.Cache.Address = v
	}
	if v := getEnv("PHANTOM_REDIS_PASSWORD"); v != "" {
		cfg.Cache.Password = v
	}
	if v, ok := parseBool(os.Getenv("PHANTOM_CACHE_ENABLED")); ok {
		cfg.Cache.Enabled = v
	}

	if v := getEnv("PHANTOM_LOG_DIR", "LOG_DIR"); v != "" {
		cfg.Logging.Dir = v
	}
	if v := getEnv("PHANTOM_LOG_LEVEL", "LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
}
