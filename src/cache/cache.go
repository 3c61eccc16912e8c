// Package cache provides the short-lived response cache used for
// read-only core status and verification payloads.
package cache

import (
	"context"
	"errors"
	"time"

	"github.com/phantom-spire/core-studio/src/config"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Cache is the interface both backends implement.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
	Close() error
	Stats() Stats
}

// Stats reports cache effectiveness.
type Stats struct {
	Hits      int64  `json:"hits"`
	Misses    int64  `json:"misses"`
	Keys      int64  `json:"keys"`
	Backend   string `json:"backend"`
	Connected bool   `json:"connected"`
}

// New creates a cache from configuration. A disabled config yields a
// memory cache, which callers can still use as a process-local cache.
func New(cfg config.CacheConfig) (Cache, error) {
	ttl := time.Duration(cfg.TTL) * time.Second
	if cfg.Enabled && cfg.Backend == "redis" {
		return NewRedis(cfg.Address, cfg.Password, cfg.DB, ttl)
	}
	return NewMemory(cfg.MaxSize, ttl), nil
}
