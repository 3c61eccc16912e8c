package cache

import (
	"context"
	"sync"
	"time"
)

// Memory is an in-process cache with TTL eviction.
type Memory struct {
	mu         sync.RWMutex
	items      map[string]memoryItem
	maxSize    int
	defaultTTL time.Duration
	hits       int64
	misses     int64
	stop       chan struct{}
	stopOnce   sync.Once
}

type memoryItem struct {
	value     []byte
	expiresAt time.Time
}

// NewMemory creates a memory cache holding at most maxSize entries.
func NewMemory(maxSize int, defaultTTL time.Duration) *Memory {
	if maxSize <= 0 {
		maxSize = 10000
	}
	if defaultTTL <= 0 {
		defaultTTL = 5 * time.Minute
	}
	m := &Memory{
		items:      make(map[string]memoryItem),
		maxSize:    maxSize,
		defaultTTL: defaultTTL,
		stop:       make(chan struct{}),
	}
	go m.cleanup()
	return m
}

func (m *Memory) cleanup() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-m.stop:
			return
		case <-ticker.C:
			now := time.Now()
			m.mu.Lock()
			for key, item := range m.items {
				if now.After(item.expiresAt) {
					delete(m.items, key)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	item, ok := m.items[key]
	m.mu.RUnlock()

	if ok && time.Now().Before(item.expiresAt) {
		m.mu.Lock()
		m.hits++
		m.mu.Unlock()
		return item.value, nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	// Re-check under the write lock: a concurrent Set may have
	// replaced the expired entry with a fresh one since the read.
	if cur, ok := m.items[key]; ok && time.Now().After(cur.expiresAt) {
		delete(m.items, key)
	}
	m.misses++
	return nil, ErrMiss
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.defaultTTL
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	// Evict the oldest-expiring entry when full.
	if len(m.items) >= m.maxSize {
		var oldest string
		var oldestAt time.Time
		for k, item := range m.items {
			if oldest == "" || item.expiresAt.Before(oldestAt) {
				oldest, oldestAt = k, item.expiresAt
			}
		}
		delete(m.items, oldest)
	}

	m.items[key] = memoryItem{value: value, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, key)
	return nil
}

func (m *Memory) Ping(_ context.Context) error { return nil }

func (m *Memory) Close() error {
	m.stopOnce.Do(func() { close(m.stop) })
	return nil
}

func (m *Memory) Stats() Stats {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Stats{
		Hits:      m.hits,
		Misses:    m.misses,
		Keys:      int64(len(m.items)),
		Backend:   "memory",
		Connected: true,
	}
}
