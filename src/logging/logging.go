// Package logging provides the injected logging manager used across
// the studio. Core logic receives a *Manager (or one of its channel
// loggers) instead of writing to ambient process state, so handlers
// stay side-effect free and testable.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config holds logging settings.
type Config struct {
	Dir      string
	Level    string // debug, info, warn, error
	MaxSize  int    // MB per file
	MaxFiles int    // rotated files kept
	// Console mirrors all channels to stderr (development mode).
	Console bool
}

// Manager owns the per-channel structured loggers.
type Manager struct {
	server   *slog.Logger
	access   *slog.Logger
	security *slog.Logger
	audit    *slog.Logger
	closers  []io.Closer
	rotators []*lumberjack.Logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewManager creates a manager writing one rotated JSON log file per
// channel under cfg.Dir.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Dir == "" {
		cfg.Dir = "data/logs"
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = 10
	}
	if cfg.MaxFiles == 0 {
		cfg.MaxFiles = 5
	}
	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	m := &Manager{}
	level := parseLevel(cfg.Level)

	open := func(name string) *slog.Logger {
		rotating := &lumberjack.Logger{
			Filename:   filepath.Join(cfg.Dir, name+".log"),
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxFiles,
			MaxAge:     30,
			Compress:   true,
		}
		m.closers = append(m.closers, rotating)
		m.rotators = append(m.rotators, rotating)

		var w io.Writer = rotating
		if cfg.Console {
			w = io.MultiWriter(rotating, os.Stderr)
		}
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
	}

	m.server = open("server")
	m.access = open("access")
	m.security = open("security")
	m.audit = open("audit")
	return m, nil
}

// NewDiscard returns a manager that drops everything. Used by tests.
func NewDiscard() *Manager {
	l := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &Manager{server: l, access: l, security: l, audit: l}
}

// Server returns the server event logger.
func (m *Manager) Server() *slog.Logger { return m.server }

// Security returns the security event logger.
func (m *Manager) Security() *slog.Logger { return m.security }

// Audit returns the audit trail logger.
func (m *Manager) Audit() *slog.Logger { return m.audit }

// LogRequest writes one access log entry.
func (m *Manager) LogRequest(r *http.Request, status int, bytes int64, duration time.Duration, requestID string) {
	m.access.Info("request",
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"bytes", bytes,
		"duration_ms", float64(duration.Microseconds())/1000,
		"remote", r.RemoteAddr,
		"request_id", requestID,
		"user_agent", r.UserAgent(),
	)
}

// LogRateLimited writes a security entry for a throttled client.
func (m *Manager) LogRateLimited(ip, path string) {
	m.security.Warn("rate limited", "ip", ip, "path", path)
}

// LogAuthFailure writes a security entry for a rejected credential.
func (m *Manager) LogAuthFailure(ip, path string) {
	m.security.Warn("auth failure", "ip", ip, "path", path)
}

// Rotate closes and reopens every channel's log file. Driven by
// SIGUSR1 so external log shippers can truncate safely.
func (m *Manager) Rotate() error {
	var errs []error
	for _, r := range m.rotators {
		if err := r.Rotate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors rotating loggers: %v", errs)
	}
	return nil
}

// Close flushes and closes all channel writers.
func (m *Manager) Close() error {
	var errs []error
	for _, c := range m.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("errors closing loggers: %v", errs)
	}
	return nil
}
