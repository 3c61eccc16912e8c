// Package signal provides cross-platform signal handling for graceful
// shutdown. Platform differences live behind build tags.
package signal

import (
	"context"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
)

// ShutdownConfig holds configuration for graceful shutdown.
type ShutdownConfig struct {
	// ShutdownFunc drains the server. Called first with InFlightTimeout.
	ShutdownFunc    func(ctx context.Context) error
	InFlightTimeout time.Duration // default 30s
	CleanupTimeout  time.Duration // default 5s per cleanup step
	OnReloadConfig  func()        // SIGHUP (Unix only)
	OnReopenLogs    func()        // SIGUSR1 (Unix only)
	OnDumpStatus    func()        // SIGUSR2 (Unix only)
	OnCloseDatabase func()
	OnFlushLogs     func()
	Logger          *slog.Logger
}

var (
	shuttingDown bool
	shutdownMu   sync.RWMutex
)

// IsShuttingDown reports whether graceful shutdown is in progress.
// Health checks consult this to start answering 503.
func IsShuttingDown() bool {
	shutdownMu.RLock()
	defer shutdownMu.RUnlock()
	return shuttingDown
}

func setShuttingDown(v bool) {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	shuttingDown = v
}

// Setup installs the platform signal handlers.
func Setup(cfg ShutdownConfig) {
	if cfg.InFlightTimeout == 0 {
		cfg.InFlightTimeout = 30 * time.Second
	}
	if cfg.CleanupTimeout == 0 {
		cfg.CleanupTimeout = 5 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	setupSignals(cfg)
}

// gracefulShutdown performs orderly shutdown and exits the process.
func gracefulShutdown(cfg ShutdownConfig) {
	setShuttingDown(true)
	log := cfg.Logger

	if cfg.ShutdownFunc != nil {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.InFlightTimeout)
		log.Info("draining in-flight requests", "timeout", cfg.InFlightTimeout)
		if err := cfg.ShutdownFunc(ctx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
		cancel()
	}

	runStep(log, "closing database", cfg.OnCloseDatabase, cfg.CleanupTimeout)
	runStep(log, "flushing logs", cfg.OnFlushLogs, cfg.CleanupTimeout)

	log.Info("graceful shutdown complete")
	os.Exit(0)
}

// runStep runs a cleanup callback with a hard deadline so a stuck
// dependency cannot hang shutdown.
func runStep(log *slog.Logger, name string, fn func(), timeout time.Duration) {
	if fn == nil {
		return
	}
	done := make(chan struct{})
	go func() {
		fn()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		log.Warn("cleanup step timed out", "step", name, "timeout", timeout)
	}
}

func reloadConfig(cfg ShutdownConfig) {
	if cfg.OnReloadConfig != nil {
		cfg.OnReloadConfig()
	}
}

func reopenLogs(cfg ShutdownConfig) {
	if cfg.OnReopenLogs != nil {
		cfg.OnReopenLogs()
	}
}

func dumpStatus(cfg ShutdownConfig) {
	if cfg.OnDumpStatus != nil {
		cfg.OnDumpStatus()
	}
}
