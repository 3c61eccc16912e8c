//go:build windows
// +build windows

// Windows does not support SIGHUP, SIGUSR1, SIGUSR2 or SIGQUIT; only
// os.Interrupt (Ctrl+C, Ctrl+Break) triggers shutdown.

package signal

import (
	"os"
	"os/signal"
)

func setupSignals(cfg ShutdownConfig) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)

	go func() {
		for sig := range sigChan {
			cfg.Logger.Info("starting graceful shutdown", "signal", sig.String())
			gracefulShutdown(cfg)
		}
	}()
}
