//go:build !windows
// +build !windows

package signal

import (
	"os"
	"os/signal"
	"syscall"
)

// setupSignals configures graceful shutdown (Unix). SIGHUP reloads
// configuration instead of killing the process.
func setupSignals(cfg ShutdownConfig) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan,
		syscall.SIGTERM,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGHUP,  // reload config
		syscall.SIGUSR1, // reopen logs
		syscall.SIGUSR2, // status dump
	)

	go func() {
		for sig := range sigChan {
			switch sig {
			case syscall.SIGHUP:
				cfg.Logger.Info("received SIGHUP, reloading configuration")
				reloadConfig(cfg)
			case syscall.SIGUSR1:
				cfg.Logger.Info("received SIGUSR1, reopening logs")
				reopenLogs(cfg)
			case syscall.SIGUSR2:
				cfg.Logger.Info("received SIGUSR2, dumping status")
				dumpStatus(cfg)
			default:
				cfg.Logger.Info("starting graceful shutdown", "signal", sig.String())
				gracefulShutdown(cfg)
			}
		}
	}()
}
