package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"

	"github.com/phantom-spire/core-studio/src/api"
	"github.com/phantom-spire/core-studio/src/banner"
	"github.com/phantom-spire/core-studio/src/cache"
	"github.com/phantom-spire/core-studio/src/config"
	"github.com/phantom-spire/core-studio/src/cores"
	"github.com/phantom-spire/core-studio/src/database"
	"github.com/phantom-spire/core-studio/src/logging"
	"github.com/phantom-spire/core-studio/src/projects"
	"github.com/phantom-spire/core-studio/src/server"
	sigsvc "github.com/phantom-spire/core-studio/src/signal"
	"github.com/phantom-spire/core-studio/src/synth"
)

// CLI flags
var (
	flagVersion    bool
	flagHelp       bool
	flagInit       bool
	flagConfigInfo bool
	flagHashToken  string

	flagMode    string
	flagConfig  string
	flagData    string
	flagLog     string
	flagAddress string
	flagPort    int
	flagDebug   bool
)

func init() {
	flag.BoolVar(&flagVersion, "version", false, "Show version information")
	flag.BoolVar(&flagVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&flagHelp, "help", false, "Show help message")
	flag.BoolVar(&flagHelp, "h", false, "Show help message (shorthand)")
	flag.BoolVar(&flagInit, "init", false, "Write a default configuration file")
	flag.BoolVar(&flagConfigInfo, "config-info", false, "Show effective configuration")
	flag.StringVar(&flagHashToken, "hash-token", "", "Print the bcrypt hash for an admin token and exit")

	flag.StringVar(&flagMode, "mode", "", "Set application mode (production|development)")
	flag.StringVar(&flagConfig, "config", "", "Set config file path")
	flag.StringVar(&flagData, "data", "", "Set data directory")
	flag.StringVar(&flagLog, "log", "", "Set log directory")
	flag.StringVar(&flagAddress, "address", "", "Set listen address")
	flag.IntVar(&flagPort, "port", 0, "Set listen port")
	flag.BoolVar(&flagDebug, "debug", false, "Enable debug logging and console output")
}

func main() {
	flag.Usage = printHelp
	flag.Parse()

	switch {
	case flagVersion:
		printVersion()
		return
	case flagHelp:
		printHelp()
		return
	case flagHashToken != "":
		hashToken(flagHashToken)
		return
	case flagInit:
		runInit()
		return
	case flagConfigInfo:
		showConfigInfo()
		return
	}

	runServer()
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	// CLI flags override file and environment.
	if flagMode != "" {
		cfg.Server.Mode = flagMode
	}
	if flagAddress != "" {
		cfg.Server.Address = flagAddress
	}
	if flagPort != 0 {
		cfg.Server.Port = flagPort
	}
	if flagData != "" {
		cfg.Database.DataDir = filepath.Join(flagData, "db")
		if flagLog == "" {
			cfg.Logging.Dir = filepath.Join(flagData, "logs")
		}
	}
	if flagLog != "" {
		cfg.Logging.Dir = flagLog
	}
	if flagDebug {
		cfg.Logging.Level = "debug"
		cfg.Server.Mode = "development"
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runServer() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("configuration failed: %v", err)
	}

	logMgr, err := logging.NewManager(logging.Config{
		Dir:      cfg.Logging.Dir,
		Level:    cfg.Logging.Level,
		MaxSize:  cfg.Logging.MaxSize,
		MaxFiles: cfg.Logging.MaxFiles,
		Console:  cfg.IsDevelopment() || flagDebug,
	})
	if err != nil {
		log.Fatalf("logging failed: %v", err)
	}

	db, err := database.Open(cfg.Database)
	if err != nil {
		log.Fatalf("database failed: %v", err)
	}
	if err := database.NewMigrator(db).Migrate(context.Background()); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	responseCache, err := cache.New(cfg.Cache)
	if err != nil {
		log.Fatalf("cache failed: %v", err)
	}

	generator := synth.New(cfg.Cores.Seed)
	if cfg.Cores.Seed == 0 {
		generator = synth.NewRandom()
	}
	registry := cores.DefaultRegistry(generator)

	handler := api.NewHandler(cfg, registry, projects.NewStore(db), responseCache, logMgr)
	srv := server.New(cfg, handler, logMgr)

	startTime := time.Now()
	sigsvc.Setup(sigsvc.ShutdownConfig{
		ShutdownFunc: srv.Shutdown,
		OnReloadConfig: func() {
			if err := cfg.Reload(); err != nil {
				logMgr.Server().Error("config reload failed", "error", err)
				return
			}
			logMgr.Server().Info("configuration reloaded", "path", flagConfig)
		},
		OnReopenLogs: func() {
			if err := logMgr.Rotate(); err != nil {
				logMgr.Server().Error("log rotation failed", "error", err)
			}
		},
		OnDumpStatus: func() {
			logMgr.Server().Info("status dump",
				"uptime", time.Since(startTime).Round(time.Second).String(),
				"goroutines", runtime.NumGoroutine(),
				"modules", registry.Count(),
			)
		},
		OnCloseDatabase: func() {
			db.Close()
			responseCache.Close()
		},
		OnFlushLogs: func() { logMgr.Close() },
		Logger:      logMgr.Server(),
	})

	banner.Print(banner.Config{
		AppName: cfg.Server.Title,
		Version: config.Version,
		Mode:    cfg.Server.Mode,
		URL:     "http://" + cfg.ListenAddr(),
		Modules: registry.Count(),
		Auth:    cfg.Server.AdminTokenHash != "",
	})

	if err := srv.Start(); err != nil {
		log.Fatalf("server failed: %v", err)
	}
}

func printVersion() {
	binaryName := filepath.Base(os.Args[0])
	fmt.Printf("%s %s\n", binaryName, config.Version)
	if config.BuildTime != "" {
		fmt.Printf("Built: %s\n", config.BuildTime)
	}
	if config.GitCommit != "" {
		fmt.Printf("Commit: %s\n", config.GitCommit)
	}
	fmt.Printf("Go: %s\n", runtime.Version())
	fmt.Printf("OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
}

func printHelp() {
	binaryName := filepath.Base(os.Args[0])
	fmt.Printf(`%s - Security operations API studio

Usage:
  %s [options]             Start the server

Runtime Flags:
  --mode <mode>            Set application mode (production|development)
  --config <file>          Set config file path
  --data <dir>             Set data directory
  --log <dir>              Set log directory
  --address <addr>         Set listen address
  --port <port>            Set listen port
  --debug                  Enable debug logging and console output

Information:
  --help, -h               Show this help message
  --version, -v            Show version information
  --config-info            Show effective configuration

Setup:
  --init                   Write a default configuration file
  --hash-token <token>     Print the bcrypt hash for an admin token

Environment Variables:
  PHANTOM_PORT             Server port
  PHANTOM_MODE             Application mode (production|development)
  PHANTOM_CORES_SEED       Pin the synthetic data generator seed
  PHANTOM_DB_DRIVER        Database driver (sqlite|postgres|mysql|mssql|libsql)
  PHANTOM_DB_DSN           Database connection string
  PHANTOM_REDIS_ADDR       Redis address for the response cache
  PHANTOM_LOG_LEVEL        Log level (debug|info|warn|error)

Examples:
  %s                       Start server with defaults
  %s --port 9090           Start on port 9090
  %s --mode development    Start in dev mode
  %s --init                Create config.yaml in the working directory
`, binaryName, binaryName, binaryName, binaryName, binaryName, binaryName)
}

func runInit() {
	path := flagConfig
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config already exists: %s\n", path)
		return
	}

	data, err := yaml.Marshal(config.Default())
	if err != nil {
		log.Fatalf("failed to render config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		log.Fatalf("failed to write config: %v", err)
	}
	fmt.Printf("Wrote default configuration to %s\n", path)
}

func showConfigInfo() {
	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("configuration failed: %v", err)
	}

	fmt.Println("Effective configuration:")
	fmt.Println("  Listen:   ", cfg.ListenAddr())
	fmt.Println("  Mode:     ", cfg.Server.Mode)
	fmt.Println("  Database: ", cfg.Database.Driver)
	fmt.Println("  Cache:    ", cfg.Cache.Backend)
	fmt.Println("  Log dir:  ", cfg.Logging.Dir)
	fmt.Println("  Log level:", cfg.Logging.Level)
	if cfg.Cores.Seed != 0 {
		fmt.Println("  Seed:     ", cfg.Cores.Seed)
	}
	if cfg.Server.AdminTokenHash != "" {
		fmt.Println("  Auth:      enabled")
	} else {
		fmt.Println("  Auth:      disabled (set server.admin_token_hash)")
	}
}

func hashToken(token string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash token: %v", err)
	}
	fmt.Println(string(hash))
}
