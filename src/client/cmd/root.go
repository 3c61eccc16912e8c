// Package cmd implements the corectl command tree.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phantom-spire/core-studio/src/client/api"
)

var (
	// Build info - set via -ldflags at build time
	ProjectName = "core-studio"
	Version     = "dev"
	CommitID    = "unknown"
	BuildDate   = "unknown"

	cfgFile string
	server  string
	token   string
	output  string
	timeout int

	apiClient *api.Client
)

var rootCmd = &cobra.Command{
	Use:   getBinaryName(),
	Short: "CLI client for the Core Studio API",
	Long:  `corectl is a command-line interface for a Phantom Core Studio server.`,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&server, "server", "s", "", "server address")
	rootCmd.PersistentFlags().StringVarP(&token, "token", "t", "", "admin API token")
	rootCmd.PersistentFlags().StringVarP(&output, "output", "o", "", "output format: json, plain")
	rootCmd.PersistentFlags().IntVar(&timeout, "timeout", 0, "request timeout in seconds")
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return
		}
		configDir := filepath.Join(home, ".config", "core-studio")
		viper.AddConfigPath(configDir)
		viper.SetConfigName("cli")
		viper.SetConfigType("yaml")
	}

	viper.SetDefault("server.address", "http://localhost:8080")
	viper.SetDefault("server.token", "")
	viper.SetDefault("server.timeout", 30)
	viper.SetDefault("output.format", "plain")

	viper.ReadInConfig()
}

// initClient builds the API client from flags, environment and config,
// in that order of precedence.
func initClient() error {
	serverAddr := server
	if serverAddr == "" {
		serverAddr = os.Getenv("CORECTL_SERVER")
	}
	if serverAddr == "" {
		serverAddr = viper.GetString("server.address")
	}
	if serverAddr == "" {
		return fmt.Errorf("server address not configured. Use --server or run 'config set server.address <url>'")
	}

	tokenVal := token
	if tokenVal == "" {
		tokenVal = os.Getenv("CORECTL_TOKEN")
	}
	if tokenVal == "" {
		tokenVal = viper.GetString("server.token")
	}
	if tokenVal == "" {
		tokenVal = readSavedToken()
	}

	timeoutVal := timeout
	if timeoutVal == 0 {
		timeoutVal = viper.GetInt("server.timeout")
	}
	if timeoutVal == 0 {
		timeoutVal = 30
	}

	api.ProjectName = ProjectName
	api.Version = Version
	apiClient = api.NewClient(serverAddr, tokenVal, timeoutVal)
	return nil
}

func getBinaryName() string {
	return filepath.Base(os.Args[0])
}

func getOutputFormat() string {
	if output != "" {
		return output
	}
	return viper.GetString("output.format")
}
