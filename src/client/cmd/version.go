package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/phantom-spire/core-studio/src/client/api"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("%s v%s (%s) built %s\n", getBinaryName(), Version, CommitID, BuildDate)

		serverAddr := server
		if serverAddr == "" {
			serverAddr = viper.GetString("server.address")
		}
		if serverAddr != "" {
			fmt.Printf("\nServer: %s\n", serverAddr)
			client := api.NewClient(serverAddr, "", 5)
			if health, err := client.Health(); err == nil && health.Version != "" {
				fmt.Printf("Server Version: v%s\n", health.Version)
			}
		}

		fmt.Printf("\nBuild Info:\n")
		fmt.Printf("  Go: %s\n", runtime.Version())
		fmt.Printf("  OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
