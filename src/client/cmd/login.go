package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Save the admin API token",
	Long: `Save the admin API token to the config directory.

The token is stored at ~/.config/core-studio/token.

Examples:
  ` + getBinaryName() + ` login
  ` + getBinaryName() + ` login --token <token>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogin()
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved API token",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runLogout()
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}

func runLogin() error {
	tokenVal := token
	if tokenVal == "" {
		fmt.Print("Enter admin token: ")

		// Hide input on a real terminal, read plainly from a pipe.
		if term.IsTerminal(int(syscall.Stdin)) {
			tokenBytes, err := term.ReadPassword(int(syscall.Stdin))
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			fmt.Println()
			tokenVal = strings.TrimSpace(string(tokenBytes))
		} else {
			reader := bufio.NewReader(os.Stdin)
			line, err := reader.ReadString('\n')
			if err != nil {
				return fmt.Errorf("failed to read token: %w", err)
			}
			tokenVal = strings.TrimSpace(line)
		}
	}

	if tokenVal == "" {
		return fmt.Errorf("token cannot be empty")
	}

	tokenPath, err := tokenFilePath()
	if err != nil {
		return fmt.Errorf("failed to get token path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(tokenPath), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(tokenPath, []byte(tokenVal+"\n"), 0600); err != nil {
		return fmt.Errorf("failed to save token: %w", err)
	}

	fmt.Printf("Token saved to %s\n", tokenPath)
	return nil
}

func runLogout() error {
	tokenPath, err := tokenFilePath()
	if err != nil {
		return fmt.Errorf("failed to get token path: %w", err)
	}

	if _, err := os.Stat(tokenPath); os.IsNotExist(err) {
		fmt.Println("No saved token found")
		return nil
	}
	if err := os.Remove(tokenPath); err != nil {
		return fmt.Errorf("failed to remove token: %w", err)
	}

	fmt.Println("Token removed")
	return nil
}

func tokenFilePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "core-studio", "token"), nil
}

// readSavedToken loads the token written by login, if any.
func readSavedToken() string {
	tokenPath, err := tokenFilePath()
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(tokenPath)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(data))
}
