package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query <module> [operation] [key=value...]",
	Short: "Dispatch a read operation on a core module",
	Long: `Dispatch a read operation on a core module.
The operation defaults to "status". Extra key=value arguments become
operation parameters.

Examples:
  ` + getBinaryName() + ` query cve
  ` + getBinaryName() + ` query cve lookup cve_id=CVE-2024-3094
  ` + getBinaryName() + ` query mitre list-techniques`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}

		module := args[0]
		operation := ""
		rest := args[1:]
		if len(rest) > 0 && !strings.Contains(rest[0], "=") {
			operation = rest[0]
			rest = rest[1:]
		}

		params, err := parseParams(rest)
		if err != nil {
			return err
		}

		env, err := apiClient.Read(module, operation, params)
		if err != nil {
			return err
		}
		return printEnvelope(env)
	},
}

var execCmd = &cobra.Command{
	Use:   "exec <module> <operation> [key=value...]",
	Short: "Dispatch a write operation on a core module",
	Long: `Dispatch a write operation on a core module.
Values that parse as JSON are sent as structured data, everything else
as strings.

Examples:
  ` + getBinaryName() + ` exec cve analyze 'cveData={"cve_id":"CVE-2024-3094"}'
  ` + getBinaryName() + ` exec hunting create-hunt name=apt-sweep`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}

		params, err := parseParams(args[2:])
		if err != nil {
			return err
		}
		body := make(map[string]any, len(params))
		for k, v := range params {
			// Structured values come in as inline JSON.
			var parsed any
			if err := json.Unmarshal([]byte(v), &parsed); err == nil {
				body[k] = parsed
			} else {
				body[k] = v
			}
		}

		env, err := apiClient.Write(args[0], args[1], body)
		if err != nil {
			return err
		}
		return printEnvelope(env)
	},
}

func init() {
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(execCmd)
}

func parseParams(args []string) (map[string]string, error) {
	params := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, found := strings.Cut(arg, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid parameter %q, expected key=value", arg)
		}
		params[key] = value
	}
	return params, nil
}

func printEnvelope(env any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(env)
}
