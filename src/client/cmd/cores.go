package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var coresCmd = &cobra.Command{
	Use:   "cores",
	Short: "List the available core modules",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}
		list, err := apiClient.Modules()
		if err != nil {
			return err
		}

		if getOutputFormat() == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		for _, m := range list.Modules {
			fmt.Println(m)
		}
		fmt.Printf("\n%d modules\n", list.Count)
		return nil
	},
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Verify that every core module is dispatchable",
	Long: `Verify that every core module is dispatchable.
Exits with code 1 if any core is inaccessible.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}
		report, err := apiClient.Verify()
		if err != nil {
			return err
		}

		if getOutputFormat() == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return err
			}
		} else {
			for _, c := range report.Cores {
				mark := "ok"
				if !c.Accessible {
					mark = "FAIL"
				}
				fmt.Printf("%-12s %-22s %s\n", c.Module, c.Source, mark)
				if len(c.ReadOperations) > 0 {
					fmt.Printf("             read:  %s\n", strings.Join(c.ReadOperations, ", "))
				}
				if len(c.WriteOperations) > 0 {
					fmt.Printf("             write: %s\n", strings.Join(c.WriteOperations, ", "))
				}
			}
			fmt.Printf("\n%d/%d cores accessible\n", report.Accessible, report.Total)
		}

		if report.Accessible < report.Total {
			os.Exit(1)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(coresCmd)
	rootCmd.AddCommand(verifyCmd)
}
