// Package cmd provides the command-line interface for the issuehub tool.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "issuehub",
	Short: "Issuehub aggregates open issues into a categorized static dashboard",
	Long: `Issuehub pulls open-issue metadata from a registry of tracked GitHub
repositories, classifies and aggregates it, and publishes the result as
structured JSON data plus a static searchable dashboard.

It is designed to run from a scheduler (e.g., a daily GitHub Action):
'issuehub fetch' refreshes the data files, 'issuehub build' renders the
dashboard from them without touching the network.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(buildCmd)
}
