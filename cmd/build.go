package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/issuehub/internal/site"
	"github.com/danielolaszy/issuehub/internal/store"
)

// buildCmd renders the dashboard from the persisted snapshot only. It makes
// no network calls and needs no credential, so a page rebuild never burns
// API quota.
var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Render the static dashboard from the persisted snapshot",
	Long: `Render the static HTML dashboard from the data files written by
'issuehub fetch'. This command works entirely offline.`,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().String("data-dir", "data", "Directory holding the persisted snapshot")
	buildCmd.Flags().String("output", "docs", "Directory the dashboard is written to")
}

func runBuild(cmd *cobra.Command, args []string) error {
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}

	snapshot, err := store.Load(dataDir)
	if err != nil {
		return fmt.Errorf("failed to load snapshot (run 'issuehub fetch' first): %w", err)
	}

	return site.Build(snapshot, output)
}
