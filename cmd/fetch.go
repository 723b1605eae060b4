package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danielolaszy/issuehub/internal/aggregate"
	"github.com/danielolaszy/issuehub/internal/classify"
	"github.com/danielolaszy/issuehub/internal/config"
	"github.com/danielolaszy/issuehub/internal/github"
	"github.com/danielolaszy/issuehub/internal/logging"
	"github.com/danielolaszy/issuehub/internal/registry"
	"github.com/danielolaszy/issuehub/internal/store"
	"github.com/danielolaszy/issuehub/pkg/models"
)

// fetchCmd runs the whole pipeline: registry -> fetch -> classify ->
// aggregate -> persist. A failing source is logged and skipped; only
// configuration, registry, and persistence errors abort the run.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch open issues from all registered sources and persist a snapshot",
	Long: `Fetch open issues from every repository in the source registry,
classify and aggregate them, and persist the result as JSON data files.

Each source is bounded to --max-issues open issues, most recently updated
first. A source that fails (rate limit, network error, renamed repository)
contributes zero issues and is recorded in the run summary; the run
continues with the remaining sources.

Requires a GITHUB_TOKEN environment variable. The snapshot replaces any
previous one atomically: a killed or failed run leaves the published data
files untouched.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().String("registry", "sources.yaml", "Path to the source registry file")
	fetchCmd.Flags().String("data-dir", "data", "Directory the snapshot is published to")
	fetchCmd.Flags().Int("max-issues", 30, "Maximum number of issues fetched per source")
}

func runFetch(cmd *cobra.Command, args []string) error {
	registryPath, err := cmd.Flags().GetString("registry")
	if err != nil {
		return err
	}
	dataDir, err := cmd.Flags().GetString("data-dir")
	if err != nil {
		return err
	}
	maxIssues, err := cmd.Flags().GetInt("max-issues")
	if err != nil {
		return err
	}
	if maxIssues < 1 {
		return fmt.Errorf("--max-issues must be at least 1, got %d", maxIssues)
	}

	// Validate the credential before any network call.
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := config.ValidateFetchConfig(cfg); err != nil {
		return err
	}

	reg, err := registry.Load(registryPath)
	if err != nil {
		return err
	}

	client, err := github.NewClient()
	if err != nil {
		return fmt.Errorf("failed to initialize github client: %w", err)
	}

	ctx := cmd.Context()
	now := time.Now().UTC()

	summary := models.RunSummary{Failures: make(map[string]string)}
	var allIssues []models.Issue
	repoInfo := make(map[string]models.RepoInfo, len(reg.Sources))

	for i, source := range reg.Sources {
		logging.Info("fetching source",
			"progress", fmt.Sprintf("%d/%d", i+1, len(reg.Sources)),
			"repository", source.ID,
			"category", source.Category)

		issues, skipped, err := client.FetchOpenIssues(ctx, source, maxIssues)
		summary.IssuesSkipped += skipped
		if err != nil {
			logging.Warn("source fetch failed, continuing",
				"repository", source.ID,
				"error", err)
			summary.SourcesFailed++
			summary.Failures[source.ID] = err.Error()
			continue
		}
		summary.SourcesSucceeded++

		for idx := range issues {
			classify.Apply(&issues[idx], now)
		}
		allIssues = append(allIssues, issues...)

		info, err := client.FetchRepoInfo(ctx, source)
		if err != nil {
			logging.Warn("repository metadata unavailable",
				"repository", source.ID,
				"error", err)
		} else {
			repoInfo[source.ID] = info
		}
	}

	stats, groups := aggregate.Build(allIssues, reg, repoInfo)

	snapshot := &models.Snapshot{
		Categories: reg.Categories,
		Sources:    reg.Sources,
		Issues:     allIssues,
		Groups:     groups,
		Stats:      stats,
		Meta: models.Meta{
			GeneratedAt:  now,
			LookbackDays: classify.FreshnessWindowDays,
			Summary:      summary,
		},
	}

	if err := store.Write(dataDir, snapshot); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	logging.Info("fetch complete",
		"issues", len(allIssues),
		"new_issues", stats.TotalNewIssues,
		"good_first_issues", stats.TotalGoodFirstIssues,
		"sources_succeeded", summary.SourcesSucceeded,
		"sources_failed", summary.SourcesFailed,
		"issues_skipped", summary.IssuesSkipped)
	return nil
}
