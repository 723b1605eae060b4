// Package store persists and loads pipeline snapshots as JSON files.
//
// The on-disk shape is the public contract: the site builder and any
// external consumer parse these files without importing this module's
// internals. A snapshot is committed all-or-nothing: files are written into
// a fresh temporary directory and the published directory is swapped in by
// rename, so a failed or killed run leaves the previous snapshot untouched.
package store

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/danielolaszy/issuehub/internal/logging"
	"github.com/danielolaszy/issuehub/pkg/models"
)

// Snapshot file names inside the data directory.
const (
	SourcesFile = "sources.json"
	IssuesFile  = "issues.json"
	GroupsFile  = "issues_by_repo.json"
	StatsFile   = "stats.json"
	MetaFile    = "meta.json"
)

// sourcesDocument is the registry echo: the category set plus the
// de-duplicated source list.
type sourcesDocument struct {
	Categories []models.Category `json:"categories"`
	Sources    []models.Source   `json:"sources"`
}

// Write persists a snapshot to dataDir, replacing any previous snapshot
// atomically. Any error aborts without touching the published directory.
func Write(dataDir string, snap *models.Snapshot) error {
	parent := filepath.Dir(filepath.Clean(dataDir))
	if err := os.MkdirAll(parent, 0755); err != nil {
		return fmt.Errorf("failed to create data directory parent: %w", err)
	}

	tmp, err := os.MkdirTemp(parent, ".snapshot-")
	if err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}
	// Left behind only when the swap never happened.
	defer os.RemoveAll(tmp)

	issues := snap.Issues
	if issues == nil {
		issues = []models.Issue{}
	}

	files := map[string]any{
		SourcesFile: sourcesDocument{Categories: snap.Categories, Sources: snap.Sources},
		IssuesFile:  issues,
		GroupsFile:  groupsToMap(snap.Groups),
		StatsFile:   snap.Stats,
		MetaFile:    snap.Meta,
	}
	for name, doc := range files {
		if err := writeJSON(filepath.Join(tmp, name), doc); err != nil {
			return err
		}
	}

	if err := publish(tmp, dataDir); err != nil {
		return err
	}

	logging.Info("snapshot persisted",
		"data_dir", dataDir,
		"issues", len(issues),
		"sources", len(snap.Sources))
	return nil
}

// Load reads a snapshot back from dataDir. The grouping order is rebuilt
// from the persisted source list, so registry order survives the round trip
// even though the grouping file itself is a JSON object.
func Load(dataDir string) (*models.Snapshot, error) {
	var sources sourcesDocument
	if err := readJSON(filepath.Join(dataDir, SourcesFile), &sources); err != nil {
		return nil, err
	}

	var issues []models.Issue
	if err := readJSON(filepath.Join(dataDir, IssuesFile), &issues); err != nil {
		return nil, err
	}

	grouped := make(map[string][]models.Issue)
	if err := readJSON(filepath.Join(dataDir, GroupsFile), &grouped); err != nil {
		return nil, err
	}

	snap := &models.Snapshot{
		Categories: sources.Categories,
		Sources:    sources.Sources,
		Issues:     issues,
	}
	if err := readJSON(filepath.Join(dataDir, StatsFile), &snap.Stats); err != nil {
		return nil, err
	}
	if err := readJSON(filepath.Join(dataDir, MetaFile), &snap.Meta); err != nil {
		return nil, err
	}

	for _, source := range sources.Sources {
		snap.Groups = append(snap.Groups, models.SourceGroup{
			SourceID: source.ID,
			Issues:   grouped[source.ID],
		})
	}

	return snap, nil
}

// publish swaps the staged directory into place. The previous snapshot is
// parked under a .stale suffix for the duration of the swap and restored if
// the final rename fails.
func publish(tmp, dataDir string) error {
	stale := dataDir + ".stale"
	if err := os.RemoveAll(stale); err != nil {
		return fmt.Errorf("failed to clear stale snapshot: %w", err)
	}

	if _, err := os.Stat(dataDir); err == nil {
		if err := os.Rename(dataDir, stale); err != nil {
			return fmt.Errorf("failed to park previous snapshot: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("failed to stat data directory: %w", err)
	}

	if err := os.Rename(tmp, dataDir); err != nil {
		// Put the previous snapshot back rather than leaving nothing published.
		if restoreErr := os.Rename(stale, dataDir); restoreErr != nil && !os.IsNotExist(restoreErr) {
			logging.Error("failed to restore previous snapshot", "error", restoreErr)
		}
		return fmt.Errorf("failed to publish snapshot: %w", err)
	}

	if err := os.RemoveAll(stale); err != nil {
		logging.Warn("failed to remove stale snapshot", "path", stale, "error", err)
	}
	return nil
}

// groupsToMap converts the ordered grouping into the published JSON object.
func groupsToMap(groups []models.SourceGroup) map[string][]models.Issue {
	out := make(map[string][]models.Issue, len(groups))
	for _, group := range groups {
		issues := group.Issues
		if issues == nil {
			issues = []models.Issue{}
		}
		out[group.SourceID] = issues
	}
	return out
}

func writeJSON(path string, doc any) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize %s: %w", filepath.Base(path), err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}

func readJSON(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read snapshot file: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}
