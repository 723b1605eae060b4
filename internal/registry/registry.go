// Package registry loads the static list of tracked repositories.
package registry

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/danielolaszy/issuehub/internal/logging"
	"github.com/danielolaszy/issuehub/pkg/models"
)

// Registry is the validated, de-duplicated source list for one run. It is
// loaded once at run start and never mutated afterwards.
type Registry struct {
	// Categories preserves the order of the registry file
	Categories []models.Category

	// Sources lists every tracked repository in file order, with repositories
	// appearing under multiple categories kept only under the first one
	Sources []models.Source
}

// registryFile mirrors the on-disk YAML shape.
type registryFile struct {
	Categories []models.Category `yaml:"categories"`
}

// Load reads and validates the registry file at path. It returns an error if
// the file cannot be read, a category is missing its key or label, or a
// repository identifier is not in "owner/name" form.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read registry file: %w", err)
	}

	var file registryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse registry file %s: %w", path, err)
	}

	if len(file.Categories) == 0 {
		return nil, fmt.Errorf("registry file %s defines no categories", path)
	}

	reg := &Registry{Categories: file.Categories}
	seen := make(map[string]string)

	for _, category := range file.Categories {
		if category.Key == "" || category.Label == "" {
			return nil, fmt.Errorf("registry category missing key or label (key=%q, label=%q)", category.Key, category.Label)
		}

		for _, repo := range category.Repos {
			if err := validateRepo(repo); err != nil {
				return nil, err
			}

			// A repository listed under several categories belongs to the
			// first one; later occurrences are dropped.
			if firstCategory, ok := seen[repo]; ok {
				logging.Debug("skipping duplicate registry entry",
					"repository", repo,
					"category", category.Key,
					"kept_category", firstCategory)
				continue
			}
			seen[repo] = category.Key

			reg.Sources = append(reg.Sources, models.Source{
				ID:            repo,
				Category:      category.Key,
				CategoryLabel: category.Label,
			})
		}
	}

	if len(reg.Sources) == 0 {
		return nil, fmt.Errorf("registry file %s lists no repositories", path)
	}

	logging.Info("loaded source registry",
		"path", path,
		"categories", len(reg.Categories),
		"sources", len(reg.Sources))

	return reg, nil
}

// validateRepo checks that a repository identifier is in "owner/name" form.
func validateRepo(repo string) error {
	parts := strings.Split(repo, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repo)
	}
	return nil
}
