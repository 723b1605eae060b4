// Package aggregate computes summary statistics over the classified issues.
package aggregate

import (
	"github.com/danielolaszy/issuehub/internal/registry"
	"github.com/danielolaszy/issuehub/pkg/models"
)

// Build computes the run statistics and the per-source grouping from the
// full classified issue collection. Counting is a single pass over the
// issues; the grouping is emitted in registry order with each source's
// issues kept in fetch order. Sources that yielded no issues (including
// failed fetches) still appear with an empty group so the output shape is
// stable. Build takes no clock: identical input produces identical output.
func Build(issues []models.Issue, reg *registry.Registry, repoInfo map[string]models.RepoInfo) (models.Statistics, []models.SourceGroup) {
	stats := models.Statistics{
		TotalSources: len(reg.Sources),
		TotalIssues:  len(issues),
		ByPriority:   zeroCounts(models.Priorities),
		ByType:       zeroCounts(models.Types),
		ByCategory:   make(map[string]models.CategoryStats, len(reg.Categories)),
		Repos:        make(map[string]models.RepoStats, len(reg.Sources)),
	}

	type tally struct {
		fetched, newIssues, bugs, features, goodFirst, helpWanted int
	}

	grouped := make(map[string][]models.Issue, len(reg.Sources))
	perRepo := make(map[string]*tally, len(reg.Sources))
	perCategory := make(map[string]*tally, len(reg.Categories))

	tallyFor := func(m map[string]*tally, key string) *tally {
		if _, ok := m[key]; !ok {
			m[key] = &tally{}
		}
		return m[key]
	}

	for _, issue := range issues {
		grouped[issue.Source] = append(grouped[issue.Source], issue)

		stats.ByPriority[issue.Priority]++
		stats.ByType[issue.Type]++
		if issue.New {
			stats.TotalNewIssues++
		}
		if issue.GoodFirstIssue {
			stats.TotalGoodFirstIssues++
		}
		if issue.HelpWanted {
			stats.TotalHelpWanted++
		}

		for _, counter := range []*tally{
			tallyFor(perRepo, issue.Source),
			tallyFor(perCategory, issue.Category),
		} {
			counter.fetched++
			if issue.New {
				counter.newIssues++
			}
			if issue.Type == models.TypeBug {
				counter.bugs++
			}
			if issue.Type == models.TypeFeature {
				counter.features++
			}
			if issue.GoodFirstIssue {
				counter.goodFirst++
			}
			if issue.HelpWanted {
				counter.helpWanted++
			}
		}
	}

	reposByCategory := make(map[string]int, len(reg.Categories))
	for _, source := range reg.Sources {
		reposByCategory[source.Category]++
	}

	groups := make([]models.SourceGroup, 0, len(reg.Sources))
	for _, source := range reg.Sources {
		group := grouped[source.ID]
		groups = append(groups, models.SourceGroup{SourceID: source.ID, Issues: group})

		counter := tallyFor(perRepo, source.ID)
		info := repoInfo[source.ID]
		openIssues := info.OpenIssues
		if openIssues == 0 {
			openIssues = counter.fetched
		}

		stats.Repos[source.ID] = models.RepoStats{
			Category:        source.Category,
			CategoryLabel:   source.CategoryLabel,
			Stars:           info.Stars,
			Forks:           info.Forks,
			OpenIssues:      openIssues,
			Description:     info.Description,
			FetchedIssues:   counter.fetched,
			NewIssues:       counter.newIssues,
			Bugs:            counter.bugs,
			Features:        counter.features,
			GoodFirstIssues: counter.goodFirst,
			HelpWanted:      counter.helpWanted,
		}
	}

	for _, category := range reg.Categories {
		counter := tallyFor(perCategory, category.Key)
		stats.ByCategory[category.Key] = models.CategoryStats{
			Label:           category.Label,
			Icon:            category.Icon,
			TotalRepos:      reposByCategory[category.Key],
			TotalIssues:     counter.fetched,
			NewIssues:       counter.newIssues,
			GoodFirstIssues: counter.goodFirst,
		}
	}

	return stats, groups
}

func zeroCounts(keys []string) map[string]int {
	counts := make(map[string]int, len(keys))
	for _, key := range keys {
		counts[key] = 0
	}
	return counts
}
