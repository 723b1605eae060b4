// Package site renders the static dashboard from a persisted snapshot.
//
// The builder consumes only the snapshot loaded from disk; it never touches
// the network, so pages can be rebuilt without a credential.
package site

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/danielolaszy/issuehub/internal/logging"
	"github.com/danielolaszy/issuehub/pkg/models"
)

// OutputFile is the name of the generated page inside the output directory.
const OutputFile = "index.html"

var priorityRank = map[string]int{
	models.PriorityCritical: 0,
	models.PriorityHigh:     1,
	models.PriorityMedium:   2,
	models.PriorityNormal:   3,
}

// categoryCard pairs a registry category with its aggregate counts.
type categoryCard struct {
	models.Category
	Stats models.CategoryStats
}

// pageData is the template input.
type pageData struct {
	Generated  string
	Stats      models.Statistics
	Summary    models.RunSummary
	Categories []categoryCard
	Issues     []models.Issue
}

// Build renders the dashboard into outputDir. Issues are ordered new-first,
// then by priority, then most recently updated; categories keep registry
// order.
func Build(snap *models.Snapshot, outputDir string) error {
	tmpl, err := template.New("dashboard").Funcs(template.FuncMap{
		"date": func(t time.Time) string { return t.Format("2006-01-02") },
	}).Parse(pageTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse dashboard template: %w", err)
	}

	cards := make([]categoryCard, 0, len(snap.Categories))
	for _, category := range snap.Categories {
		cards = append(cards, categoryCard{
			Category: category,
			Stats:    snap.Stats.ByCategory[category.Key],
		})
	}

	issues := make([]models.Issue, len(snap.Issues))
	copy(issues, snap.Issues)
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].New != issues[j].New {
			return issues[i].New
		}
		if priorityRank[issues[i].Priority] != priorityRank[issues[j].Priority] {
			return priorityRank[issues[i].Priority] < priorityRank[issues[j].Priority]
		}
		return issues[i].UpdatedAt.After(issues[j].UpdatedAt)
	})

	data := pageData{
		Generated:  snap.Meta.GeneratedAt.UTC().Format("2006-01-02 15:04 UTC"),
		Stats:      snap.Stats,
		Summary:    snap.Meta.Summary,
		Categories: cards,
		Issues:     issues,
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("failed to render dashboard: %w", err)
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outputDir, OutputFile)
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", OutputFile, err)
	}

	logging.Info("dashboard rendered",
		"path", path,
		"issues", len(issues),
		"categories", len(cards))
	return nil
}

const pageTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>Issue Hub</title>
	<style>
		body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; color: #333; }
		.container { max-width: 1200px; margin: 0 auto; }
		h1 { margin-bottom: 4px; }
		.subtitle { color: #666; margin-top: 0; }
		.tiles { display: flex; flex-wrap: wrap; gap: 12px; margin: 20px 0; }
		.tile { background: white; border-radius: 8px; padding: 14px 20px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); min-width: 120px; }
		.tile .num { font-size: 1.6em; font-weight: 700; }
		.tile .lbl { color: #666; font-size: 0.85em; }
		.cats { display: grid; grid-template-columns: repeat(auto-fill, minmax(220px, 1fr)); gap: 12px; margin: 20px 0; }
		.cat-card { background: white; border-radius: 8px; padding: 14px; box-shadow: 0 1px 3px rgba(0,0,0,0.1); cursor: pointer; }
		.cat-card.active { outline: 2px solid #0066cc; }
		.cat-name { font-weight: 600; }
		.cat-desc { color: #666; font-size: 0.85em; }
		.cat-counts { color: #666; font-size: 0.8em; margin-top: 6px; }
		input[type=search] { width: 100%; padding: 10px; font-size: 1em; border: 1px solid #ccc; border-radius: 6px; box-sizing: border-box; }
		table { width: 100%; border-collapse: collapse; background: white; border-radius: 8px; margin-top: 16px; }
		th, td { text-align: left; padding: 8px 10px; border-bottom: 1px solid #eee; font-size: 0.9em; }
		th { color: #666; }
		a { color: #0066cc; text-decoration: none; }
		.badge { display: inline-block; padding: 1px 7px; border-radius: 10px; font-size: 0.75em; margin-right: 4px; }
		.p-critical { background: #fde2e2; color: #b91c1c; }
		.p-high { background: #fef3c7; color: #b45309; }
		.p-medium { background: #dbeafe; color: #1d4ed8; }
		.p-normal { background: #e5e7eb; color: #374151; }
		.friendly { background: #dcfce7; color: #15803d; }
		.new { background: #ede9fe; color: #6d28d9; }
		footer { color: #999; font-size: 0.8em; margin: 24px 0; }
	</style>
</head>
<body>
<div class="container">
	<h1>Issue Hub</h1>
	<p class="subtitle">Open issues across {{.Stats.TotalSources}} tracked repositories</p>

	<div class="tiles">
		<div class="tile"><div class="num">{{.Stats.TotalIssues}}</div><div class="lbl">open issues</div></div>
		<div class="tile"><div class="num">{{.Stats.TotalNewIssues}}</div><div class="lbl">new this week</div></div>
		<div class="tile"><div class="num">{{.Stats.TotalGoodFirstIssues}}</div><div class="lbl">good first issues</div></div>
		<div class="tile"><div class="num">{{.Stats.TotalHelpWanted}}</div><div class="lbl">help wanted</div></div>
	</div>

	<div class="cats">
	{{range .Categories}}
		<div class="cat-card" data-category="{{.Key}}">
			<div class="cat-name">{{if .Icon}}{{.Icon}} {{end}}{{.Label}}</div>
			{{if .Description}}<div class="cat-desc">{{.Description}}</div>{{end}}
			<div class="cat-counts">{{.Stats.TotalRepos}} repos · {{.Stats.TotalIssues}} issues · {{.Stats.GoodFirstIssues}} good first</div>
		</div>
	{{end}}
	</div>

	<input type="search" id="search" placeholder="Search issues by title, repository, or label...">

	<table>
		<thead>
			<tr><th>Issue</th><th>Repository</th><th>Priority</th><th>Type</th><th>Updated</th></tr>
		</thead>
		<tbody id="issues">
		{{range .Issues}}
			<tr data-category="{{.Category}}" data-search="{{.Title}} {{.Source}} {{range .Labels}}{{.}} {{end}}">
				<td>
					<a href="{{.URL}}" target="_blank" rel="noopener">{{.Title}}</a>
					{{if .New}}<span class="badge new">new</span>{{end}}
					{{if .GoodFirstIssue}}<span class="badge friendly">good first issue</span>{{end}}
				</td>
				<td>{{.Source}}</td>
				<td><span class="badge p-{{.Priority}}">{{.Priority}}</span></td>
				<td>{{.Type}}</td>
				<td>{{date .UpdatedAt}}</td>
			</tr>
		{{end}}
		</tbody>
	</table>

	<footer>
		Generated {{.Generated}} · {{.Summary.SourcesSucceeded}} sources fetched{{if .Summary.SourcesFailed}}, {{.Summary.SourcesFailed}} failed{{end}}
	</footer>
</div>

<script>
(function () {
	var search = document.getElementById('search');
	var rows = Array.prototype.slice.call(document.querySelectorAll('#issues tr'));
	var cards = Array.prototype.slice.call(document.querySelectorAll('.cat-card'));
	var activeCategory = null;

	function apply() {
		var term = search.value.toLowerCase();
		rows.forEach(function (row) {
			var matchesTerm = row.getAttribute('data-search').toLowerCase().indexOf(term) !== -1;
			var matchesCat = !activeCategory || row.getAttribute('data-category') === activeCategory;
			row.style.display = matchesTerm && matchesCat ? '' : 'none';
		});
	}

	search.addEventListener('input', apply);
	cards.forEach(function (card) {
		card.addEventListener('click', function () {
			var key = card.getAttribute('data-category');
			activeCategory = activeCategory === key ? null : key;
			cards.forEach(function (c) {
				c.classList.toggle('active', c.getAttribute('data-category') === activeCategory);
			});
			apply();
		});
	});
})();
</script>
</body>
</html>
`
