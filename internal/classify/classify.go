// Package classify derives priority, type, and friendliness tags for issues.
//
// Classification is a pure function of an issue's labels, title, and body.
// Rules are explicit ordered lists evaluated first-match-wins so precedence
// is auditable: a security signal always outranks everything else, and an
// issue that matches no rule falls through to the default bucket/tag.
package classify

import (
	"strings"
	"time"

	"github.com/danielolaszy/issuehub/pkg/models"
)

// FreshnessWindowDays is the lookback window for flagging an issue as new.
const FreshnessWindowDays = 7

// Classification holds the derived attributes attached to an issue. Every
// issue gets exactly one priority and exactly one type.
type Classification struct {
	Priority       string
	Type           string
	GoodFirstIssue bool
	HelpWanted     bool
}

// goodFirstIssueLabels are matched case-insensitively as substrings of label
// names. Any hit marks the issue contributor-friendly.
var goodFirstIssueLabels = []string{
	"good first issue", "good-first-issue", "easy", "beginner",
	"starter", "first-timers-only", "help wanted", "up-for-grabs",
}

var helpWantedLabels = []string{"help wanted", "help-wanted"}

var (
	securityKeywords = []string{"security", "vulnerability", "cve"}
	bugKeywords      = []string{"bug", "defect", "error", "regression"}
	featureKeywords  = []string{"enhancement", "feature", "proposal"}
	docsKeywords     = []string{"documentation", "docs"}
)

// signal is the normalized classification input: lowercased label names and
// lowercased title+body text.
type signal struct {
	labels []string
	text   string
}

// rule pairs a predicate with its outcome. Rules match a keyword list
// against label names, and optionally against the issue text as well.
type rule struct {
	name     string
	keywords []string
	scanText bool
	outcome  string
}

// priorityRules in precedence order; first match wins. Only the security
// rule scans title/body text: a security keyword anywhere pins the issue to
// the top bucket, while bug/feature signals are trusted from labels only.
var priorityRules = []rule{
	{name: "security", keywords: securityKeywords, scanText: true, outcome: models.PriorityCritical},
	{name: "bug", keywords: bugKeywords, outcome: models.PriorityHigh},
	{name: "feature", keywords: featureKeywords, outcome: models.PriorityMedium},
}

// typeRules in precedence order; first match wins.
var typeRules = []rule{
	{name: "security", keywords: securityKeywords, scanText: true, outcome: models.TypeSecurity},
	{name: "bug", keywords: bugKeywords, outcome: models.TypeBug},
	{name: "feature", keywords: featureKeywords, outcome: models.TypeFeature},
	{name: "docs", keywords: docsKeywords, outcome: models.TypeDocs},
}

// Classify derives the classification for one issue from its labels, title,
// and body. It is deterministic and total: identical input yields identical
// output, and unmatched input yields the normal/other defaults.
func Classify(labels []string, title, body string) Classification {
	s := newSignal(labels, title, body)

	return Classification{
		Priority:       evaluate(priorityRules, s, models.PriorityNormal),
		Type:           evaluate(typeRules, s, models.TypeOther),
		GoodFirstIssue: matchLabels(s.labels, goodFirstIssueLabels),
		HelpWanted:     matchLabels(s.labels, helpWantedLabels),
	}
}

// Apply classifies an issue in place and sets its freshness flag relative to
// now.
func Apply(issue *models.Issue, now time.Time) {
	c := Classify(issue.Labels, issue.Title, issue.Body)
	issue.Priority = c.Priority
	issue.Type = c.Type
	issue.GoodFirstIssue = c.GoodFirstIssue
	issue.HelpWanted = c.HelpWanted
	issue.New = IsNew(issue.CreatedAt, now)
}

// IsNew reports whether createdAt falls within the freshness window ending
// at now. A zero creation time is never new.
func IsNew(createdAt, now time.Time) bool {
	if createdAt.IsZero() {
		return false
	}
	cutoff := now.Add(-FreshnessWindowDays * 24 * time.Hour)
	return createdAt.After(cutoff)
}

func newSignal(labels []string, title, body string) signal {
	lowered := make([]string, len(labels))
	for i, label := range labels {
		lowered[i] = strings.ToLower(label)
	}
	return signal{
		labels: lowered,
		text:   strings.ToLower(title + "\n" + body),
	}
}

// evaluate walks the rule list in order and returns the outcome of the first
// matching rule, or fallback when none match.
func evaluate(rules []rule, s signal, fallback string) string {
	for _, r := range rules {
		if r.matches(s) {
			return r.outcome
		}
	}
	return fallback
}

func (r rule) matches(s signal) bool {
	if matchLabels(s.labels, r.keywords) {
		return true
	}
	if r.scanText {
		for _, keyword := range r.keywords {
			if strings.Contains(s.text, keyword) {
				return true
			}
		}
	}
	return false
}

// matchLabels reports whether any label contains any of the keywords. Labels
// must already be lowercased.
func matchLabels(labels []string, keywords []string) bool {
	for _, label := range labels {
		for _, keyword := range keywords {
			if strings.Contains(label, keyword) {
				return true
			}
		}
	}
	return false
}
