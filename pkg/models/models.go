// Package models defines data structures shared across the application.
package models

import (
	"time"
)

// Priority buckets assigned by the classifier, highest precedence first.
const (
	PriorityCritical = "critical"
	PriorityHigh     = "high"
	PriorityMedium   = "medium"
	// PriorityNormal is the fallback bucket when no priority rule matches.
	PriorityNormal = "normal"
)

// Issue type tags assigned by the classifier, highest precedence first.
const (
	TypeSecurity = "security"
	TypeBug      = "bug"
	TypeFeature  = "feature"
	TypeDocs     = "docs"
	// TypeOther is the fallback tag when no type rule matches.
	TypeOther = "other"
)

// Priorities lists every priority bucket in precedence order.
var Priorities = []string{PriorityCritical, PriorityHigh, PriorityMedium, PriorityNormal}

// Types lists every type tag in precedence order.
var Types = []string{TypeSecurity, TypeBug, TypeFeature, TypeDocs, TypeOther}

// Category groups sources by ecosystem area. Categories are defined entirely
// by the registry file and echoed into the snapshot for consumers.
type Category struct {
	// Key is the stable identifier used in statistics and on issues (e.g., "orm")
	Key string `json:"key" yaml:"key"`

	// Label is the human-readable category name (e.g., "ORM & Database")
	Label string `json:"label" yaml:"label"`

	// Icon is an optional emoji or short glyph shown by the site builder
	Icon string `json:"icon,omitempty" yaml:"icon"`

	// Description is an optional one-line category description
	Description string `json:"description,omitempty" yaml:"description"`

	// Repos lists the repositories in this category as "owner/name"
	Repos []string `json:"repos" yaml:"repos"`
}

// Source is one tracked repository. Sources are loaded from the registry at
// run start and never mutated within a run.
type Source struct {
	// ID is the repository identifier in "owner/name" form
	ID string `json:"id"`

	// Category is the key of the category the source belongs to
	Category string `json:"category"`

	// CategoryLabel is the display label of that category
	CategoryLabel string `json:"category_label"`
}

// Issue is one open issue fetched from a source, including the derived
// classification fields filled in after the fetch.
type Issue struct {
	// ID is the upstream unique identifier of the issue
	ID int64 `json:"id"`

	// Number is the issue number within its repository (e.g., 42)
	Number int `json:"number"`

	// Source is the "owner/name" of the repository the issue came from
	Source string `json:"repo"`

	// Category and CategoryLabel are inherited from the issue's source
	Category      string `json:"category"`
	CategoryLabel string `json:"category_label"`

	// Title is the issue's title or summary
	Title string `json:"title"`

	// Body is the full body text; kept for classification, not persisted
	Body string `json:"-"`

	// BodyPreview is a single-line excerpt of the body, capped at 400 runes
	BodyPreview string `json:"body_preview"`

	// Labels is a slice of upstream label names attached to the issue
	Labels []string `json:"labels"`

	// Author is the login of the issue's author
	Author string `json:"author"`

	// AuthorAvatar is the author's avatar URL, when available
	AuthorAvatar string `json:"author_avatar,omitempty"`

	// Comments is the number of comments on the issue
	Comments int `json:"comments"`

	// URL is the issue's web URL
	URL string `json:"url"`

	// CreatedAt is the timestamp when the issue was created
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is the timestamp when the issue was last updated
	UpdatedAt time.Time `json:"updated_at"`

	// Priority is the derived priority bucket; always exactly one of Priorities
	Priority string `json:"priority"`

	// Type is the derived type tag; always exactly one of Types
	Type string `json:"type"`

	// GoodFirstIssue reports whether the issue carries a contributor-friendly label
	GoodFirstIssue bool `json:"good_first_issue"`

	// HelpWanted reports whether the issue carries a help-wanted label
	HelpWanted bool `json:"help_wanted"`

	// New reports whether the issue was opened within the freshness window
	New bool `json:"is_new"`
}

// RepoInfo holds repository-level metadata fetched alongside the issues.
type RepoInfo struct {
	Stars       int    `json:"stars"`
	Forks       int    `json:"forks"`
	OpenIssues  int    `json:"open_issues"`
	Description string `json:"description"`
}

// RepoStats is the per-repository slice of the statistics file.
type RepoStats struct {
	Category        string `json:"category"`
	CategoryLabel   string `json:"category_label"`
	Stars           int    `json:"stars"`
	Forks           int    `json:"forks"`
	OpenIssues      int    `json:"total_open_issues"`
	Description     string `json:"description"`
	FetchedIssues   int    `json:"fetched_issues"`
	NewIssues       int    `json:"new_issues"`
	Bugs            int    `json:"bugs"`
	Features        int    `json:"features"`
	GoodFirstIssues int    `json:"good_first_issues"`
	HelpWanted      int    `json:"help_wanted"`
}

// CategoryStats is the per-category slice of the statistics file.
type CategoryStats struct {
	Label           string `json:"label"`
	Icon            string `json:"icon,omitempty"`
	TotalRepos      int    `json:"total_repos"`
	TotalIssues     int    `json:"total_issues"`
	NewIssues       int    `json:"new_issues"`
	GoodFirstIssues int    `json:"good_first_issues"`
}

// Statistics holds the aggregate counts for one run. It is fully derived
// from the classified issue collection and carries no clock input, so two
// runs over identical input serialize identically.
type Statistics struct {
	TotalSources         int `json:"total_sources"`
	TotalIssues          int `json:"total_issues"`
	TotalNewIssues       int `json:"total_new_issues"`
	TotalGoodFirstIssues int `json:"total_good_first_issues"`
	TotalHelpWanted      int `json:"total_help_wanted"`

	// ByPriority and ByType always contain every known bucket, zero or not
	ByPriority map[string]int `json:"by_priority"`
	ByType     map[string]int `json:"by_type"`

	ByCategory map[string]CategoryStats `json:"by_category"`
	Repos      map[string]RepoStats     `json:"repos"`
}

// SourceGroup pairs a source with the issues fetched from it, in fetch
// order. Groups are emitted in registry order.
type SourceGroup struct {
	SourceID string
	Issues   []Issue
}

// RunSummary records the non-fatal outcome counts of one fetch run.
type RunSummary struct {
	SourcesSucceeded int `json:"sources_succeeded"`
	SourcesFailed    int `json:"sources_failed"`
	IssuesSkipped    int `json:"issues_skipped"`

	// Failures maps a failed source ID to the error that sank it
	Failures map[string]string `json:"failures,omitempty"`
}

// Meta is the snapshot-level metadata written beside the statistics. The
// generation timestamp lives here rather than in Statistics so that the
// statistics file is byte-identical across runs over stable input.
type Meta struct {
	GeneratedAt  time.Time  `json:"generated_at"`
	LookbackDays int        `json:"lookback_days_new"`
	Summary      RunSummary `json:"summary"`
}

// Snapshot is the complete output of one pipeline run. Every part of it
// derives from the same fetch pass.
type Snapshot struct {
	Categories []Category
	Sources    []Source
	Issues     []Issue
	Groups     []SourceGroup
	Stats      Statistics
	Meta       Meta
}
