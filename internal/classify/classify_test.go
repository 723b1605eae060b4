package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/danielolaszy/issuehub/pkg/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name         string
		labels       []string
		title        string
		body         string
		wantPriority string
		wantType     string
		wantFriendly bool
		wantHelp     bool
	}{
		{
			name:         "Security label wins regardless of other labels",
			labels:       []string{"security", "good first issue"},
			wantPriority: models.PriorityCritical,
			wantType:     models.TypeSecurity,
			wantFriendly: true,
		},
		{
			name:         "No labels and empty body fall through to defaults",
			labels:       []string{},
			wantPriority: models.PriorityNormal,
			wantType:     models.TypeOther,
		},
		{
			name:         "Nil labels behave like empty",
			labels:       nil,
			title:        "Question about settings",
			wantPriority: models.PriorityNormal,
			wantType:     models.TypeOther,
		},
		{
			name:         "Bug label",
			labels:       []string{"Bug"},
			wantPriority: models.PriorityHigh,
			wantType:     models.TypeBug,
		},
		{
			name:         "Regression counts as bug",
			labels:       []string{"regression"},
			wantPriority: models.PriorityHigh,
			wantType:     models.TypeBug,
		},
		{
			name:         "Feature label",
			labels:       []string{"enhancement"},
			wantPriority: models.PriorityMedium,
			wantType:     models.TypeFeature,
		},
		{
			name:         "Security beats feature whatever the label order",
			labels:       []string{"feature request", "Security"},
			wantPriority: models.PriorityCritical,
			wantType:     models.TypeSecurity,
		},
		{
			name:         "Bug beats feature",
			labels:       []string{"enhancement", "defect"},
			wantPriority: models.PriorityHigh,
			wantType:     models.TypeBug,
		},
		{
			name:         "Docs label classifies type but not priority",
			labels:       []string{"documentation"},
			wantPriority: models.PriorityNormal,
			wantType:     models.TypeDocs,
		},
		{
			name:         "Security keyword in title",
			labels:       []string{},
			title:        "CVE-2024-1234 in session handling",
			wantPriority: models.PriorityCritical,
			wantType:     models.TypeSecurity,
		},
		{
			name:         "Security keyword in body",
			labels:       []string{"documentation"},
			body:         "This exposes a vulnerability in the cookie parser.",
			wantPriority: models.PriorityCritical,
			wantType:     models.TypeSecurity,
		},
		{
			name:         "Bug keyword in text alone does not classify",
			labels:       []string{},
			title:        "Weird error message on startup",
			wantPriority: models.PriorityNormal,
			wantType:     models.TypeOther,
		},
		{
			name:         "Help wanted is friendly and help-wanted",
			labels:       []string{"help wanted"},
			wantPriority: models.PriorityNormal,
			wantType:     models.TypeOther,
			wantFriendly: true,
			wantHelp:     true,
		},
		{
			name:         "Good first issue variants match case-insensitively",
			labels:       []string{"Good-First-Issue"},
			wantPriority: models.PriorityNormal,
			wantType:     models.TypeOther,
			wantFriendly: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.labels, tt.title, tt.body)

			assert.Equal(t, tt.wantPriority, got.Priority)
			assert.Equal(t, tt.wantType, got.Type)
			assert.Equal(t, tt.wantFriendly, got.GoodFirstIssue)
			assert.Equal(t, tt.wantHelp, got.HelpWanted)

			// Totality: the outcome is always a known bucket and tag.
			assert.Contains(t, models.Priorities, got.Priority)
			assert.Contains(t, models.Types, got.Type)
		})
	}
}

func TestClassifyDeterministic(t *testing.T) {
	labels := []string{"enhancement", "help wanted", "needs triage"}
	title := "Add async support to the ORM"
	body := "It would be great if querysets supported await."

	first := Classify(labels, title, body)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Classify(labels, title, body))
	}
}

func TestApply(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	issue := models.Issue{
		Title:     "Crash when saving empty form",
		Labels:    []string{"bug"},
		CreatedAt: now.Add(-48 * time.Hour),
	}
	Apply(&issue, now)

	assert.Equal(t, models.PriorityHigh, issue.Priority)
	assert.Equal(t, models.TypeBug, issue.Type)
	assert.False(t, issue.GoodFirstIssue)
	assert.True(t, issue.New)

	old := models.Issue{
		Title:     "Tracking issue for 6.0",
		CreatedAt: now.AddDate(0, -3, 0),
	}
	Apply(&old, now)

	assert.Equal(t, models.PriorityNormal, old.Priority)
	assert.Equal(t, models.TypeOther, old.Type)
	assert.False(t, old.New)
}

func TestIsNew(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	assert.True(t, IsNew(now.Add(-24*time.Hour), now))
	assert.False(t, IsNew(now.Add(-8*24*time.Hour), now))
	assert.False(t, IsNew(time.Time{}, now))
}
