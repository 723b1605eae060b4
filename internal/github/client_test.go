package github

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/google/go-github/v41/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielolaszy/issuehub/pkg/models"
)

var testSource = models.Source{
	ID:            "django/django",
	Category:      "core",
	CategoryLabel: "Core Framework",
}

// newTestClient returns a Client pointed at a local test server, with the
// backoff sleep stubbed out.
func newTestClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	api := github.NewClient(nil)
	base, err := url.Parse(srv.URL + "/")
	require.NoError(t, err)
	api.BaseURL = base

	c := newClient(api)
	c.sleep = func(time.Duration) {}
	return c
}

func issueJSON(id, number int, title string, extra string) string {
	s := fmt.Sprintf(`{"id": %d, "number": %d, "title": %q, "body": "some body",
		"html_url": "https://github.com/django/django/issues/%d",
		"comments": 2,
		"user": {"login": "alice", "avatar_url": "https://avatars.example/alice"},
		"labels": [{"name": "bug"}],
		"created_at": "2025-06-01T10:00:00Z",
		"updated_at": "2025-06-10T10:00:00Z"`, id, number, title, number)
	if extra != "" {
		s += ", " + extra
	}
	return s + "}"
}

func TestFetchOpenIssues(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/django/django/issues", r.URL.Path)
		assert.Equal(t, "open", r.URL.Query().Get("state"))
		assert.Equal(t, "updated", r.URL.Query().Get("sort"))
		assert.Equal(t, "desc", r.URL.Query().Get("direction"))

		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprintf(w, "[%s]", issueJSON(3, 103, "third", ""))
			return
		}

		// First page: one real issue, one pull request, one malformed record.
		w.Header().Set("Link", `</repos/django/django/issues?page=2>; rel="next"`)
		fmt.Fprintf(w, "[%s, %s, %s]",
			issueJSON(1, 101, "first", ""),
			issueJSON(2, 102, "a pull request", `"pull_request": {"url": "https://api.github.com/repos/django/django/pulls/102"}`),
			`{"number": 104, "title": "no id"}`,
		)
	})

	c := newTestClient(t, handler)

	issues, skipped, err := c.FetchOpenIssues(context.Background(), testSource, 30)
	require.NoError(t, err)

	assert.Equal(t, 1, skipped)
	require.Len(t, issues, 2)
	assert.Equal(t, "first", issues[0].Title)
	assert.Equal(t, "third", issues[1].Title)
	assert.Equal(t, "django/django", issues[0].Source)
	assert.Equal(t, "core", issues[0].Category)
	assert.Equal(t, []string{"bug"}, issues[0].Labels)
	assert.Equal(t, "alice", issues[0].Author)
	assert.Equal(t, 2, issues[0].Comments)
	assert.Equal(t, time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC), issues[0].CreatedAt)
}

func TestFetchOpenIssuesRespectsLimit(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		// More issues than the limit, with a next page that must not be hit.
		w.Header().Set("Link", `</repos/django/django/issues?page=2>; rel="next"`)
		var records []string
		for i := 1; i <= 5; i++ {
			records = append(records, issueJSON(i, 100+i, fmt.Sprintf("issue %d", i), ""))
		}
		fmt.Fprintf(w, "[%s]", strings.Join(records, ","))
	})

	c := newTestClient(t, handler)

	issues, skipped, err := c.FetchOpenIssues(context.Background(), testSource, 3)
	require.NoError(t, err)
	assert.Zero(t, skipped)
	assert.Len(t, issues, 3)
}

func TestFetchOpenIssuesRetriesOnRateLimit(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Reset already in the past so the client retries over the wire
			// instead of short-circuiting on its cached rate state.
			w.Header().Set("X-RateLimit-Limit", "5000")
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(-time.Second).Unix()))
			w.WriteHeader(http.StatusForbidden)
			fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "[%s]", issueJSON(1, 101, "after retry", ""))
	})

	c := newTestClient(t, handler)
	var waits []time.Duration
	c.sleep = func(d time.Duration) { waits = append(waits, d) }

	issues, _, err := c.FetchOpenIssues(context.Background(), testSource, 30)
	require.NoError(t, err)

	assert.Equal(t, 2, calls)
	require.Len(t, waits, 1)
	assert.Equal(t, retryBackoff, waits[0])
	require.Len(t, issues, 1)
	assert.Equal(t, "after retry", issues[0].Title)
}

func TestFetchOpenIssuesGivesUpAfterBoundedRetries(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("X-RateLimit-Limit", "5000")
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", fmt.Sprint(time.Now().Add(-time.Second).Unix()))
		w.WriteHeader(http.StatusForbidden)
		fmt.Fprint(w, `{"message": "API rate limit exceeded"}`)
	})

	c := newTestClient(t, handler)

	_, _, err := c.FetchOpenIssues(context.Background(), testSource, 30)
	require.Error(t, err)
	assert.Equal(t, maxAttempts, calls)
}

func TestFetchOpenIssuesFailsFastOnHardError(t *testing.T) {
	var calls int
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusNotFound)
		fmt.Fprint(w, `{"message": "Not Found"}`)
	})

	c := newTestClient(t, handler)

	_, _, err := c.FetchOpenIssues(context.Background(), testSource, 30)
	require.Error(t, err)
	assert.Equal(t, 1, calls, "renamed/missing repositories should not be retried")
}

func TestFetchRepoInfo(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/django/django", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"stargazers_count": 80000,
			"forks_count": 32000,
			"open_issues_count": 150,
			"description": "The Web framework for perfectionists with deadlines."
		}`)
	})

	c := newTestClient(t, handler)

	info, err := c.FetchRepoInfo(context.Background(), testSource)
	require.NoError(t, err)
	assert.Equal(t, 80000, info.Stars)
	assert.Equal(t, 32000, info.Forks)
	assert.Equal(t, 150, info.OpenIssues)
	assert.Contains(t, info.Description, "perfectionists")
}

func TestSplitRepo(t *testing.T) {
	owner, repo, err := splitRepo("django/django")
	require.NoError(t, err)
	assert.Equal(t, "django", owner)
	assert.Equal(t, "django", repo)

	_, _, err = splitRepo("not-a-repo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid repository format")
}

func TestPreview(t *testing.T) {
	assert.Equal(t, "", preview(""))
	assert.Equal(t, "one line", preview("one\nline"))
	assert.Equal(t, "a b", preview("  a\r\nb  "))

	long := strings.Repeat("x", 450)
	got := preview(long)
	assert.Len(t, got, previewLength+3)
	assert.True(t, strings.HasSuffix(got, "..."))
}
