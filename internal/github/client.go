// Package github provides functionality for interacting with the GitHub API.
package github

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/go-github/v41/github"
	"golang.org/x/oauth2"

	"github.com/danielolaszy/issuehub/internal/config"
	"github.com/danielolaszy/issuehub/internal/logging"
	"github.com/danielolaszy/issuehub/pkg/models"
)

const (
	// maxAttempts bounds how often a throttled request is retried before the
	// source is given up on.
	maxAttempts = 3

	// retryBackoff is the base wait between throttled attempts; it grows
	// linearly with the attempt number.
	retryBackoff = 2 * time.Second

	// previewLength caps the persisted body excerpt, in runes.
	previewLength = 400
)

// Client encapsulates the GitHub API client.
type Client struct {
	client *github.Client

	// sleep is swapped out in tests to avoid real backoff waits
	sleep func(time.Duration)
}

// NewClient creates a new GitHub API client using configuration from
// environment variables. It authenticates with the configured token, points
// at github.com or a GitHub Enterprise installation, and tests the
// connection. A missing token is a configuration error reported before any
// network call.
func NewClient() (*Client, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	token := cfg.GitHub.Token
	if token == "" {
		return nil, fmt.Errorf("github token not found in configuration")
	}

	apiURL := cfg.GitHub.APIBaseURL()

	logging.Info("github configuration",
		"domain", cfg.GitHub.Domain,
		"api_url", apiURL,
		"token", logging.MaskSensitive(token))

	// Create the oauth2 client
	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	// If not using default GitHub.com, set custom API endpoint
	if cfg.GitHub.Domain != "github.com" {
		parsedURL, err := url.Parse(apiURL)
		if err != nil {
			return nil, fmt.Errorf("invalid github api url: %w", err)
		}
		client.BaseURL = parsedURL
		client.UploadURL = parsedURL
	}

	// Test the token
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	user, _, err := client.Users.Get(ctx, "")
	if err != nil {
		logging.Error("failed to test github token", "error", err)
		return nil, fmt.Errorf("error testing github token: %w", err)
	}

	logging.Info("github authentication successful",
		"username", user.GetLogin())

	return newClient(client), nil
}

// newClient wraps an already-configured API client. Used directly by tests.
func newClient(api *github.Client) *Client {
	return &Client{
		client: api,
		sleep:  time.Sleep,
	}
}

// FetchOpenIssues retrieves up to limit open issues for a source, most
// recently updated first. It filters out pull requests, follows pagination
// until the limit is reached or the source is exhausted, and converts the
// API objects to our internal model. Malformed records are skipped and
// counted rather than failing the source; the skipped count is returned
// alongside the issues.
func (c *Client) FetchOpenIssues(ctx context.Context, source models.Source, limit int) ([]models.Issue, int, error) {
	owner, repo, err := splitRepo(source.ID)
	if err != nil {
		return nil, 0, err
	}

	perPage := limit
	if perPage > 100 {
		perPage = 100
	}
	opts := &github.IssueListByRepoOptions{
		State:     "open",
		Sort:      "updated",
		Direction: "desc",
		ListOptions: github.ListOptions{
			PerPage: perPage,
		},
	}

	var issues []models.Issue
	skipped := 0

	for {
		page, resp, err := c.listIssuesPage(ctx, owner, repo, opts)
		if err != nil {
			return nil, skipped, fmt.Errorf("failed to fetch issues for %s: %w", source.ID, err)
		}

		for _, raw := range page {
			// Skip pull requests (they're also returned by the Issues API)
			if raw.PullRequestLinks != nil {
				continue
			}

			issue, ok := convertIssue(raw, source)
			if !ok {
				skipped++
				logging.Warn("skipping malformed issue record", "repository", source.ID)
				continue
			}

			issues = append(issues, issue)
			if len(issues) >= limit {
				return issues, skipped, nil
			}
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return issues, skipped, nil
}

// FetchRepoInfo retrieves repository-level metadata for a source.
func (c *Client) FetchRepoInfo(ctx context.Context, source models.Source) (models.RepoInfo, error) {
	owner, repo, err := splitRepo(source.ID)
	if err != nil {
		return models.RepoInfo{}, err
	}

	repository, _, err := c.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return models.RepoInfo{}, fmt.Errorf("failed to fetch repository info for %s: %w", source.ID, err)
	}

	return models.RepoInfo{
		Stars:       repository.GetStargazersCount(),
		Forks:       repository.GetForksCount(),
		OpenIssues:  repository.GetOpenIssuesCount(),
		Description: repository.GetDescription(),
	}, nil
}

// listIssuesPage fetches one page of issues, retrying a bounded number of
// times when the API throttles the request. Non-throttling errors fail
// immediately.
func (c *Client) listIssuesPage(ctx context.Context, owner, repo string, opts *github.IssueListByRepoOptions) ([]*github.Issue, *github.Response, error) {
	for attempt := 1; ; attempt++ {
		page, resp, err := c.client.Issues.ListByRepo(ctx, owner, repo, opts)
		if err == nil {
			return page, resp, nil
		}

		if !isRateLimited(err) || attempt >= maxAttempts {
			return nil, resp, err
		}

		wait := time.Duration(attempt) * retryBackoff
		logging.Warn("rate limited, backing off",
			"repository", owner+"/"+repo,
			"attempt", attempt,
			"wait", wait)
		c.sleep(wait)
	}
}

// isRateLimited reports whether err is a transient throttling response.
func isRateLimited(err error) bool {
	var rateLimit *github.RateLimitError
	var abuse *github.AbuseRateLimitError
	return errors.As(err, &rateLimit) || errors.As(err, &abuse)
}

// convertIssue maps a raw API issue onto the internal model. It returns
// false for records missing their identifying fields; those are skipped by
// the caller instead of failing the whole source.
func convertIssue(raw *github.Issue, source models.Source) (models.Issue, bool) {
	if raw == nil || raw.ID == nil || raw.Number == nil || raw.Title == nil {
		return models.Issue{}, false
	}

	labelNames := make([]string, 0, len(raw.Labels))
	for _, label := range raw.Labels {
		labelNames = append(labelNames, label.GetName())
	}

	author := raw.GetUser().GetLogin()
	if author == "" {
		author = "unknown"
	}

	body := raw.GetBody()

	return models.Issue{
		ID:            raw.GetID(),
		Number:        raw.GetNumber(),
		Source:        source.ID,
		Category:      source.Category,
		CategoryLabel: source.CategoryLabel,
		Title:         raw.GetTitle(),
		Body:          body,
		BodyPreview:   preview(body),
		Labels:        labelNames,
		Author:        author,
		AuthorAvatar:  raw.GetUser().GetAvatarURL(),
		Comments:      raw.GetComments(),
		URL:           raw.GetHTMLURL(),
		CreatedAt:     raw.GetCreatedAt(),
		UpdatedAt:     raw.GetUpdatedAt(),
	}, true
}

// preview collapses the body to a single line capped at previewLength runes.
func preview(body string) string {
	flat := strings.Join(strings.Fields(body), " ")

	runes := []rune(flat)
	if len(runes) <= previewLength {
		return flat
	}
	return string(runes[:previewLength]) + "..."
}

// splitRepo parses an "owner/repo" identifier.
func splitRepo(repository string) (string, string, error) {
	parts := strings.Split(repository, "/")
	if len(parts) != 2 {
		return "", "", fmt.Errorf("invalid repository format: %s, expected format: owner/repo", repository)
	}
	return parts[0], parts[1], nil
}
