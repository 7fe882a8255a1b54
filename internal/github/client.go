// Package github lists the authenticated user's repositories through the
// GitHub REST API.
package github

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gofri/go-github-ratelimit/v2/github_ratelimit"
	gh "github.com/google/go-github/v82/github"
	"github.com/gregjones/httpcache"

	"git.home.luguber.info/inful/gourcers/internal/logfields"
	"git.home.luguber.info/inful/gourcers/internal/selector"
)

// Warn when the remaining core quota drops below this.
const lowQuotaThreshold = 100

// Repo is one listed repository: the fields rule evaluation sees plus
// the clone metadata later stages need.
type Repo struct {
	selector.RepoRecord

	SSHURL        string
	CloneURL      string
	DefaultBranch string
	PushedAt      time.Time
}

// Client wraps the go-github REST client.
type Client struct {
	gh *gh.Client
}

// NewClient creates a GitHub API client with the following transport stack:
//  1. httpcache (ETag-based conditional request caching)
//  2. go-github-ratelimit (secondary rate limit middleware, sleeps on 429)
//  3. go-github (GitHub REST API client with PAT auth)
func NewClient(token string) *Client {
	cacheTransport := httpcache.NewMemoryCacheTransport()
	rateLimitClient := github_ratelimit.NewClient(cacheTransport)
	client := gh.NewClient(rateLimitClient).WithAuthToken(token)

	return &Client{gh: client}
}

// NewClientWithHTTPClient creates a Client with a custom http.Client and base
// URL. This constructor is intended for testing, allowing injection of an
// httptest server.
func NewClientWithHTTPClient(httpClient *http.Client, baseURL, token string) (*Client, error) {
	client := gh.NewClient(httpClient)

	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base URL: %w", err)
	}
	client.BaseURL = u

	if token != "" {
		client = client.WithAuthToken(token)
	}

	return &Client{gh: client}, nil
}

// ListRepos retrieves every repository visible to the authenticated user,
// including private ones and forks. It handles pagination automatically
// and maps go-github types through the nil-safe getters.
func (c *Client) ListRepos(ctx context.Context) ([]Repo, error) {
	opts := &gh.RepositoryListByAuthenticatedUserOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}

	var all []Repo

	for {
		repos, resp, err := c.gh.Repositories.ListByAuthenticatedUser(ctx, opts)
		if err != nil {
			return nil, classifyListError(err, opts.Page)
		}

		logRateLimit(resp, opts.Page, len(repos))

		for _, r := range repos {
			all = append(all, mapRepository(r))
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return all, nil
}

// mapRepository converts a go-github Repository to a Repo.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapRepository(r *gh.Repository) Repo {
	return Repo{
		RepoRecord: selector.RepoRecord{
			Name:     r.GetName(),
			Owner:    r.GetOwner().GetLogin(),
			FullName: r.GetFullName(),
			IsFork:   r.GetFork(),
		},
		SSHURL:        r.GetSSHURL(),
		CloneURL:      r.GetCloneURL(),
		DefaultBranch: r.GetDefaultBranch(),
		PushedAt:      r.GetPushedAt().Time,
	}
}

// classifyListError maps go-github failures onto the typed errors callers
// branch on; anything unrecognized is wrapped with the page number.
func classifyListError(err error, page int) error {
	var rle *gh.RateLimitError
	if errors.As(err, &rle) {
		return &RateLimitError{Reset: rle.Rate.Reset.Time, Err: err}
	}

	var er *gh.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			return &AuthError{Op: "list repositories", Err: err}
		}
	}

	return fmt.Errorf("listing repositories (page %d): %w", page, err)
}

// logRateLimit logs the GitHub API rate limit status after each page.
func logRateLimit(resp *gh.Response, page, count int) {
	if resp == nil {
		return
	}

	slog.Debug("github api call",
		logfields.Page(page),
		logfields.Count(count),
		slog.Int("rate_remaining", resp.Rate.Remaining),
		slog.Int("rate_limit", resp.Rate.Limit),
	)

	if resp.Rate.Limit > 0 && resp.Rate.Remaining < lowQuotaThreshold {
		slog.Warn("github rate limit low",
			slog.Int("remaining", resp.Rate.Remaining),
			slog.Duration("reset_in", time.Until(resp.Rate.Reset.Time).Round(time.Second)),
		)
	}
}
