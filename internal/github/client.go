// Package github is a thin client for the GitHub REST API, covering the
// four calls the portfolio pipeline needs: user profile, repository list,
// per-repo README, and per-repo language breakdown.
//
// GitHub returns much larger objects than we use — each response struct
// unmarshals only the fields the pipeline reads.
//
// RATE LIMITS:
// Unauthenticated callers get 60 requests/hour; with a token (GITHUB_TOKEN)
// the limit is 5000/hour. When the quota is gone GitHub answers 403 with an
// "X-RateLimit-Remaining: 0" header, which we classify as ErrRateLimited so
// the handler can answer 429 instead of a misleading 500. A local
// rate.Limiter additionally smooths the per-repo fan-out so one enrichment
// request doesn't fire dozens of calls in the same instant.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/sakif/thinktank/internal/apperror"
)

const defaultBaseURL = "https://api.github.com"

// reposPageSize is the page size for repository listing. 100 is GitHub's
// maximum; pagination stops at the first short page.
const reposPageSize = 100

// Profile is the portion of the GET /users/{username} response we use.
type Profile struct {
	Login           string `json:"login"`
	Name            string `json:"name"`
	Bio             string `json:"bio"`
	Location        string `json:"location"`
	AvatarURL       string `json:"avatar_url"`
	HTMLURL         string `json:"html_url"`
	Blog            string `json:"blog"`
	TwitterUsername string `json:"twitter_username"`
	Followers       int    `json:"followers"`
	Following       int    `json:"following"`
	PublicRepos     int    `json:"public_repos"`
}

// Repo is the portion of a repository object we use.
type Repo struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	HTMLURL     string    `json:"html_url"`
	Homepage    string    `json:"homepage"`
	Language    string    `json:"language"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Private     bool      `json:"private"`
	Fork        bool      `json:"fork"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// readmeResponse is the GET /repos/{owner}/{repo}/readme payload. Content
// arrives base64-encoded with embedded newlines.
type readmeResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// Client calls the GitHub REST API.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a GitHub API client. token is optional; when set, an
// oauth2 static token source authenticates every request (raising the rate
// limit and granting access to the caller's private repo metadata).
func NewClient(token string, logger *slog.Logger) *Client {
	httpClient := &http.Client{Timeout: 20 * time.Second}
	if token != "" {
		// oauth2.NewClient returns an *http.Client whose transport adds
		// "Authorization: Bearer <token>" to every request.
		src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		httpClient = oauth2.NewClient(context.Background(), src)
		httpClient.Timeout = 20 * time.Second
	}

	return &Client{
		baseURL: defaultBaseURL,
		http:    httpClient,
		// 10 rps with a burst of 20: enough headroom for the bounded
		// enrichment fan-out, gentle enough not to trip abuse detection.
		limiter: rate.NewLimiter(rate.Limit(10), 20),
		logger:  logger,
	}
}

// NewClientWithBaseURL creates a client pointed at a custom API root.
// Used by tests to target an httptest server.
func NewClientWithBaseURL(baseURL string, logger *slog.Logger) *Client {
	c := NewClient("", logger)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// FetchProfile returns the public profile for a username.
// Returns apperror.ErrNotFound if the user does not exist.
func (c *Client) FetchProfile(ctx context.Context, username string) (*Profile, error) {
	var p Profile
	if err := c.getJSON(ctx, "/users/"+username, "user", username, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// FetchAllRepos returns every repository of a user, paginating at the
// maximum page size until a short page signals the end of the list.
func (c *Client) FetchAllRepos(ctx context.Context, username string) ([]Repo, error) {
	var all []Repo
	for page := 1; ; page++ {
		path := fmt.Sprintf("/users/%s/repos?per_page=%d&page=%d", username, reposPageSize, page)
		var repos []Repo
		if err := c.getJSON(ctx, path, "user", username, &repos); err != nil {
			return nil, err
		}
		all = append(all, repos...)
		if len(repos) < reposPageSize {
			return all, nil
		}
	}
}

// FetchReadme returns the decoded README text for a repository, or
// ("", nil) when the repo has no README — absence is an expected,
// non-fatal outcome, not an error.
func (c *Client) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/readme", owner, repo))
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return "", nil
	}
	if resp.StatusCode != http.StatusOK {
		return "", c.classify(resp, "readme", owner+"/"+repo)
	}

	var body readmeResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("github: decoding readme response: %w", err)
	}

	if body.Encoding != "base64" {
		// GitHub has only ever used base64 here; anything else means the
		// payload shape changed under us.
		return "", fmt.Errorf("github: unexpected readme encoding %q", body.Encoding)
	}

	// The content field wraps its base64 at 60 columns; strip the
	// newlines before decoding.
	raw := strings.ReplaceAll(body.Content, "\n", "")
	decoded, err := base64.StdEncoding.DecodeString(raw)
	if err != nil {
		return "", fmt.Errorf("github: decoding readme content: %w", err)
	}

	return string(decoded), nil
}

// FetchLanguages returns the byte counts per language for a repository.
// Best-effort: any failure yields an empty map and never an error, so a
// single broken language call can't sink a whole enrichment request.
func (c *Client) FetchLanguages(ctx context.Context, owner, repo string) map[string]int64 {
	langs := map[string]int64{}

	resp, err := c.get(ctx, fmt.Sprintf("/repos/%s/%s/languages", owner, repo))
	if err != nil {
		c.logger.Debug("github: languages fetch failed",
			slog.String("repo", owner+"/"+repo),
			slog.String("error", err.Error()),
		)
		return langs
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return langs
	}
	if err := json.NewDecoder(resp.Body).Decode(&langs); err != nil {
		return map[string]int64{}
	}
	return langs
}

// get performs a paced GET against the API root.
func (c *Client) get(ctx context.Context, path string) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("github: waiting for rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", path, err)
	}
	return resp, nil
}

// getJSON performs a GET and decodes a 200 response into out, applying the
// standard status classification otherwise.
func (c *Client) getJSON(ctx context.Context, path, resource, id string, out any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.classify(resp, resource, id)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("github: decoding %s response: %w", resource, err)
	}
	return nil
}

// classify maps a non-200 GitHub response to the error taxonomy.
//
//	404                                  → not found
//	403/429 with zero remaining quota    → rate limited
//	anything else                        → generic error (→ HTTP 500)
func (c *Client) classify(resp *http.Response, resource, id string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperror.NotFound(resource, id)
	case resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusTooManyRequests:
		if resp.Header.Get("X-RateLimit-Remaining") == "0" {
			c.logger.Warn("github: rate limit exhausted",
				slog.String("reset", resp.Header.Get("X-RateLimit-Reset")),
			)
			return apperror.RateLimited("GitHub")
		}
		fallthrough
	default:
		return fmt.Errorf("github: unexpected status %d for %s %s", resp.StatusCode, resource, id)
	}
}
