package handler_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/thinktank/internal/apperror"
	"github.com/sakif/thinktank/internal/github"
	"github.com/sakif/thinktank/internal/handler"
	"github.com/sakif/thinktank/internal/llm"
	"github.com/sakif/thinktank/internal/service"
)

// stubFetcher is a canned service.RepoFetcher.
type stubFetcher struct {
	profile    *github.Profile
	repos      []github.Repo
	profileErr error
	reposErr   error
}

func (s *stubFetcher) FetchProfile(ctx context.Context, username string) (*github.Profile, error) {
	return s.profile, s.profileErr
}

func (s *stubFetcher) FetchAllRepos(ctx context.Context, username string) ([]github.Repo, error) {
	return s.repos, s.reposErr
}

func (s *stubFetcher) FetchReadme(ctx context.Context, owner, repo string) (string, error) {
	return "", nil
}

func (s *stubFetcher) FetchLanguages(ctx context.Context, owner, repo string) map[string]int64 {
	return map[string]int64{}
}

func newGitHubRouter(fetcher service.RepoFetcher) *chi.Mux {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	analyzer := llm.NewAnalyzer(nil, logger)
	svc := service.NewPortfolioService(fetcher, analyzer, logger, 0)
	h := handler.NewGitHubHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/api/github/profile/{username}", h.Profile)
	r.Get("/api/github/repos/{username}", h.Repos)
	r.Get("/api/github/enriched/{username}", h.Enriched)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestGitHubHandler_Enriched(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		router := newGitHubRouter(&stubFetcher{
			profile: &github.Profile{Login: "octocat", Name: "The Octocat", Bio: "Mascot."},
			repos: []github.Repo{
				{Name: "api", HTMLURL: "https://github.com/octocat/api", Language: "Go", Stars: 3, UpdatedAt: time.Now()},
			},
		})

		rr := get(router, "/api/github/enriched/octocat")
		require.Equal(t, http.StatusOK, rr.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, true, body["success"])

		data := body["data"].(map[string]any)
		basic := data["basicInfo"].(map[string]any)
		assert.Equal(t, "The Octocat", basic["fullName"])
		assert.Len(t, data["projects"], 1)
		assert.Equal(t, "Mascot.", data["about"])
	})

	t.Run("unknown user maps to 404", func(t *testing.T) {
		router := newGitHubRouter(&stubFetcher{
			profileErr: apperror.NotFound("user", "ghost"),
			reposErr:   apperror.NotFound("user", "ghost"),
		})

		rr := get(router, "/api/github/enriched/ghost")
		assert.Equal(t, http.StatusNotFound, rr.Code)

		var body map[string]any
		require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "not_found", body["error"])
	})

	t.Run("rate limit maps to 429", func(t *testing.T) {
		router := newGitHubRouter(&stubFetcher{
			profileErr: apperror.RateLimited("GitHub"),
			reposErr:   apperror.RateLimited("GitHub"),
		})

		rr := get(router, "/api/github/enriched/octocat")
		assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	})
}

func TestGitHubHandler_Profile(t *testing.T) {
	router := newGitHubRouter(&stubFetcher{
		profile: &github.Profile{Login: "octocat", Name: "The Octocat"},
	})

	rr := get(router, "/api/github/profile/octocat")
	require.Equal(t, http.StatusOK, rr.Code)

	var body map[string]any
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	data := body["data"].(map[string]any)
	// Profile endpoint returns the skeleton: no projects, no skills.
	assert.Empty(t, data["projects"])
	assert.Empty(t, data["skills"])
}

func TestGitHubHandler_Repos(t *testing.T) {
	router := newGitHubRouter(&stubFetcher{
		profile: &github.Profile{Login: "octocat"},
		repos: []github.Repo{
			{Name: "one", Stars: 2, UpdatedAt: time.Now()},
			{Name: "two", Stars: 9, UpdatedAt: time.Now()},
		},
	})

	rr := get(router, "/api/github/repos/octocat")
	require.Equal(t, http.StatusOK, rr.Code)

	var body struct {
		Success bool `json:"success"`
		Data    []struct {
			Title string `json:"title"`
			Stars int    `json:"stars"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	require.Len(t, body.Data, 2)
	assert.Equal(t, "two", body.Data[0].Title) // sorted by stars
}
