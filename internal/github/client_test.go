package github

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strconv"
	"testing"

	"github.com/sakif/thinktank/internal/apperror"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// newTestClient spins up an httptest server with the given handler and
// returns a client pointed at it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClientWithBaseURL(srv.URL, testLogger())
}

func TestFetchProfile(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/octocat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Accept"); got != "application/vnd.github+json" {
			t.Errorf("Accept = %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"login": "octocat",
			"name": "The Octocat",
			"bio": "Mascot.",
			"public_repos": 8,
			"followers": 100,
			"html_url": "https://github.com/octocat"
		}`)
	})

	p, err := client.FetchProfile(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("FetchProfile() error = %v", err)
	}
	if p.Login != "octocat" || p.Name != "The Octocat" || p.PublicRepos != 8 {
		t.Errorf("unexpected profile: %+v", p)
	}
}

func TestFetchProfile_NotFound(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	_, err := client.FetchProfile(context.Background(), "ghost")
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Errorf("FetchProfile() error = %v, want ErrNotFound", err)
	}
}

// A 403 with the quota header exhausted is a rate limit; a plain 403 is
// not.
func TestFetchProfile_RateLimitClassification(t *testing.T) {
	t.Run("quota exhausted", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.FetchProfile(context.Background(), "octocat")
		if !errors.Is(err, apperror.ErrRateLimited) {
			t.Errorf("error = %v, want ErrRateLimited", err)
		}
	})

	t.Run("plain 403", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Remaining", "42")
			w.WriteHeader(http.StatusForbidden)
		})

		_, err := client.FetchProfile(context.Background(), "octocat")
		if err == nil {
			t.Fatal("expected an error")
		}
		if errors.Is(err, apperror.ErrRateLimited) {
			t.Error("a 403 with quota remaining must not classify as rate limited")
		}
	})
}

// Pagination keeps requesting pages of 100 until a short page arrives.
func TestFetchAllRepos_Pagination(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		if got := r.URL.Query().Get("per_page"); got != "100" {
			t.Errorf("per_page = %q, want 100", got)
		}

		w.Header().Set("Content-Type", "application/json")
		count := 100
		if page == 3 {
			count = 17 // short page ends the listing
		}
		fmt.Fprint(w, "[")
		for i := 0; i < count; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"name": "repo-%d-%d"}`, page, i)
		}
		fmt.Fprint(w, "]")
	})

	repos, err := client.FetchAllRepos(context.Background(), "octocat")
	if err != nil {
		t.Fatalf("FetchAllRepos() error = %v", err)
	}
	if len(repos) != 217 {
		t.Errorf("len(repos) = %d, want 217", len(repos))
	}
}

func TestFetchReadme_DecodesBase64(t *testing.T) {
	content := "# my-project\n\nA thing that does things.\n"
	// GitHub wraps its base64 at 60 columns; reproduce that.
	encoded := base64.StdEncoding.EncodeToString([]byte(content))
	wrapped := ""
	for i := 0; i < len(encoded); i += 60 {
		end := i + 60
		if end > len(encoded) {
			end = len(encoded)
		}
		wrapped += encoded[i:end] + "\n"
	}

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/octocat/my-project/readme" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		body := map[string]string{"content": wrapped, "encoding": "base64"}
		fmt.Fprintf(w, `{"content": %q, "encoding": %q}`, body["content"], body["encoding"])
	})

	got, err := client.FetchReadme(context.Background(), "octocat", "my-project")
	if err != nil {
		t.Fatalf("FetchReadme() error = %v", err)
	}
	if got != content {
		t.Errorf("FetchReadme() = %q, want %q", got, content)
	}
}

// A repository without a README is normal, not an error.
func TestFetchReadme_MissingIsNotAnError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	got, err := client.FetchReadme(context.Background(), "octocat", "bare-repo")
	if err != nil {
		t.Fatalf("FetchReadme() error = %v, want nil for a missing README", err)
	}
	if got != "" {
		t.Errorf("FetchReadme() = %q, want empty", got)
	}
}

func TestFetchReadme_UnexpectedEncoding(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"content": "whatever", "encoding": "utf-8"}`)
	})

	_, err := client.FetchReadme(context.Background(), "octocat", "odd")
	if err == nil {
		t.Fatal("FetchReadme() should reject a non-base64 encoding")
	}
}

func TestFetchLanguages(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"Go": 12345, "Makefile": 200}`)
	})

	langs := client.FetchLanguages(context.Background(), "octocat", "api")
	if langs["Go"] != 12345 || langs["Makefile"] != 200 {
		t.Errorf("unexpected languages: %v", langs)
	}
}

// Language lookups are best-effort: failures yield an empty map so one
// broken call can't fail a whole enrichment.
func TestFetchLanguages_FailureYieldsEmptyMap(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	langs := client.FetchLanguages(context.Background(), "octocat", "api")
	if langs == nil {
		t.Fatal("FetchLanguages() must never return nil")
	}
	if len(langs) != 0 {
		t.Errorf("expected empty map, got %v", langs)
	}
}
