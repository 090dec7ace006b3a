package llm

import (
	"strings"
	"testing"

	"github.com/sakif/thinktank/internal/github"
)

func testProfile() *github.Profile {
	return &github.Profile{
		Login:       "octocat",
		Name:        "The Octocat",
		Location:    "San Francisco",
		PublicRepos: 8,
		Followers:   100,
	}
}

func testRepos() []github.Repo {
	return []github.Repo{
		{Name: "api", Description: "A REST API", Language: "Go", Stars: 12},
		{Name: "web", Description: "Frontend", Language: "TypeScript", Stars: 4},
		{Name: "scripts", Description: "Odds and ends", Language: "Go", Stars: 1},
	}
}

func TestFallbackAbout_NamesTopLanguages(t *testing.T) {
	about := fallbackAbout(testProfile(), testRepos())

	if !strings.Contains(about, "Go") || !strings.Contains(about, "TypeScript") {
		t.Errorf("fallback about should mention the repo languages: %q", about)
	}
	if !strings.Contains(about, "8 public repositories") {
		t.Errorf("fallback about should mention the repo count: %q", about)
	}
	// Go appears in two repos but must be listed once.
	if strings.Count(about, "Go,") > 1 {
		t.Errorf("language list has duplicates: %q", about)
	}
}

func TestFallbackAbout_NoLanguages(t *testing.T) {
	about := fallbackAbout(testProfile(), []github.Repo{{Name: "empty"}})
	if about == "" {
		t.Error("fallback about must not be empty even without languages")
	}
}
