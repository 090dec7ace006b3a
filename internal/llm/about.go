package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/thinktank/internal/github"
)

const aboutPromptTemplate = `
Based on this GitHub profile information, generate a professional "about" section (2-3 sentences):

Profile: %s
Location: %s
Public Repos: %d
Followers: %d

Top Repositories:
%s

Generate a concise, professional about section that highlights their development expertise and interests. Return only the about text, no additional formatting.
`

// GenerateAbout produces the portfolio's "about" paragraph from a GitHub
// profile and its most relevant repositories (the caller passes the top 10
// by recency). Like everything in this package it never fails: if the
// model is unavailable or errors, a deterministic template built from the
// repo languages takes over.
//
// The bio-first rule lives in the aggregator, not here — this is only
// called when the profile has no bio.
func (a *Analyzer) GenerateAbout(ctx context.Context, profile *github.Profile, repos []github.Repo) string {
	if a.gen != nil {
		var lines []string
		for _, r := range repos {
			lines = append(lines, fmt.Sprintf("- %s: %s (%s, %d stars)",
				r.Name, r.Description, r.Language, r.Stars))
		}

		displayName := profile.Name
		if displayName == "" {
			displayName = profile.Login
		}
		location := profile.Location
		if location == "" {
			location = "Not specified"
		}

		prompt := fmt.Sprintf(aboutPromptTemplate,
			displayName, location, profile.PublicRepos, profile.Followers,
			strings.Join(lines, "\n"))

		about, err := a.gen.GenerateText(ctx, prompt)
		if err == nil && strings.TrimSpace(about) != "" {
			return strings.TrimSpace(stripFences(about))
		}
		if err != nil {
			a.logger.Warn("llm: about generation failed",
				slog.String("login", profile.Login),
				slog.String("error", err.Error()),
			)
		}
	}

	return fallbackAbout(profile, repos)
}

// fallbackAbout is the deterministic about text: the profile's top repo
// languages plus the repo count. Always non-empty.
func fallbackAbout(profile *github.Profile, repos []github.Repo) string {
	var languages []string
	seen := map[string]bool{}
	for _, r := range repos {
		if r.Language == "" || seen[r.Language] {
			continue
		}
		seen[r.Language] = true
		languages = append(languages, r.Language)
		if len(languages) == 3 {
			break
		}
	}

	if len(languages) == 0 {
		return fmt.Sprintf("Developer with %d public repositories, showcasing expertise in various technologies and contributing to the open-source community.", profile.PublicRepos)
	}

	return fmt.Sprintf("Developer specializing in %s with %d public repositories.",
		strings.Join(languages, ", "), profile.PublicRepos)
}
