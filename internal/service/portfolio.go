package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sakif/thinktank/internal/github"
	"github.com/sakif/thinktank/internal/llm"
	"github.com/sakif/thinktank/internal/model"
)

// defaultEnrichConcurrency bounds the per-repository enrichment fan-out.
// Each enriched repo costs up to two GitHub calls plus one LLM call, so an
// unbounded fan-out on a 100-repo account would burn the rate budget in
// one request.
const defaultEnrichConcurrency = 8

// repoProjectLimit caps the quick (non-enriched) project listing.
const repoProjectLimit = 5

// RepoFetcher is the slice of the GitHub client the portfolio service
// needs. Satisfied by *github.Client; tests substitute a fake.
type RepoFetcher interface {
	FetchProfile(ctx context.Context, username string) (*github.Profile, error)
	FetchAllRepos(ctx context.Context, username string) ([]github.Repo, error)
	FetchReadme(ctx context.Context, owner, repo string) (string, error)
	FetchLanguages(ctx context.Context, owner, repo string) map[string]int64
}

// ReadmeAnalyzer turns README content into structured analysis and writes
// the about section. Satisfied by *llm.Analyzer.
type ReadmeAnalyzer interface {
	AnalyzeReadme(ctx context.Context, content, repoName string) llm.Analysis
	GenerateAbout(ctx context.Context, profile *github.Profile, repos []github.Repo) string
}

// PortfolioService aggregates a GitHub account into a portfolio document:
// profile → basic info, repositories → projects (enriched with README
// analysis and language breakdowns), the union of it all → skills.
type PortfolioService struct {
	gh          RepoFetcher
	analyzer    ReadmeAnalyzer
	logger      *slog.Logger
	concurrency int
}

// NewPortfolioService creates a PortfolioService. concurrency <= 0 falls
// back to the default fan-out bound.
func NewPortfolioService(gh RepoFetcher, analyzer ReadmeAnalyzer, logger *slog.Logger, concurrency int) *PortfolioService {
	if concurrency <= 0 {
		concurrency = defaultEnrichConcurrency
	}
	return &PortfolioService{
		gh:          gh,
		analyzer:    analyzer,
		logger:      logger,
		concurrency: concurrency,
	}
}

// GetProfile fetches just the GitHub profile and shapes it as a portfolio
// skeleton: basic info filled in, projects and skills left empty.
func (s *PortfolioService) GetProfile(ctx context.Context, username string) (*model.Portfolio, error) {
	profile, err := s.gh.FetchProfile(ctx, username)
	if err != nil {
		return nil, err
	}
	return &model.Portfolio{
		BasicInfo: basicInfo(profile, username),
		About:     profile.Bio,
		Skills:    []string{},
		Projects:  []model.Project{},
	}, nil
}

// GetProjects returns the user's top repositories as plain project stubs —
// no README analysis, no language calls. The cheap endpoint.
func (s *PortfolioService) GetProjects(ctx context.Context, username string) ([]model.Project, error) {
	repos, err := s.gh.FetchAllRepos(ctx, username)
	if err != nil {
		return nil, err
	}
	repos = publicOnly(repos)
	sortRepos(repos)

	n := len(repos)
	if n > repoProjectLimit {
		n = repoProjectLimit
	}
	projects := make([]model.Project, 0, n)
	for _, r := range repos[:n] {
		p := projectFromRepo(r, llm.Analysis{}, nil)
		if r.Language != "" {
			p.Tech = []string{r.Language}
		}
		projects = append(projects, p)
	}
	return projects, nil
}

// BuildPortfolio assembles the full enriched portfolio for a GitHub
// username.
//
// Profile and repository list are fetched concurrently; each public
// repository is then enriched (README → analysis, language breakdown)
// through a bounded worker fan-out. Enrichment failures degrade the
// single repo, never the whole portfolio.
func (s *PortfolioService) BuildPortfolio(ctx context.Context, username string) (*model.Portfolio, error) {
	var (
		profile    *github.Profile
		repos      []github.Repo
		profileErr error
		reposErr   error
		wg         sync.WaitGroup
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		profile, profileErr = s.gh.FetchProfile(ctx, username)
	}()
	go func() {
		defer wg.Done()
		repos, reposErr = s.gh.FetchAllRepos(ctx, username)
	}()
	wg.Wait()

	if profileErr != nil {
		return nil, profileErr
	}
	if reposErr != nil {
		return nil, reposErr
	}

	repos = publicOnly(repos)
	sortRepos(repos)

	projects := s.enrichRepos(ctx, username, repos)

	portfolio := &model.Portfolio{
		BasicInfo: basicInfo(profile, username),
		About:     s.aboutSection(ctx, profile, repos),
		Skills:    collectSkills(repos, projects),
		Projects:  projects,
	}

	s.logger.Info("portfolio built",
		slog.String("username", username),
		slog.Int("projects", len(projects)),
		slog.Int("skills", len(portfolio.Skills)),
	)
	return portfolio, nil
}

// enrichRepos runs README analysis and language lookup for every repo
// through a bounded fan-out. Results land at their repo's index so the
// sorted order survives the concurrency.
func (s *PortfolioService) enrichRepos(ctx context.Context, username string, repos []github.Repo) []model.Project {
	projects := make([]model.Project, len(repos))

	// Semaphore, not a worker pool: the work items are known up front and
	// short-lived, so a buffered channel of slots is all the machinery
	// this needs.
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, repo := range repos {
		wg.Add(1)
		go func(i int, repo github.Repo) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			readme, err := s.gh.FetchReadme(ctx, username, repo.Name)
			if err != nil {
				// README is enrichment input, not a required field.
				s.logger.Warn("readme fetch failed",
					slog.String("repo", repo.Name),
					slog.String("error", err.Error()),
				)
				readme = ""
			}
			analysis := s.analyzer.AnalyzeReadme(ctx, readme, repo.Name)
			languages := s.gh.FetchLanguages(ctx, username, repo.Name)

			projects[i] = projectFromRepo(repo, analysis, languages)
		}(i, repo)
	}
	wg.Wait()

	return projects
}

// aboutSection picks the about text: the profile bio wins when present,
// otherwise the analyzer writes one from the repository list (and its own
// deterministic fallback guarantees a non-empty result).
func (s *PortfolioService) aboutSection(ctx context.Context, profile *github.Profile, repos []github.Repo) string {
	if bio := strings.TrimSpace(profile.Bio); bio != "" {
		return bio
	}
	// The about prompt wants the user's current work, not their greatest
	// hits: rank by recency here, independent of the star-sorted project
	// order.
	return s.analyzer.GenerateAbout(ctx, profile, recentRepos(repos, 10))
}

// projectFromRepo shapes one repository into a portfolio project,
// merging the language breakdown (largest first) with the technologies
// the README analysis found.
func projectFromRepo(repo github.Repo, analysis llm.Analysis, languages map[string]int64) model.Project {
	description := strings.TrimSpace(repo.Description)
	if description == "" {
		description = analysis.Summary
	}

	tech := mergeTech(repo.Language, languages, analysis.Tech)

	features := analysis.Features
	if features == nil {
		features = []string{}
	}

	p := model.Project{
		Title:       repo.Name,
		Description: description,
		RepoURL:     repo.HTMLURL,
		Tech:        tech,
		Features:    features,
		Stars:       repo.Stars,
		Forks:       repo.Forks,
		CreatedAt:   repo.CreatedAt,
		UpdatedAt:   repo.UpdatedAt,
	}
	if repo.Homepage != "" {
		homepage := repo.Homepage
		p.LiveURL = &homepage
	}
	return p
}

// mergeTech unions the primary language, the byte-ranked language
// breakdown, and the README-derived technologies, deduplicating
// case-insensitively while keeping first-seen casing.
func mergeTech(primary string, languages map[string]int64, fromReadme []string) []string {
	type langWeight struct {
		name  string
		bytes int64
	}
	ranked := make([]langWeight, 0, len(languages))
	for name, n := range languages {
		ranked = append(ranked, langWeight{name, n})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].bytes != ranked[j].bytes {
			return ranked[i].bytes > ranked[j].bytes
		}
		return ranked[i].name < ranked[j].name
	})

	seen := make(map[string]bool)
	tech := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		tech = append(tech, name)
	}

	add(primary)
	for _, lw := range ranked {
		add(lw.name)
	}
	for _, t := range fromReadme {
		add(t)
	}
	return tech
}

// collectSkills unions every technology across all projects plus each
// repo's primary language.
func collectSkills(repos []github.Repo, projects []model.Project) []string {
	seen := make(map[string]bool)
	skills := []string{}
	add := func(name string) {
		name = strings.TrimSpace(name)
		if name == "" {
			return
		}
		key := strings.ToLower(name)
		if seen[key] {
			return
		}
		seen[key] = true
		skills = append(skills, name)
	}

	for _, r := range repos {
		add(r.Language)
	}
	for _, p := range projects {
		for _, t := range p.Tech {
			add(t)
		}
	}
	return skills
}

// publicOnly drops private and archived-visibility repos; only public
// work belongs on a portfolio.
func publicOnly(repos []github.Repo) []github.Repo {
	out := repos[:0:0]
	for _, r := range repos {
		if !r.Private {
			out = append(out, r)
		}
	}
	return out
}

// sortRepos orders by stars descending, most recently updated breaking
// ties.
func sortRepos(repos []github.Repo) {
	sort.SliceStable(repos, func(i, j int) bool {
		if repos[i].Stars != repos[j].Stars {
			return repos[i].Stars > repos[j].Stars
		}
		return repos[i].UpdatedAt.After(repos[j].UpdatedAt)
	})
}

// recentRepos returns the n most recently updated repos. Works on a copy
// so the caller's star-sorted order is left alone.
func recentRepos(repos []github.Repo, n int) []github.Repo {
	recent := append(repos[:0:0], repos...)
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].UpdatedAt.After(recent[j].UpdatedAt)
	})
	if len(recent) > n {
		recent = recent[:n]
	}
	return recent
}

// basicInfo maps a GitHub profile onto the portfolio's basic-info block.
func basicInfo(profile *github.Profile, username string) model.BasicInfo {
	fullName := profile.Name
	if fullName == "" {
		fullName = username
	}

	social := model.SocialLinks{GitHub: profile.HTMLURL}
	if profile.TwitterUsername != "" {
		twitter := fmt.Sprintf("https://twitter.com/%s", profile.TwitterUsername)
		social.Twitter = &twitter
	}
	if profile.Blog != "" {
		blog := profile.Blog
		if !strings.HasPrefix(blog, "http://") && !strings.HasPrefix(blog, "https://") {
			blog = "https://" + blog
		}
		social.Portfolio = &blog
	}

	return model.BasicInfo{
		FullName:     fullName,
		Headline:     profile.Bio,
		Location:     profile.Location,
		ProfileImage: profile.AvatarURL,
		Social:       social,
		Followers:    profile.Followers,
		Following:    profile.Following,
		PublicRepos:  profile.PublicRepos,
	}
}
