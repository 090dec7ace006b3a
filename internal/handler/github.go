package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/thinktank/internal/apperror"
	"github.com/sakif/thinktank/internal/service"
)

// GitHubHandler exposes the portfolio endpoints built on GitHub data.
type GitHubHandler struct {
	portfolio *service.PortfolioService
	logger    *slog.Logger
}

// NewGitHubHandler creates a GitHubHandler backed by the portfolio service.
func NewGitHubHandler(portfolio *service.PortfolioService, logger *slog.Logger) *GitHubHandler {
	return &GitHubHandler{portfolio: portfolio, logger: logger}
}

// Profile handles GET /api/github/profile/{username} — basic info only,
// a single upstream call.
func (h *GitHubHandler) Profile(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, apperror.ValidationFailed("username", "GitHub username is required"))
		return
	}

	portfolio, err := h.portfolio.GetProfile(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", portfolio)
}

// Repos handles GET /api/github/repos/{username} — the quick project
// listing without README analysis.
func (h *GitHubHandler) Repos(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, apperror.ValidationFailed("username", "GitHub username is required"))
		return
	}

	projects, err := h.portfolio.GetProjects(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "", projects)
}

// Enriched handles GET /api/github/enriched/{username} — the full
// portfolio build with README analysis and language breakdowns. This is
// the expensive endpoint; everything upstream of it is rate limited.
func (h *GitHubHandler) Enriched(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")
	if username == "" {
		writeError(w, apperror.ValidationFailed("username", "GitHub username is required"))
		return
	}

	portfolio, err := h.portfolio.BuildPortfolio(r.Context(), username)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Portfolio generated successfully", portfolio)
}
