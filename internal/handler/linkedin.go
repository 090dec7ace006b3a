package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sakif/thinktank/internal/apperror"
	"github.com/sakif/thinktank/internal/linkedin"
)

// ProfileScraper is the slice of the LinkedIn scraper the handler needs.
// Satisfied by *linkedin.Scraper; tests substitute a fake.
type ProfileScraper interface {
	Scrape(ctx context.Context, profileURL string) (*linkedin.Profile, error)
}

// LinkedInHandler exposes the LinkedIn profile scraping endpoint.
type LinkedInHandler struct {
	scraper ProfileScraper
	logger  *slog.Logger
}

// NewLinkedInHandler creates a LinkedInHandler backed by the given scraper.
func NewLinkedInHandler(scraper ProfileScraper, logger *slog.Logger) *LinkedInHandler {
	return &LinkedInHandler{scraper: scraper, logger: logger}
}

type scrapeRequest struct {
	URL string `json:"url"`
}

// Scrape handles POST /api/linkedin-scraper/profile.
//
// The URL is validated before any network traffic, so a bad request is
// cheap. Upstream refusals map onto the error envelope: 403/999 pages →
// 403, missing profiles → 404, slow responses → 504.
func (h *LinkedInHandler) Scrape(w http.ResponseWriter, r *http.Request) {
	var req scrapeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperror.ValidationFailed("body", "Invalid JSON in request body"))
		return
	}
	if req.URL == "" {
		writeError(w, apperror.ValidationFailed("url", "LinkedIn profile URL is required"))
		return
	}

	profile, err := h.scraper.Scrape(r.Context(), req.URL)
	if err != nil {
		writeError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, "Profile scraped successfully", profile)
}
