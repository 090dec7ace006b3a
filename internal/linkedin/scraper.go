// Package linkedin scrapes LinkedIn public-profile pages into the
// portfolio schema.
//
// This is a best-effort scraper, not a resilient integration: one GET with
// a realistic browser header set, a fixed timeout, and no retry or proxy
// strategy. LinkedIn's anti-bot layer (HTTP 999) will reject a lot of
// traffic regardless; those rejections are classified so the caller can
// tell "blocked" apart from "profile doesn't exist" and "slow upstream".
//
// Parsing is two-phase — embedded JSON-LD first (jsonld.go), then a CSS
// selector cascade for whatever is still missing (fallback.go) — followed
// by a single cleaning pass.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"regexp"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/sakif/thinktank/internal/apperror"
)

const (
	requestTimeout = 15 * time.Second
	maxRedirects   = 5
)

// profileURLRe matches public-profile URLs: linkedin.com/in/<vanity>, with
// optional scheme www, trailing slash, and query string.
var profileURLRe = regexp.MustCompile(`^https?://(www\.)?linkedin\.com/in/[a-zA-Z0-9\-]+/?(\?.*)?$`)

// vanityRe extracts the vanity name, which becomes the profile's ID.
var vanityRe = regexp.MustCompile(`/in/([a-zA-Z0-9\-]+)/?$`)

// browserHeaders is the header set sent with every request. Without them
// LinkedIn serves the request an immediate block page.
var browserHeaders = map[string]string{
	"User-Agent":                "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/128.0.0.0 Safari/537.36",
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.5",
	"Connection":                "keep-alive",
	"Sec-Fetch-Dest":            "document",
	"Sec-Fetch-Mode":            "navigate",
	"Sec-Fetch-Site":            "none",
	"Sec-Fetch-User":            "?1",
	"Upgrade-Insecure-Requests": "1",
	"Cache-Control":             "no-cache",
	"Pragma":                    "no-cache",
}

// Scraper fetches and parses LinkedIn public profiles.
type Scraper struct {
	http   *http.Client
	logger *slog.Logger
}

// NewScraper creates a Scraper with the standard timeout and redirect cap.
func NewScraper(logger *slog.Logger) *Scraper {
	return &Scraper{
		http: &http.Client{
			Timeout: requestTimeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= maxRedirects {
					return fmt.Errorf("stopped after %d redirects", maxRedirects)
				}
				return nil
			},
		},
		logger: logger,
	}
}

// IsValidProfileURL reports whether url looks like a LinkedIn
// public-profile URL. Checked before any network I/O.
func IsValidProfileURL(url string) bool {
	return profileURLRe.MatchString(url)
}

// ExtractVanityName returns the vanity segment of a profile URL, or "".
func ExtractVanityName(url string) string {
	if m := vanityRe.FindStringSubmatch(url); m != nil {
		return m[1]
	}
	return ""
}

// Scrape fetches and parses the profile at url.
//
// Error classification, each distinguishable via errors.Is:
//   - malformed URL         → apperror.ErrInvalidInput (no request is made)
//   - HTTP 403 or 999       → apperror.ErrBlocked (anti-bot)
//   - HTTP 404              → apperror.ErrNotFound
//   - client timeout        → apperror.ErrTimeout
func (s *Scraper) Scrape(ctx context.Context, url string) (*Profile, error) {
	if !IsValidProfileURL(url) {
		return nil, apperror.InvalidInput("url",
			"Invalid LinkedIn profile URL format, expected https://www.linkedin.com/in/username")
	}

	s.logger.Info("linkedin: scraping profile", slog.String("url", url))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("linkedin: building request: %w", err)
	}
	for k, v := range browserHeaders {
		req.Header.Set(k, v)
	}

	resp, err := s.http.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, apperror.Timeout("LinkedIn request timed out, servers may be slow")
		}
		return nil, fmt.Errorf("linkedin: fetching profile: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// fall through to parsing
	case http.StatusForbidden, 999: // 999 is LinkedIn's own anti-bot status
		return nil, apperror.Blocked("Blocked by LinkedIn anti-bot protection")
	case http.StatusNotFound:
		return nil, apperror.NotFound("LinkedIn profile", url)
	default:
		return nil, fmt.Errorf("linkedin: unexpected status %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("linkedin: parsing HTML: %w", err)
	}

	return s.parse(doc, url), nil
}

// parse runs both extraction phases and the cleaning pass over a fetched
// document.
func (s *Scraper) parse(doc *goquery.Document, url string) *Profile {
	profile := newProfile()

	if vanity := ExtractVanityName(url); vanity != "" {
		profile.ID = vanity
	}

	parseJSONLD(doc, profile)
	applyHTMLFallbacks(doc, profile)
	profile.clean()

	s.logger.Debug("linkedin: scrape complete",
		slog.String("id", profile.ID),
		slog.Int("positions", len(profile.Positions)),
		slog.Int("skills", len(profile.Skills)),
	)
	return profile
}

// isTimeout reports whether err is a client-side timeout.
func isTimeout(err error) bool {
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
