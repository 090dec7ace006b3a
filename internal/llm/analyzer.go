// Package llm normalizes free-form README and profile text into structured
// portfolio data using a generative model, with deterministic fallbacks at
// every step.
//
// DEGRADE, DON'T FAIL:
// Nothing in this package returns an error to the aggregator. The failure
// ladder for README analysis is:
//
//	model returns valid JSON        → parsed, validated, capped
//	model returns mangled JSON      → regex/keyword extraction from the
//	                                  response text
//	model call fails                → zero-value Analysis
//	no model configured             → heuristic extraction straight from
//	                                  the README (readme.go)
//
// An enrichment request must never 500 because the LLM had a bad day.
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// Input larger than this is truncated before being sent to the model.
// README files can be enormous; the useful signal is at the top.
const maxPromptContent = 8000

// Caps on the structured output, matching what the portfolio UI displays.
const (
	maxFeatures = 10
	maxTech     = 20
)

// Analysis is the normalized result of analyzing one README.
type Analysis struct {
	Summary  string   `json:"summary"`
	Features []string `json:"features"`
	Tech     []string `json:"tech"`
}

// Generator produces text from a prompt. The production implementation
// wraps the Gemini API (gemini.go); tests substitute a canned fake.
type Generator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Analyzer turns READMEs and profile data into portfolio content.
// A nil Generator is valid and switches the analyzer to pure heuristics.
type Analyzer struct {
	gen    Generator
	logger *slog.Logger
}

// NewAnalyzer creates an Analyzer. gen may be nil when no API key is
// configured; the analyzer then runs on heuristics alone.
func NewAnalyzer(gen Generator, logger *slog.Logger) *Analyzer {
	return &Analyzer{gen: gen, logger: logger}
}

const analyzePromptTemplate = `
Analyze this README content for a GitHub repository%s and return ONLY a valid JSON object with the following structure:

{
  "summary": "A concise 2-3 sentence description of what this project does",
  "features": ["Key feature 1", "Key feature 2", "Key feature 3"],
  "tech": ["Technology 1", "Framework 2", "Tool 3"]
}

Guidelines:
- summary: Focus on the main purpose and functionality
- features: Extract 3-5 key features or capabilities (if available)
- tech: List technologies, frameworks, programming languages, and tools mentioned
- Return ONLY the JSON object, no additional text
- If information is not available, use empty arrays or empty strings

README Content:
%s
`

// AnalyzeReadme extracts a summary, feature list, and tech list from README
// content. repoName is an optional hint included in the prompt.
//
// Empty content short-circuits to a zero Analysis without any model call.
// This method never returns an error.
func (a *Analyzer) AnalyzeReadme(ctx context.Context, content, repoName string) Analysis {
	if strings.TrimSpace(content) == "" {
		return Analysis{Features: []string{}, Tech: []string{}}
	}

	if a.gen == nil {
		return heuristicAnalysis(content)
	}

	nameHint := ""
	if repoName != "" {
		nameHint = fmt.Sprintf(" named %q", repoName)
	}

	body := content
	if len(body) > maxPromptContent {
		body = body[:maxPromptContent] + " ...[truncated]"
	}

	raw, err := a.gen.GenerateText(ctx, fmt.Sprintf(analyzePromptTemplate, nameHint, body))
	if err != nil {
		a.logger.Warn("llm: readme analysis failed",
			slog.String("repo", repoName),
			slog.String("error", err.Error()),
		)
		return Analysis{Features: []string{}, Tech: []string{}}
	}

	return parseAnalysisResponse(raw)
}

// jsonBlockRe locates the first {...} block in a model response. (?s) lets
// the dot cross newlines; models love wrapping JSON in prose and fences.
var jsonBlockRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseAnalysisResponse parses the model's (hopefully) JSON response,
// falling back to text extraction if the JSON is mangled.
func parseAnalysisResponse(response string) Analysis {
	clean := stripFences(response)
	if block := jsonBlockRe.FindString(clean); block != "" {
		clean = block
	}

	// Unmarshal into loose types first: a model that returns e.g. a number
	// for summary or nulls in the arrays must not crash the parse.
	var parsed struct {
		Summary  any   `json:"summary"`
		Features []any `json:"features"`
		Tech     []any `json:"tech"`
	}
	if err := json.Unmarshal([]byte(clean), &parsed); err != nil {
		return extractFromText(response)
	}

	out := Analysis{Features: []string{}, Tech: []string{}}
	if s, ok := parsed.Summary.(string); ok {
		out.Summary = strings.TrimSpace(s)
	}
	out.Features = stringItems(parsed.Features, maxFeatures)
	out.Tech = stringItems(parsed.Tech, maxTech)
	return out
}

// stripFences removes markdown code-fence markers from model output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// stringItems filters a loose JSON array down to its non-empty strings,
// capped at limit.
func stringItems(items []any, limit int) []string {
	out := []string{}
	for _, item := range items {
		s, ok := item.(string)
		if !ok {
			continue
		}
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

var bulletRe = regexp.MustCompile(`[-*•]\s*([^\n]+)`)

// extractFromText is the last-ditch extractor for a response that wasn't
// JSON at all: first two sentences as summary, bullet lines as features,
// and a keyword scan for tech.
func extractFromText(response string) Analysis {
	out := Analysis{Features: []string{}, Tech: []string{}}

	sentences := splitSentences(response)
	if len(sentences) > 0 {
		n := 2
		if len(sentences) < n {
			n = len(sentences)
		}
		out.Summary = strings.Join(sentences[:n], ". ") + "."
	}

	for _, m := range bulletRe.FindAllStringSubmatch(response, 5) {
		if f := strings.TrimSpace(m[1]); f != "" {
			out.Features = append(out.Features, f)
		}
	}

	out.Tech = scanTechKeywords(response, 10)
	return out
}

var sentenceSplitRe = regexp.MustCompile(`[.!?]+`)

// splitSentences splits text on sentence punctuation, dropping fragments
// too short to carry meaning.
func splitSentences(text string) []string {
	var out []string
	for _, s := range sentenceSplitRe.Split(text, -1) {
		s = strings.TrimSpace(s)
		if len(s) > 10 {
			out = append(out, s)
		}
	}
	return out
}
