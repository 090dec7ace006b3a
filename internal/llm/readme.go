package llm

import (
	"regexp"
	"strings"
)

// This file is the non-LLM path: heuristic extraction straight from README
// markdown, used when no Generator is configured. The heuristics are crude
// but deterministic — markdown stripping plus section/keyword scanning.

// techKeywords is the fixed vocabulary scanned for tech-stack detection,
// matched case-insensitively on word boundaries.
var techKeywords = []string{
	// Frontend
	"react", "vue", "angular", "svelte", "next.js", "nextjs", "nuxt", "gatsby",
	"html", "css", "javascript", "typescript", "sass", "scss",
	"tailwind", "bootstrap", "material-ui", "styled-components",
	// Backend
	"node.js", "nodejs", "express", "fastify", "nest.js", "nestjs",
	"python", "django", "flask", "fastapi", "ruby", "rails", "php", "laravel",
	"java", "spring", "c#", "c++", "asp.net", "go", "gin", "rust", "actix",
	// Databases
	"mongodb", "mysql", "postgresql", "sqlite", "redis", "firebase", "supabase",
	"prisma", "mongoose", "sequelize",
	// Cloud & DevOps
	"aws", "azure", "gcp", "docker", "kubernetes", "heroku", "vercel", "netlify",
	"github actions", "terraform", "ansible",
	// Tools & misc
	"git", "webpack", "vite", "babel", "eslint",
	"jest", "cypress", "playwright", "storybook",
	"graphql", "rest api", "websocket", "socket.io", "jwt", "oauth",
	"stripe", "twilio", "sendgrid",
}

// heuristicAnalysis builds an Analysis from README content without any
// model call.
func heuristicAnalysis(content string) Analysis {
	return Analysis{
		Summary:  extractSummary(content),
		Features: extractFeatures(content),
		Tech:     scanTechKeywords(content, maxTech),
	}
}

var (
	codeBlockRe   = regexp.MustCompile("(?s)```.*?```")
	inlineCodeRe  = regexp.MustCompile("`[^`]*`")
	imageRe       = regexp.MustCompile(`!\[.*?\]\(.*?\)`)
	linkRe        = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	headerRe      = regexp.MustCompile(`(?m)^#{1,6}\s*`)
	boldRe        = regexp.MustCompile(`\*\*([^*]*)\*\*`)
	italicRe      = regexp.MustCompile(`\*([^*]*)\*`)
	bulletLineRe  = regexp.MustCompile(`(?m)^\s*[-*+]\s+`)
	numberedRe    = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)
	bulletItemRe  = regexp.MustCompile(`^\s*[-*+]\s+(.+)`)
	numberItemRe  = regexp.MustCompile(`^\s*\d+\.\s+(.+)`)
	anyHeaderRe   = regexp.MustCompile(`^#{1,6}\s+`)
	featureHeadRe = regexp.MustCompile(`(?i)^(##?\s*)?(features?|functionality|capabilities|what\s+it\s+does|key\s+features)`)
)

// extractSummary strips markdown formatting and returns the first 3-4
// substantive sentences.
func extractSummary(readme string) string {
	if readme == "" {
		return ""
	}

	clean := codeBlockRe.ReplaceAllString(readme, "")
	clean = inlineCodeRe.ReplaceAllString(clean, "")
	clean = imageRe.ReplaceAllString(clean, "")
	clean = linkRe.ReplaceAllString(clean, "$1")
	clean = headerRe.ReplaceAllString(clean, "")
	clean = boldRe.ReplaceAllString(clean, "$1")
	clean = italicRe.ReplaceAllString(clean, "$1")
	clean = bulletLineRe.ReplaceAllString(clean, "")
	clean = numberedRe.ReplaceAllString(clean, "")

	sentences := splitSentences(clean)
	if len(sentences) == 0 {
		return ""
	}
	if len(sentences) > 4 {
		sentences = sentences[:4]
	}
	return strings.Join(sentences, ". ") + "."
}

// extractFeatures pulls bullet items from a "Features"-like section, or
// falls back to the bullets near the top of the README when no such
// section exists. Capped at maxFeatures.
func extractFeatures(readme string) []string {
	features := []string{}
	if readme == "" {
		return features
	}

	lines := strings.Split(readme, "\n")
	inSection := false

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if featureHeadRe.MatchString(line) {
			inSection = true
			continue
		}
		if inSection && anyHeaderRe.MatchString(line) {
			break // next section starts
		}
		if !inSection {
			continue
		}
		if m := bulletItemRe.FindStringSubmatch(line); m != nil {
			features = append(features, cleanFeature(m[1]))
		} else if m := numberItemRe.FindStringSubmatch(line); m != nil {
			features = append(features, cleanFeature(m[1]))
		}
	}

	// No dedicated section: take substantial bullets from the first 50
	// lines instead.
	if len(features) == 0 {
		limit := len(lines)
		if limit > 50 {
			limit = 50
		}
		for _, line := range lines[:limit] {
			if m := bulletItemRe.FindStringSubmatch(line); m != nil && len(m[1]) > 10 {
				features = append(features, cleanFeature(m[1]))
			}
		}
	}

	if len(features) > maxFeatures {
		features = features[:maxFeatures]
	}
	return features
}

func cleanFeature(s string) string {
	return strings.TrimSpace(boldRe.ReplaceAllString(s, "$1"))
}

// scanTechKeywords scans text for the fixed keyword vocabulary and returns
// the matches in display form ("node.js" → "NodeJs"), capped at limit.
func scanTechKeywords(text string, limit int) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}
	out := []string{}

	for _, kw := range techKeywords {
		re := regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(kw) + wordEnd(kw))
		if !re.MatchString(lower) {
			continue
		}
		name := displayName(kw)
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
		if len(out) == limit {
			break
		}
	}
	return out
}

// wordEnd closes a keyword pattern on a word boundary. Keywords ending in
// a symbol ("c#", "c++") get none: \b after a symbol demands a following
// word character, so "written in C#" would never match.
func wordEnd(kw string) string {
	switch kw[len(kw)-1] {
	case '#', '+':
		return ""
	}
	return `\b`
}

// displayName title-cases a keyword, joining its separator-split words:
// "node.js" → "NodeJs", "github actions" → "GithubActions".
func displayName(kw string) string {
	parts := regexp.MustCompile(`[-.\s]+`).Split(kw, -1)
	var b strings.Builder
	for _, p := range parts {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
