package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// geminiModel is the model the original product shipped with: fast, cheap,
// and good enough for summarizing READMEs.
const geminiModel = "gemini-1.5-flash"

// GeminiGenerator implements Generator on the Google Gemini API.
//
// One client is constructed at process start and shared across requests;
// the underlying HTTP client pools connections, so this is both the
// cheapest and the intended usage.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a Gemini-backed Generator with the given API
// key (GEMINI_API_KEY).
func NewGeminiGenerator(ctx context.Context, apiKey string) (*GeminiGenerator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("llm: creating gemini client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

// GenerateText sends a prompt and returns the model's text response.
func (g *GeminiGenerator) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, geminiModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("llm: gemini generate: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("llm: gemini returned no candidates")
	}
	return text, nil
}
