package client

import (
	"context"
	"errors"

	"google.golang.org/genai"
)

type GeminiConfig struct {
	APIKey   string // Gemini API backend
	Project  string // Vertex AI backend when set
	Location string
}

// NewGenAIClient picks Vertex AI when a project is configured and the Gemini
// API otherwise.
func NewGenAIClient(ctx context.Context, cfg GeminiConfig) (*genai.Client, error) {
	cc := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.Project != "" {
		cc = &genai.ClientConfig{
			Project:  cfg.Project,
			Location: cfg.Location,
			Backend:  genai.BackendVertexAI,
		}
	}
	return genai.NewClient(ctx, cc)
}

// GeminiGenerator is the generation capability backed by genai.
type GeminiGenerator struct {
	client *genai.Client
}

func NewGeminiGenerator(c *genai.Client) *GeminiGenerator {
	return &GeminiGenerator{client: c}
}

var errEmptyResponse = errors.New("gemini returned no text")

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := result.Text()
	if text == "" {
		return "", errEmptyResponse
	}
	return text, nil
}
