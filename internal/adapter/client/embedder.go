package client

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var errNoEmbedding = errors.New("no embeddings returned")

// GeminiEmbedder turns text into vectors sized for the archive collection.
type GeminiEmbedder struct {
	client     *genai.Client
	model      string // e.g. "text-embedding-004"
	dimensions int32
}

// NewGeminiEmbedder shares the generation client. dimensions of 0 keeps the
// model's native size.
func NewGeminiEmbedder(c *genai.Client, model string, dimensions uint64) *GeminiEmbedder {
	return &GeminiEmbedder{client: c, model: model, dimensions: int32(dimensions)}
}

func (e *GeminiEmbedder) CreateEmbedding(ctx context.Context, text string) ([]float32, error) {
	var cfg *genai.EmbedContentConfig
	if e.dimensions > 0 {
		cfg = &genai.EmbedContentConfig{OutputDimensionality: &e.dimensions}
	}
	res, err := e.client.Models.EmbedContent(ctx, e.model, genai.Text(text), cfg)
	if err != nil {
		return nil, fmt.Errorf("embed content: %w", err)
	}
	if len(res.Embeddings) == 0 || len(res.Embeddings[0].Values) == 0 {
		return nil, errNoEmbedding
	}
	return res.Embeddings[0].Values, nil
}
