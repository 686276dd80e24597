package usecase

import (
	"context"
	"fmt"
	"strings"

	"productcopy-core/internal/domain/entity"
	"productcopy-core/internal/domain/repository"
)

// TextClient turns a prompt into plain text. It holds no per-call state and is
// safe for concurrent use.
type TextClient struct {
	generator repository.Generator
	model     string
}

func NewTextClient(g repository.Generator, model string) *TextClient {
	return &TextClient{generator: g, model: model}
}

// GenerateText makes exactly one call to the generation capability. Failures are
// wrapped as entity.ErrGenerationFailed and never retried.
func (t *TextClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	raw, err := t.generator.Generate(ctx, t.model, prompt)
	if err != nil {
		return "", fmt.Errorf("%w: %v", entity.ErrGenerationFailed, err)
	}
	return StripMarkdown(strings.TrimSpace(raw)), nil
}
