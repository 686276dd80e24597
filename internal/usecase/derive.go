package usecase

import (
	"context"
	"fmt"

	"productcopy-core/internal/domain/entity"
)

// DeriveSEO produces the title and then the meta description, which is
// conditioned on the title. Neither is quality-gated nor truncated.
func DeriveSEO(ctx context.Context, text *TextClient, req entity.GenerationRequest, draft entity.Draft) (entity.DerivedContent, error) {
	title, err := text.GenerateText(ctx, buildTitlePrompt(req, draft))
	if err != nil {
		return entity.DerivedContent{}, fmt.Errorf("seo title: %w", err)
	}
	meta, err := text.GenerateText(ctx, buildMetaPrompt(req, draft, title))
	if err != nil {
		return entity.DerivedContent{}, fmt.Errorf("seo description: %w", err)
	}
	return entity.DerivedContent{SEOTitle: title, SEODescription: meta}, nil
}
