package usecase

import (
	"context"
	"fmt"
	"strings"

	"productcopy-core/internal/domain/entity"
	"productcopy-core/internal/domain/repository"
)

const (
	DefaultSimilarLimit = 3
	MaxSimilarLimit     = 10
)

// Showcase looks up earlier accepted descriptions close to a query.
type Showcase struct {
	archive  repository.Archive
	embedder repository.Embedder
}

// NewShowcase returns nil when either dependency is missing.
func NewShowcase(archive repository.Archive, embedder repository.Embedder) *Showcase {
	if archive == nil || embedder == nil {
		return nil
	}
	return &Showcase{archive: archive, embedder: embedder}
}

func (s *Showcase) Similar(ctx context.Context, query string, limit int) ([]entity.ArchivedDescription, error) {
	if s == nil {
		return nil, entity.ErrArchiveDisabled
	}
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: q is required", entity.ErrInvalidRequest)
	}
	if limit <= 0 {
		limit = DefaultSimilarLimit
	}
	limit = min(limit, MaxSimilarLimit)

	vector, err := s.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embedding generation failed: %w", err)
	}
	items, err := s.archive.Search(ctx, vector, uint64(limit))
	if err != nil {
		return nil, fmt.Errorf("archive search failed: %w", err)
	}
	return items, nil
}
