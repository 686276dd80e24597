package repository

import (
	"context"
	"time"

	"productcopy-core/internal/domain/entity"
)

// Generator is the external text-generation capability.
type Generator interface {
	Generate(ctx context.Context, model, prompt string) (string, error)
}

// LedgerReader is everything the pricing gate and stats endpoint read.
// Reads never fail outright: a broken store yields a degraded default.
type LedgerReader interface {
	UsageCount(ctx context.Context, email string) entity.Outcome[int]
	HasUnlimitedPayment(ctx context.Context, email string) entity.Outcome[bool]
	CountPerUsePayments(ctx context.Context, email string) entity.Outcome[int]
	TotalGenerations(ctx context.Context, service string) entity.Outcome[int]
}

type LedgerWriter interface {
	IncrementUsage(ctx context.Context, email string) error
	RecordPayment(ctx context.Context, email string, tier entity.Tier, amountCents int) error
	RecordGeneration(ctx context.Context, rec entity.GenerationRecord) error
	RecordCheckout(ctx context.Context, service string, c entity.Checkout) error
}

type Ledger interface {
	LedgerReader
	LedgerWriter
}

// RateLimiter is a per-key sliding window.
type RateLimiter interface {
	Allow(ctx context.Context, key string, now time.Time) (bool, error)
}

// Notifier sends a templated transactional message to one recipient.
type Notifier interface {
	Notify(ctx context.Context, to string, template string, data map[string]string) error
}

type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// Archive keeps accepted descriptions for similarity lookups.
type Archive interface {
	Save(ctx context.Context, item entity.ArchivedDescription, vector []float32) error
	Search(ctx context.Context, vector []float32, limit uint64) ([]entity.ArchivedDescription, error)
}
