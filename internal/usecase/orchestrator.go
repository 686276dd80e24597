package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"productcopy-core/internal/domain/entity"
	"productcopy-core/internal/domain/repository"
)

const archiveTimeout = 30 * time.Second

// Orchestrator runs one generation request end to end:
// pricing gate, refinement loop, SEO derivation, ledger writes.
type Orchestrator struct {
	service  string
	ledger   repository.Ledger
	gate     *PricingGate
	refiner  *Refiner
	text     *TextClient
	archive  repository.Archive
	embedder repository.Embedder
	logger   *zap.Logger
	now      func() time.Time

	background sync.WaitGroup
}

type OrchestratorDeps struct {
	Service  string
	Ledger   repository.Ledger
	Refiner  *Refiner
	Text     *TextClient
	Archive  repository.Archive  // optional
	Embedder repository.Embedder // optional, required with Archive
	Logger   *zap.Logger
}

func NewOrchestrator(d OrchestratorDeps) *Orchestrator {
	return &Orchestrator{
		service:  d.Service,
		ledger:   d.Ledger,
		gate:     NewPricingGate(d.Ledger, d.Logger),
		refiner:  d.Refiner,
		text:     d.Text,
		archive:  d.Archive,
		embedder: d.Embedder,
		logger:   d.Logger,
		now:      time.Now,
	}
}

// Execute returns either a result or a pricing decision that blocks the run.
// Errors are generation failures only; ledger writes are best-effort.
func (u *Orchestrator) Execute(ctx context.Context, req entity.GenerationRequest) (*entity.GenerationResult, entity.PricingDecision, error) {
	u.logger.Info("generate request",
		zap.String("email", req.Email),
		zap.String("input", truncate(req.InputSummary(), 80)),
	)

	// 1. Pricing gate
	decision := u.gate.Check(ctx, req.Email)
	if decision.RequiresPayment {
		return nil, decision, nil
	}

	start := u.now()

	// 2. Refinement loop
	outcome, err := u.refiner.Refine(ctx, req)
	if err != nil {
		u.logger.Error("refinement failed", zap.String("email", req.Email), zap.Error(err))
		return nil, decision, err
	}

	// 3. Derived content
	derived, err := DeriveSEO(ctx, u.text, req, outcome.Draft)
	if err != nil {
		u.logger.Error("seo derivation failed", zap.String("email", req.Email), zap.Error(err))
		return nil, decision, err
	}

	result := &entity.GenerationResult{
		Description:    string(outcome.Draft),
		SEOTitle:       derived.SEOTitle,
		SEODescription: derived.SEODescription,
		Score:          outcome.Assessment.Score,
		Rounds:         outcome.Rounds,
		Name:           req.Name,
		Duration:       u.now().Sub(start),
	}

	// 4. Ledger writes
	u.persist(ctx, req, result)

	// 5. Background: archive for similarity lookups
	u.archiveAsync(req, result)

	return result, decision, nil
}

func (u *Orchestrator) persist(ctx context.Context, req entity.GenerationRequest, res *entity.GenerationResult) {
	payload, err := encodeResult(res)
	if err != nil {
		u.logger.Error("encode generation result", zap.Error(err))
	}
	rec := entity.GenerationRecord{
		ID:         uuid.NewString(),
		Service:    u.service,
		Email:      req.Email,
		Name:       req.Name,
		Input:      req.InputSummary(),
		Result:     payload,
		Score:      res.Score,
		Rounds:     res.Rounds,
		DurationMs: res.Duration.Milliseconds(),
	}
	if err := u.ledger.RecordGeneration(ctx, rec); err != nil {
		u.logger.Error("record generation failed", zap.String("email", req.Email), zap.Error(err))
	}
	if err := u.ledger.IncrementUsage(ctx, req.Email); err != nil {
		u.logger.Error("increment usage failed", zap.String("email", req.Email), zap.Error(err))
	}
}

func (u *Orchestrator) archiveAsync(req entity.GenerationRequest, res *entity.GenerationResult) {
	if u.archive == nil || u.embedder == nil {
		return
	}
	item := entity.ArchivedDescription{
		ProductName: req.ProductName,
		Description: res.Description,
		SEOTitle:    res.SEOTitle,
		Score:       res.Score,
		CreatedAt:   u.now(),
	}
	u.background.Add(1)
	go func() {
		defer u.background.Done()
		// The request context may already be gone.
		ctx, cancel := context.WithTimeout(context.Background(), archiveTimeout)
		defer cancel()

		vector, err := u.embedder.CreateEmbedding(ctx, item.ProductName+"\n"+item.Description)
		if err != nil {
			u.logger.Warn("archive embedding failed", zap.Error(err))
			return
		}
		if err := u.archive.Save(ctx, item, vector); err != nil {
			u.logger.Warn("archive save failed", zap.Error(err))
		}
	}()
}

// Wait blocks until background archive writes have finished.
func (u *Orchestrator) Wait() { u.background.Wait() }

// TotalGenerations counts persisted runs for this service; a broken ledger reads as zero.
func (u *Orchestrator) TotalGenerations(ctx context.Context) int {
	o := u.ledger.TotalGenerations(ctx, u.service)
	if o.Kind != entity.OutcomeOk {
		u.logger.Warn("total generations degraded", zap.Error(o.Err))
	}
	return o.Value
}

func encodeResult(res *entity.GenerationResult) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	err := enc.Encode(map[string]string{
		"description":     res.Description,
		"seo_title":       res.SEOTitle,
		"seo_description": res.SEODescription,
	})
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	return string(bytes.TrimSpace(buf.Bytes())), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
