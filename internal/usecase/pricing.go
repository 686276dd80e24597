package usecase

import (
	"context"

	"go.uber.org/zap"

	"productcopy-core/internal/domain/entity"
	"productcopy-core/internal/domain/repository"
)

const perUseUsageLimit = 2

// PricingGate decides whether a run may start. The first run is free, runs two
// and three need one per-use payment each, after that an unlimited purchase.
// Usage is only counted after a successful run, and nothing here is
// transactional: two concurrent requests can both pass on the same count.
type PricingGate struct {
	ledger repository.LedgerReader
	logger *zap.Logger
}

func NewPricingGate(ledger repository.LedgerReader, logger *zap.Logger) *PricingGate {
	return &PricingGate{ledger: ledger, logger: logger}
}

func (g *PricingGate) Check(ctx context.Context, email string) entity.PricingDecision {
	usage := g.readInt("usage_count", email, g.ledger.UsageCount(ctx, email))
	if usage == 0 {
		return entity.Proceed()
	}

	if usage <= perUseUsageLimit {
		paid := g.readInt("per_use_payments", email, g.ledger.CountPerUsePayments(ctx, email))
		if paid >= usage {
			return entity.Proceed()
		}
		return entity.RequirePayment(entity.TierPerUse, usage)
	}

	unlimited := g.ledger.HasUnlimitedPayment(ctx, email)
	g.logDegraded("has_unlimited", email, unlimited.Kind, unlimited.Err)
	if unlimited.Value {
		return entity.Proceed()
	}
	return entity.RequirePayment(entity.TierUnlimited, usage)
}

func (g *PricingGate) readInt(what, email string, o entity.Outcome[int]) int {
	g.logDegraded(what, email, o.Kind, o.Err)
	return o.Value
}

func (g *PricingGate) logDegraded(what, email string, kind entity.OutcomeKind, err error) {
	if kind == entity.OutcomeOk {
		return
	}
	g.logger.Warn("ledger read degraded, using default",
		zap.String("read", what),
		zap.String("email", email),
		zap.Stringer("outcome", kind),
		zap.Error(err),
	)
}
