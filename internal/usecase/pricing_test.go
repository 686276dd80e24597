package usecase

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"productcopy-core/internal/domain/entity"
)

const email = "anna@example.com"

func TestPricingGate(t *testing.T) {
	tests := []struct {
		name      string
		usage     int
		perUse    int
		unlimited bool
		want      entity.PricingDecision
	}{
		{"first run is free", 0, 0, false, entity.Proceed()},
		{"second run unpaid", 1, 0, false, entity.RequirePayment(entity.TierPerUse, 1)},
		{"second run paid", 1, 1, false, entity.Proceed()},
		// One payment per paid run: the worked example where usage 2 with a single
		// per-use payment proceeds contradicts the paid >= usage rule and is not followed.
		{"third run one payment", 2, 1, false, entity.RequirePayment(entity.TierPerUse, 2)},
		{"third run two payments", 2, 2, false, entity.Proceed()},
		{"unlimited does not cover per-use runs", 2, 0, true, entity.RequirePayment(entity.TierPerUse, 2)},
		{"fourth run needs unlimited", 3, 2, false, entity.RequirePayment(entity.TierUnlimited, 3)},
		{"per-use payments do not count later", 5, 9, false, entity.RequirePayment(entity.TierUnlimited, 5)},
		{"unlimited paid", 5, 0, true, entity.Proceed()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newFakeLedger()
			l.usage[email] = tt.usage
			l.perUse[email] = tt.perUse
			l.unlimited[email] = tt.unlimited

			got := NewPricingGate(l, zap.NewNop()).Check(context.Background(), email)
			if got != tt.want {
				t.Errorf("Check() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPricingGateReadsOnlyWhatItNeeds(t *testing.T) {
	tests := []struct {
		name          string
		usage         int
		wantPerUse    int
		wantUnlimited int
	}{
		{"fresh email", 0, 0, 0},
		{"per-use band", 2, 1, 0},
		{"unlimited band", 5, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := newFakeLedger()
			l.usage[email] = tt.usage
			l.unlimited[email] = true

			NewPricingGate(l, zap.NewNop()).Check(context.Background(), email)
			if l.reads["per_use"] != tt.wantPerUse {
				t.Errorf("per_use reads = %d, want %d", l.reads["per_use"], tt.wantPerUse)
			}
			if l.reads["unlimited"] != tt.wantUnlimited {
				t.Errorf("unlimited reads = %d, want %d", l.reads["unlimited"], tt.wantUnlimited)
			}
		})
	}
}

func TestPricingGateDegradedReadsProceed(t *testing.T) {
	l := newFakeLedger()
	l.usage[email] = 7
	l.readErr = errors.New("connection refused")

	got := NewPricingGate(l, zap.NewNop()).Check(context.Background(), email)
	if got.RequiresPayment {
		t.Errorf("degraded ledger should read as a fresh email, got %+v", got)
	}
}

func TestPricingGateIsPerEmail(t *testing.T) {
	l := newFakeLedger()
	l.usage["bob@example.com"] = 4

	got := NewPricingGate(l, zap.NewNop()).Check(context.Background(), email)
	if got.RequiresPayment {
		t.Errorf("usage of another email leaked: %+v", got)
	}
}
