package entity

import "fmt"

type Tier string

const (
	TierPerUse    Tier = "per_use"
	TierUnlimited Tier = "unlimited"
)

// ParseTier accepts only the two known tiers.
func ParseTier(s string) (Tier, error) {
	switch Tier(s) {
	case TierPerUse, TierUnlimited:
		return Tier(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidTier, s)
}

// Price is the list price in euros shown to the caller.
func (t Tier) Price() float64 {
	if t == TierUnlimited {
		return 4.99
	}
	return 0.99
}

// AmountCents is the amount recorded on the payment row.
func (t Tier) AmountCents() int {
	if t == TierUnlimited {
		return 499
	}
	return 99
}

// PricingDecision is computed fresh per request and never stored.
// A zero value means proceed.
type PricingDecision struct {
	RequiresPayment bool    `json:"requires_payment"`
	Tier            Tier    `json:"tier,omitempty"`
	Price           float64 `json:"price,omitempty"`
	UsageCount      int     `json:"request_count"`
}

func Proceed() PricingDecision { return PricingDecision{} }

func RequirePayment(tier Tier, usage int) PricingDecision {
	return PricingDecision{RequiresPayment: true, Tier: tier, Price: tier.Price(), UsageCount: usage}
}

// Checkout is a sign-up registration ahead of payment.
type Checkout struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}
