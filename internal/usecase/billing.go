package usecase

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"productcopy-core/internal/domain/entity"
	"productcopy-core/internal/domain/repository"
)

// Notification templates understood by the notifier.
const (
	TemplateWelcome          = "welcome"
	TemplatePaymentConfirmed = "payment_confirmed"
)

const notifyTimeout = 30 * time.Second

// Billing records payments and checkouts and sends the matching emails.
type Billing struct {
	service  string
	ledger   repository.LedgerWriter
	notifier repository.Notifier
	logger   *zap.Logger

	pending sync.WaitGroup
}

func NewBilling(service string, ledger repository.LedgerWriter, notifier repository.Notifier, logger *zap.Logger) *Billing {
	return &Billing{service: service, ledger: ledger, notifier: notifier, logger: logger}
}

// ConfirmPayment validates the tier before touching the ledger. The write itself
// is best-effort: a failure is logged and the confirmation still succeeds.
func (b *Billing) ConfirmPayment(ctx context.Context, email, name, rawTier string) (entity.Tier, error) {
	b.logger.Info("payment webhook", zap.String("email", email), zap.String("tier", rawTier))

	tier, err := entity.ParseTier(rawTier)
	if err != nil {
		return "", err
	}

	if err := b.ledger.RecordPayment(ctx, email, tier, tier.AmountCents()); err != nil {
		b.logger.Error("record payment failed", zap.String("email", email), zap.Error(err))
	}

	b.notify(email, TemplatePaymentConfirmed, map[string]string{
		"name": name,
		"tier": string(tier),
	})
	return tier, nil
}

func (b *Billing) RegisterCheckout(ctx context.Context, c entity.Checkout) {
	if err := b.ledger.RecordCheckout(ctx, b.service, c); err != nil {
		b.logger.Error("record checkout failed", zap.String("email", c.Email), zap.Error(err))
	}
	b.notify(c.Email, TemplateWelcome, map[string]string{"name": c.Name})
}

// notify is fire-and-forget; failures never reach the caller.
func (b *Billing) notify(to, template string, data map[string]string) {
	if b.notifier == nil {
		return
	}
	b.pending.Add(1)
	go func() {
		defer b.pending.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := b.notifier.Notify(ctx, to, template, data); err != nil {
			b.logger.Error("email failed",
				zap.String("to", to),
				zap.String("template", template),
				zap.Error(err),
			)
		}
	}()
}

// Wait blocks until queued emails have been attempted.
func (b *Billing) Wait() { b.pending.Wait() }
