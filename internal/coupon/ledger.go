package coupon

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Ledger exposes coupon validation and redemption to the checkout flow.
type Ledger struct {
	store Store
	now   func() time.Time
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store, now: time.Now}
}

// Validate checks applicability without consuming a use.
func (l *Ledger) Validate(ctx context.Context, code string) (*Coupon, error) {
	c, err := l.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(l.now()); err != nil {
		return nil, err
	}
	return c, nil
}

// Redeem consumes one use atomically. On failure nothing is applied.
func (l *Ledger) Redeem(ctx context.Context, code string) error {
	if err := l.store.Redeem(ctx, code, l.now()); err != nil {
		return err
	}
	log.Info().Str("code", code).Msg("ledger: coupon redeemed")
	return nil
}

// Release возвращает одно использование - компенсирующее действие саги.
func (l *Ledger) Release(ctx context.Context, code string) error {
	if err := l.store.Release(ctx, code); err != nil {
		return fmt.Errorf("ledger: failed to release coupon %q: %w", code, err)
	}
	log.Info().Str("code", code).Msg("ledger: coupon released")
	return nil
}
