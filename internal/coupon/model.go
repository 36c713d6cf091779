package coupon

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/ecommerce-platform/checkout-service/internal/pricing"
)

var (
	ErrCouponInvalid   = errors.New("coupon not found or not applicable")
	ErrCouponExpired   = errors.New("coupon has expired")
	ErrCouponExhausted = errors.New("coupon usage limit reached")
)

type Coupon struct {
	ID        uuid.UUID          `json:"id" db:"id"`
	Code      string             `json:"code" db:"code"`
	Type      pricing.CouponType `json:"type" db:"discount_type"`
	Amount    decimal.Decimal    `json:"amount" db:"amount"`
	ExpiresAt time.Time          `json:"expires_at" db:"expires_at"`
	// UsageLimit == nil означает отсутствие глобального лимита.
	UsageLimit *int      `json:"usage_limit,omitempty" db:"usage_limit"`
	UsedCount  int       `json:"used_count" db:"used_count"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// Validate classifies the coupon against the clock without touching the
// usage counter. Order of checks: expiry before exhaustion.
func (c *Coupon) Validate(now time.Time) error {
	if c.ExpiresAt.Before(now) {
		return ErrCouponExpired
	}
	if c.UsageLimit != nil && c.UsedCount >= *c.UsageLimit {
		return ErrCouponExhausted
	}
	return nil
}
