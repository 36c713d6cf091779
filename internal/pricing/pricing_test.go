package pricing_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommerce-platform/checkout-service/internal/pricing"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestCalculate(t *testing.T) {
	tests := []struct {
		name         string
		items        []pricing.Item
		coupon       *pricing.Coupon
		wantSubtotal string
		wantTax      string
		wantShipping string
		wantDiscount string
		wantTotal    string
	}{
		{
			name:         "flat_coupon_free_shipping",
			items:        []pricing.Item{{UnitPrice: d("50"), Quantity: 3}},
			coupon:       &pricing.Coupon{Type: pricing.CouponFlat, Amount: d("10")},
			wantSubtotal: "150",
			wantTax:      "7.5",
			wantShipping: "0",
			wantDiscount: "10",
			wantTotal:    "147.5",
		},
		{
			name:         "below_threshold_pays_shipping",
			items:        []pricing.Item{{UnitPrice: d("20"), Quantity: 2}},
			wantSubtotal: "40",
			wantTax:      "2",
			wantShipping: "10",
			wantDiscount: "0",
			wantTotal:    "52",
		},
		{
			name:         "exactly_threshold_pays_shipping",
			items:        []pricing.Item{{UnitPrice: d("100"), Quantity: 1}},
			wantSubtotal: "100",
			wantTax:      "5",
			wantShipping: "10",
			wantDiscount: "0",
			wantTotal:    "115",
		},
		{
			name:         "percentage_coupon_applies_to_grand_total",
			items:        []pricing.Item{{UnitPrice: d("100"), Quantity: 2}},
			coupon:       &pricing.Coupon{Type: pricing.CouponPercentage, Amount: d("10")},
			wantSubtotal: "200",
			wantTax:      "10",
			wantShipping: "0",
			wantDiscount: "21",
			wantTotal:    "189",
		},
		{
			name:         "oversized_flat_coupon_clamps_to_zero",
			items:        []pricing.Item{{UnitPrice: d("10"), Quantity: 1}},
			coupon:       &pricing.Coupon{Type: pricing.CouponFlat, Amount: d("500")},
			wantSubtotal: "10",
			wantTax:      "0.5",
			wantShipping: "10",
			wantDiscount: "500",
			wantTotal:    "0",
		},
		{
			name:         "tax_rounded_to_cents",
			items:        []pricing.Item{{UnitPrice: d("33.33"), Quantity: 1}},
			wantSubtotal: "33.33",
			wantTax:      "1.67",
			wantShipping: "10",
			wantDiscount: "0",
			wantTotal:    "45",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := pricing.Calculate(tt.items, tt.coupon)
			require.NoError(t, err)

			assert.True(t, q.Subtotal.Equal(d(tt.wantSubtotal)), "subtotal: got %s", q.Subtotal)
			assert.True(t, q.Tax.Equal(d(tt.wantTax)), "tax: got %s", q.Tax)
			assert.True(t, q.ShippingFee.Equal(d(tt.wantShipping)), "shipping: got %s", q.ShippingFee)
			assert.True(t, q.Discount.Equal(d(tt.wantDiscount)), "discount: got %s", q.Discount)
			assert.True(t, q.Total.Equal(d(tt.wantTotal)), "total: got %s", q.Total)

			// totalAmount = subtotal + tax + shipping - discount (с нижней границей 0)
			recomputed := q.Subtotal.Add(q.Tax).Add(q.ShippingFee).Sub(q.Discount)
			if recomputed.IsNegative() {
				recomputed = decimal.Zero
			}
			assert.True(t, q.Total.Equal(recomputed.Round(2)))
			assert.False(t, q.Total.IsNegative())
		})
	}
}

func TestCalculate_EmptyCart(t *testing.T) {
	_, err := pricing.Calculate(nil, &pricing.Coupon{Type: pricing.CouponFlat, Amount: d("10")})
	assert.ErrorIs(t, err, pricing.ErrEmptyCart)

	_, err = pricing.Calculate([]pricing.Item{}, nil)
	assert.ErrorIs(t, err, pricing.ErrEmptyCart)
}
