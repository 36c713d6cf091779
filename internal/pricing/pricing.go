// Package pricing computes the monetary breakdown of a cart. It is pure:
// no I/O, no clock, every input is passed in.
package pricing

import (
	"errors"

	"github.com/shopspring/decimal"
)

var ErrEmptyCart = errors.New("cart is empty")

var (
	// TaxRate - единая ставка налога на весь заказ.
	TaxRate = decimal.NewFromFloat(0.05)
	// FreeShippingThreshold: при subtotal выше порога доставка бесплатна.
	FreeShippingThreshold = decimal.NewFromInt(100)
	ShippingFee           = decimal.NewFromInt(10)
)

type CouponType string

const (
	CouponPercentage CouponType = "percentage"
	CouponFlat       CouponType = "flat"
)

type Item struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

type Coupon struct {
	Type   CouponType
	Amount decimal.Decimal
}

// Quote is the priced breakdown of a cart. Total is never negative.
type Quote struct {
	Subtotal    decimal.Decimal
	Tax         decimal.Decimal
	ShippingFee decimal.Decimal
	Discount    decimal.Decimal
	Total       decimal.Decimal
}

// Calculate prices the given items with an optional coupon applied.
// The empty-cart check happens before any arithmetic.
func Calculate(items []Item, coupon *Coupon) (Quote, error) {
	if len(items) == 0 {
		return Quote{}, ErrEmptyCart
	}

	subtotal := decimal.Zero
	for _, it := range items {
		subtotal = subtotal.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}

	tax := subtotal.Mul(TaxRate).Round(2)

	shipping := ShippingFee
	if subtotal.GreaterThan(FreeShippingThreshold) {
		shipping = decimal.Zero
	}

	discount := decimal.Zero
	if coupon != nil {
		switch coupon.Type {
		case CouponPercentage:
			base := subtotal.Add(tax).Add(shipping)
			discount = base.Mul(coupon.Amount).Div(decimal.NewFromInt(100)).Round(2)
		case CouponFlat:
			discount = coupon.Amount
		}
	}

	total := subtotal.Add(tax).Add(shipping).Sub(discount).Round(2)
	if total.IsNegative() {
		total = decimal.Zero
	}

	return Quote{
		Subtotal:    subtotal,
		Tax:         tax,
		ShippingFee: shipping,
		Discount:    discount,
		Total:       total,
	}, nil
}
