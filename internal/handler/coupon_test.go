package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecommerce-platform/checkout-service/internal/coupon"
	"github.com/ecommerce-platform/checkout-service/internal/pricing"
)

type mockCouponValidator struct {
	validateFunc func(ctx context.Context, code string) (*coupon.Coupon, error)
}

func (m *mockCouponValidator) Validate(ctx context.Context, code string) (*coupon.Coupon, error) {
	return m.validateFunc(ctx, code)
}

func TestCouponHandler_RedeemCheck(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		validate       func(ctx context.Context, code string) (*coupon.Coupon, error)
		expectedStatus int
	}{
		{
			name: "valid_coupon",
			body: `{"code": "SAVE10"}`,
			validate: func(ctx context.Context, code string) (*coupon.Coupon, error) {
				return &coupon.Coupon{
					Code:   code,
					Type:   pricing.CouponPercentage,
					Amount: decimal.NewFromInt(10),
				}, nil
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "invalid_json",
			body:           `{`,
			validate:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "missing_code",
			body:           `{"code": ""}`,
			validate:       nil,
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "unknown_code",
			body: `{"code": "NOPE"}`,
			validate: func(ctx context.Context, code string) (*coupon.Coupon, error) {
				return nil, coupon.ErrCouponInvalid
			},
			expectedStatus: http.StatusNotFound,
		},
		{
			name: "expired",
			body: `{"code": "OLD"}`,
			validate: func(ctx context.Context, code string) (*coupon.Coupon, error) {
				return nil, coupon.ErrCouponExpired
			},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name: "exhausted",
			body: `{"code": "GONE"}`,
			validate: func(ctx context.Context, code string) (*coupon.Coupon, error) {
				return nil, coupon.ErrCouponExhausted
			},
			expectedStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewCouponHandler(&mockCouponValidator{validateFunc: tt.validate})

			req := httptest.NewRequest(http.MethodPost, "/coupons/redeem", bytes.NewBufferString(tt.body))
			w := httptest.NewRecorder()

			h.RedeemCheck(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				var got redeemCouponResponse
				require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
				assert.Equal(t, "SAVE10", got.Code)
				assert.Equal(t, pricing.CouponPercentage, got.Type)
				assert.True(t, got.Amount.Equal(decimal.NewFromInt(10)))
			}
		})
	}
}
