package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ecommerce-platform/checkout-service/internal/coupon"
	"github.com/ecommerce-platform/checkout-service/internal/pricing"
)

type CouponValidator interface {
	Validate(ctx context.Context, code string) (*coupon.Coupon, error)
}

// CouponHandler exposes the standalone coupon check.
type CouponHandler struct {
	ledger CouponValidator
}

func NewCouponHandler(ledger CouponValidator) *CouponHandler {
	return &CouponHandler{ledger: ledger}
}

type redeemCouponRequest struct {
	Code string `json:"code"`
}

type redeemCouponResponse struct {
	Code   string             `json:"code"`
	Type   pricing.CouponType `json:"type"`
	Amount decimal.Decimal    `json:"amount"`
}

// RedeemCheck validates a coupon without consuming a use; the actual
// redemption happens inside checkout.
func (h *CouponHandler) RedeemCheck(w http.ResponseWriter, r *http.Request) {
	var req redeemCouponRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Code == "" {
		respondWithError(w, http.StatusBadRequest, "code is required")
		return
	}

	c, err := h.ledger.Validate(r.Context(), req.Code)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, redeemCouponResponse{
		Code:   c.Code,
		Type:   c.Type,
		Amount: c.Amount,
	})
}
