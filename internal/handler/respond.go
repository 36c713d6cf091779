package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/ecommerce-platform/checkout-service/internal/coupon"
	"github.com/ecommerce-platform/checkout-service/internal/inventory"
	"github.com/ecommerce-platform/checkout-service/internal/order"
	"github.com/ecommerce-platform/checkout-service/internal/pricing"
)

// respondWithError отправляет JSON ошибку
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}

// respondWithJSON отправляет JSON ответ
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("handler: failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("handler: failed to write JSON response")
	}
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrAddressNotFound),
		errors.Is(err, inventory.ErrProductNotFound),
		errors.Is(err, coupon.ErrCouponInvalid):
		return http.StatusNotFound
	case errors.Is(err, order.ErrValidation),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrInvalidStatusTransition),
		errors.Is(err, pricing.ErrEmptyCart),
		errors.Is(err, coupon.ErrCouponExpired),
		errors.Is(err, coupon.ErrCouponExhausted):
		return http.StatusBadRequest
	case errors.Is(err, inventory.ErrInsufficientStock):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondWithMappedError surfaces domain errors with a specific kind and
// hides persistence detail behind a generic message.
func respondWithMappedError(w http.ResponseWriter, err error) {
	code := mapErrorToStatusCode(err)
	if code == http.StatusInternalServerError {
		log.Error().Err(err).Msg("handler: internal error")
		respondWithError(w, code, "internal server error")
		return
	}
	respondWithError(w, code, err.Error())
}
