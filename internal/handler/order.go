package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gofrs/uuid"

	"github.com/ecommerce-platform/checkout-service/internal/auth"
	"github.com/ecommerce-platform/checkout-service/internal/order"
)

// OrderService is the slice of the order service the HTTP layer needs.
type OrderService interface {
	Checkout(ctx context.Context, in order.CheckoutInput) (*order.Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus order.Status) (*order.Order, error)
	GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*order.Order, error)
	ListUserOrders(ctx context.Context, userID uuid.UUID) ([]order.Order, error)
}

// OrderHandler handles HTTP requests for orders.
type OrderHandler struct {
	svc OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type createOrderRequest struct {
	ShippingAddressID string  `json:"shipping_address_id"`
	BillingAddressID  *string `json:"billing_address_id,omitempty"`
	PaymentMethod     string  `json:"payment_method"`
	CouponCode        *string `json:"coupon_code,omitempty"`
}

// CreateOrder turns the authenticated caller's cart into an order.
func (h *OrderHandler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	shippingID, err := uuid.FromString(req.ShippingAddressID)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "shipping_address_id must be a valid UUID")
		return
	}
	var billingID *uuid.UUID
	if req.BillingAddressID != nil {
		parsed, err := uuid.FromString(*req.BillingAddressID)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "billing_address_id must be a valid UUID")
			return
		}
		billingID = &parsed
	}
	if req.PaymentMethod == "" {
		respondWithError(w, http.StatusBadRequest, "payment_method is required")
		return
	}

	o, err := h.svc.Checkout(r.Context(), order.CheckoutInput{
		UserID:            id.UserID,
		CustomerEmail:     id.Email,
		ShippingAddressID: shippingID,
		BillingAddressID:  billingID,
		PaymentMethod:     req.PaymentMethod,
		CouponCode:        req.CouponCode,
	})
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, o)
}

// GetOrderByID returns a single order; ownership is enforced.
func (h *OrderHandler) GetOrderByID(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "order id must be a valid UUID")
		return
	}

	o, err := h.svc.GetOrderForUser(r.Context(), orderID, id.UserID, id.Role == auth.RoleAdmin)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}

// ListOrders returns every order of the authenticated caller.
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	orders, err := h.svc.ListUserOrders(r.Context(), id.UserID)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

// UpdateStatus moves an order through the status machine. Admin only;
// the role check sits in the router middleware.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := uuid.FromString(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "order id must be a valid UUID")
		return
	}

	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	newStatus, err := order.ParseStatus(req.Status)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), orderID, newStatus)
	if err != nil {
		respondWithMappedError(w, err)
		return
	}

	respondWithJSON(w, http.StatusOK, o)
}
