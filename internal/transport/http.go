package transport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ecommerce-platform/checkout-service/internal/auth"
	"github.com/ecommerce-platform/checkout-service/internal/handler"
)

func NewRouter(
	verifier auth.Verifier,
	orders *handler.OrderHandler,
	coupons *handler.CouponHandler,
	stream *handler.StreamHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(verifier))

		r.Post("/orders", orders.CreateOrder)
		r.Get("/orders", orders.ListOrders)
		r.Get("/orders/{id}", orders.GetOrderByID)

		r.With(auth.RequireRole(auth.RoleAdmin)).
			Patch("/orders/{id}/status", orders.UpdateStatus)

		r.Post("/coupons/redeem", coupons.RedeemCheck)
		r.Get("/events/orders", stream.OrderEvents)
	})

	return r
}
