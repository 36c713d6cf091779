package order

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ecommerce-platform/checkout-service/internal/cart"
	"github.com/ecommerce-platform/checkout-service/internal/coupon"
	"github.com/ecommerce-platform/checkout-service/internal/events"
	"github.com/ecommerce-platform/checkout-service/internal/inventory"
	"github.com/ecommerce-platform/checkout-service/internal/notification"
	"github.com/ecommerce-platform/checkout-service/internal/pricing"
)

type CheckoutInput struct {
	UserID            uuid.UUID
	CustomerEmail     string
	ShippingAddressID uuid.UUID
	BillingAddressID  *uuid.UUID
	PaymentMethod     string
	CouponCode        *string
}

type Service struct {
	repo        Repository
	addresses   AddressStore
	carts       cart.Store
	ledger      *coupon.Ledger
	reconciler  *inventory.Reconciler
	dispatcher  *notification.Dispatcher
	broadcaster *events.Broadcaster
}

func NewService(
	repo Repository,
	addresses AddressStore,
	carts cart.Store,
	ledger *coupon.Ledger,
	reconciler *inventory.Reconciler,
	dispatcher *notification.Dispatcher,
	broadcaster *events.Broadcaster,
) *Service {
	return &Service{
		repo:        repo,
		addresses:   addresses,
		carts:       carts,
		ledger:      ledger,
		reconciler:  reconciler,
		dispatcher:  dispatcher,
		broadcaster: broadcaster,
	}
}

// Checkout turns the caller's cart into a durable order.
//
// Шаги «редим купона -> запись заказа -> списание склада» образуют сагу:
// при сбое любого шага уже применённые изменения откатываются
// компенсирующими действиями в обратном порядке.
func (s *Service) Checkout(ctx context.Context, in CheckoutInput) (*Order, error) {
	if in.PaymentMethod == "" {
		return nil, fmt.Errorf("%w: payment method is required", ErrValidation)
	}

	shipping, err := s.addresses.GetForUser(ctx, in.ShippingAddressID, in.UserID)
	if err != nil {
		return nil, err
	}
	billing := shipping
	if in.BillingAddressID != nil {
		billing, err = s.addresses.GetForUser(ctx, *in.BillingAddressID, in.UserID)
		if err != nil {
			return nil, err
		}
	}

	lines, err := s.carts.LinesForUser(ctx, in.UserID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to load cart: %w", err)
	}
	if len(lines) == 0 {
		return nil, pricing.ErrEmptyCart
	}

	items := make([]pricing.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, pricing.Item{UnitPrice: l.UnitPrice, Quantity: l.Quantity})
	}

	var priceCoupon *pricing.Coupon
	if in.CouponCode != nil {
		c, err := s.ledger.Validate(ctx, *in.CouponCode)
		if err != nil {
			return nil, err
		}
		priceCoupon = &pricing.Coupon{Type: c.Type, Amount: c.Amount}
	}

	quote, err := pricing.Calculate(items, priceCoupon)
	if err != nil {
		return nil, err
	}

	// Шаг 1 саги: атомарный редим купона.
	couponRedeemed := false
	if in.CouponCode != nil {
		if err := s.ledger.Redeem(ctx, *in.CouponCode); err != nil {
			return nil, err
		}
		couponRedeemed = true
	}
	releaseCoupon := func() {
		if !couponRedeemed {
			return
		}
		if err := s.ledger.Release(ctx, *in.CouponCode); err != nil {
			log.Error().Err(err).Str("code", *in.CouponCode).Msg("service: coupon compensation failed")
		}
	}

	o, err := s.buildOrder(in, lines, quote, shipping, billing)
	if err != nil {
		releaseCoupon()
		return nil, err
	}

	// Шаг 2: заказ с позициями одной транзакцией.
	if err := s.repo.Create(ctx, o); err != nil {
		releaseCoupon()
		log.Error().Err(err).Stringer("user_id", in.UserID).Msg("service: failed to persist order")
		return nil, fmt.Errorf("service: failed to create order: %w", err)
	}

	// Шаг 3: guarded-списание склада по каждой позиции.
	demands := make([]inventory.Demand, 0, len(o.Items))
	for _, item := range o.Items {
		demands = append(demands, inventory.Demand{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	applied, stockEvents, err := s.reconciler.ApplyOrder(ctx, demands)
	if err != nil {
		s.reconciler.Compensate(ctx, applied)
		if delErr := s.repo.Delete(ctx, o.ID); delErr != nil {
			log.Error().Err(delErr).Stringer("order_id", o.ID).Msg("service: order compensation failed")
		}
		releaseCoupon()
		return nil, err
	}

	// Заказ зафиксирован; всё дальше - best-effort и не влияет на результат.
	s.afterCommit(ctx, o, stockEvents)

	log.Info().
		Stringer("order_id", o.ID).
		Str("order_number", o.OrderNumber).
		Stringer("user_id", in.UserID).
		Msg("service: order created successfully")

	return o, nil
}

func (s *Service) buildOrder(in CheckoutInput, lines []cart.Line, quote pricing.Quote, shipping, billing *Address) (*Order, error) {
	orderID, err := uuid.NewV4()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order ID: %w", err)
	}
	// UUIDv7 монотонен по времени - коллизий под burst-трафиком не будет,
	// а UNIQUE-констрейнт в хранилище страхует остальное.
	numberID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("service: failed to generate order number: %w", err)
	}

	o := &Order{
		ID:                  orderID,
		OrderNumber:         "ORD-" + numberID.String(),
		UserID:              in.UserID,
		CustomerEmail:       in.CustomerEmail,
		Status:              StatusPending,
		PaymentMethod:       in.PaymentMethod,
		PaymentStatus:       PaymentStatusUnpaid,
		Subtotal:            quote.Subtotal,
		Tax:                 quote.Tax,
		ShippingFee:         quote.ShippingFee,
		DiscountAmount:      quote.Discount,
		TotalAmount:         quote.Total,
		CouponCode:          in.CouponCode,
		ShippingAddressText: shipping.Snapshot(),
		BillingAddressText:  billing.Snapshot(),
	}

	for _, l := range lines {
		o.Items = append(o.Items, Item{
			ProductID:       l.ProductID,
			ProductName:     l.ProductName,
			Quantity:        l.Quantity,
			PriceAtPurchase: l.UnitPrice,
		})
	}
	return o, nil
}

// afterCommit fans out notifications and events, then clears the cart.
// None of it can fail the committed order.
func (s *Service) afterCommit(ctx context.Context, o *Order, stockEvents []inventory.StockEvent) {
	summary := s.summarize(o)
	s.dispatcher.OrderConfirmation(summary)
	s.dispatcher.AdminNewOrder(summary)
	s.broadcaster.Broadcast(events.OrderCreated, o)

	for _, ev := range stockEvents {
		s.dispatcher.StockAlertMail(notification.StockAlert{
			ProductID:   ev.ProductID.String(),
			ProductName: ev.ProductName,
			Level:       string(ev.Level),
			Remaining:   ev.Remaining,
		})
		name := events.StockLow
		if ev.Level == inventory.StockOut {
			name = events.StockOut
		}
		s.broadcaster.Broadcast(name, ev)
	}

	// Корзина чистится только после фиксации заказа; сбой не отменяет заказ.
	if err := s.carts.ClearForUser(ctx, o.UserID); err != nil {
		log.Error().Err(err).Stringer("user_id", o.UserID).Msg("service: failed to clear cart after checkout")
	}
}

func (s *Service) summarize(o *Order) notification.OrderSummary {
	lines := make([]notification.LineSummary, 0, len(o.Items))
	for _, item := range o.Items {
		lines = append(lines, notification.LineSummary{
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			Price:       item.PriceAtPurchase.StringFixed(2),
		})
	}
	return notification.OrderSummary{
		OrderNumber:   o.OrderNumber,
		CustomerEmail: o.CustomerEmail,
		Status:        string(o.Status),
		Total:         o.TotalAmount.StringFixed(2),
		Lines:         lines,
	}
}

// UpdateStatus moves an order through the pending -> accepted -> shipped
// -> delivered machine. Re-applying the current status is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) (*Order, error) {
	current, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if current.Status == newStatus {
		log.Info().Stringer("order_id", orderID).Stringer("status", newStatus).Msg("service: order status already set, no update needed")
		return current, nil
	}

	if !current.Status.CanTransition(newStatus) {
		log.Warn().
			Stringer("order_id", orderID).
			Stringer("current_status", current.Status).
			Stringer("new_status", newStatus).
			Msg("service: invalid status transition attempt")
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidStatusTransition, current.Status, newStatus)
	}

	if err := s.repo.UpdateStatus(ctx, orderID, newStatus); err != nil {
		return nil, fmt.Errorf("service: failed to update order status: %w", err)
	}
	current.Status = newStatus

	s.broadcaster.Broadcast(events.OrderStatusChanged, current)
	s.dispatcher.StatusChanged(s.summarize(current))

	log.Info().Stringer("order_id", orderID).Stringer("new_status", newStatus).Msg("service: order status updated")
	return current, nil
}

// GetOrderForUser returns the order when owned by the requester; admins
// see every order. Unowned orders read as not found.
func (s *Service) GetOrderForUser(ctx context.Context, orderID, userID uuid.UUID, isAdmin bool) (*Order, error) {
	o, err := s.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if !isAdmin && o.UserID != userID {
		return nil, ErrOrderNotFound
	}
	return o, nil
}

func (s *Service) ListUserOrders(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	orders, err := s.repo.ListForUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("service: failed to fetch user orders: %w", err)
	}
	return orders, nil
}
