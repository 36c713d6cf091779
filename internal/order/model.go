package order

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusAccepted  Status = "accepted"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

func (s Status) String() string {
	return string(s)
}

// Переходы только вперёд: pending -> accepted -> shipped -> delivered.
var allowedTransitions = map[Status]map[Status]bool{
	StatusPending: {
		StatusAccepted: true,
	},
	StatusAccepted: {
		StatusShipped: true,
	},
	StatusShipped: {
		StatusDelivered: true,
	},
	StatusDelivered: {},
}

var (
	ErrOrderNotFound           = errors.New("order not found")
	ErrInvalidStatusTransition = errors.New("invalid order status transition")
	ErrInvalidStatus           = errors.New("unknown order status")
	ErrValidation              = errors.New("invalid order input")
)

// PaymentStatusUnpaid: платёж в этой системе только фиксируется, не проводится.
const PaymentStatusUnpaid = "unpaid"

type Item struct {
	ID        uuid.UUID `json:"id" db:"id"`
	OrderID   uuid.UUID `json:"order_id" db:"order_id"`
	ProductID uuid.UUID `json:"product_id" db:"product_id"`
	// ProductName снимается на момент покупки вместе с ценой.
	ProductName string `json:"product_name" db:"product_name"`
	Quantity    int    `json:"quantity" db:"quantity"`
	// PriceAtPurchase is frozen at creation and never recalculated
	// from the current product price.
	PriceAtPurchase decimal.Decimal `json:"price_at_purchase" db:"price_at_purchase"`
	CreatedAt       time.Time       `json:"created_at" db:"created_at"`
}

type Order struct {
	ID            uuid.UUID `json:"id" db:"id"`
	OrderNumber   string    `json:"order_number" db:"order_number"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	CustomerEmail string    `json:"customer_email" db:"customer_email"`
	Status        Status    `json:"status" db:"status"`
	PaymentMethod string    `json:"payment_method" db:"payment_method"`
	PaymentStatus string    `json:"payment_status" db:"payment_status"`

	Subtotal       decimal.Decimal `json:"subtotal" db:"subtotal"`
	Tax            decimal.Decimal `json:"tax" db:"tax"`
	ShippingFee    decimal.Decimal `json:"shipping_fee" db:"shipping_fee"`
	DiscountAmount decimal.Decimal `json:"discount_amount" db:"discount_amount"`
	TotalAmount    decimal.Decimal `json:"total_amount" db:"total_amount"`
	CouponCode     *string         `json:"coupon_code,omitempty" db:"coupon_code"`

	ShippingAddressText string `json:"shipping_address_text" db:"shipping_address_text"`
	BillingAddressText  string `json:"billing_address_text" db:"billing_address_text"`

	Items     []Item    `json:"items" db:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ParseStatus validates a status value coming over the wire.
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPending, StatusAccepted, StatusShipped, StatusDelivered:
		return Status(s), nil
	default:
		return "", ErrInvalidStatus
	}
}

// CanTransition reports whether moving from s to next is allowed.
func (s Status) CanTransition(next Status) bool {
	allowed, ok := allowedTransitions[s]
	return ok && allowed[next]
}
