package inventory

import (
	"errors"
	"time"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
)

const DefaultLowStockThreshold = 5

type Product struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	Name      string          `json:"name" db:"name"`
	Price     decimal.Decimal `json:"price" db:"price"`
	Currency  string          `json:"currency" db:"currency"`
	Stock     int             `json:"stock" db:"stock_quantity"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}

type StockLevel string

const (
	StockOK  StockLevel = "ok"
	StockLow StockLevel = "low"
	StockOut StockLevel = "out"
)

// StockEvent describes the stock level of a product after a decrement.
type StockEvent struct {
	ProductID   uuid.UUID  `json:"product_id"`
	ProductName string     `json:"product_name"`
	Level       StockLevel `json:"level"`
	Remaining   int        `json:"remaining"`
}

// ClassifyStock maps a post-decrement quantity to a level. Out-of-stock
// takes precedence over low-stock; the two never fire together.
func ClassifyStock(remaining, threshold int) StockLevel {
	switch {
	case remaining <= 0:
		return StockOut
	case remaining <= threshold:
		return StockLow
	default:
		return StockOK
	}
}
