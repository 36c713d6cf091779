package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// Repository persists orders. Create writes the header and every item in
// one transaction; a partially written order is never visible.
type Repository interface {
	Create(ctx context.Context, o *Order) error
	Delete(ctx context.Context, orderID uuid.UUID) error
	GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID) ([]Order, error)
	UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) Create(ctx context.Context, o *Order) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if p := recover(); p != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction after panic")
			}
			panic(p)
		} else if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", o.ID).Msg("Failed to rollback transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	queryOrder := `
		INSERT INTO orders (
			id, order_number, user_id, customer_email, status,
			payment_method, payment_status,
			subtotal, tax, shipping_fee, discount_amount, total_amount, coupon_code,
			shipping_address_text, billing_address_text, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`
	_, err = tx.Exec(ctx, queryOrder,
		o.ID,
		o.OrderNumber,
		o.UserID,
		o.CustomerEmail,
		string(o.Status),
		o.PaymentMethod,
		o.PaymentStatus,
		o.Subtotal,
		o.Tax,
		o.ShippingFee,
		o.DiscountAmount,
		o.TotalAmount,
		o.CouponCode,
		o.ShippingAddressText,
		o.BillingAddressText,
		o.CreatedAt,
		o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("repository: failed to insert order: %w", err)
	}

	queryItem := `
		INSERT INTO order_items (id, order_id, product_id, product_name, quantity, price_at_purchase, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	for i := range o.Items {
		item := &o.Items[i]

		itemID, genErr := uuid.NewV4()
		if genErr != nil {
			return fmt.Errorf("repository: failed to generate order item ID: %w", genErr)
		}
		item.ID = itemID
		item.OrderID = o.ID
		item.CreatedAt = now

		_, err = tx.Exec(ctx, queryItem,
			item.ID,
			item.OrderID,
			item.ProductID,
			item.ProductName,
			item.Quantity,
			item.PriceAtPurchase,
			item.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("repository: failed to insert order item for order %s: %w", o.ID, err)
		}
	}

	return nil
}

// Delete - компенсирующее действие саги: убирает заказ вместе с позициями.
func (r *postgresRepository) Delete(ctx context.Context, orderID uuid.UUID) (err error) {
	tx, beginErr := r.db.Begin(ctx)
	if beginErr != nil {
		return fmt.Errorf("repository: failed to begin transaction: %w", beginErr)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				log.Error().Err(rbErr).Stringer("order_id", orderID).Msg("Failed to rollback delete transaction")
			}
		} else {
			if commitErr := tx.Commit(ctx); commitErr != nil {
				err = fmt.Errorf("repository: failed to commit transaction: %w", commitErr)
			}
		}
	}()

	if _, err = tx.Exec(ctx, `DELETE FROM order_items WHERE order_id = $1`, orderID); err != nil {
		return fmt.Errorf("repository: failed to delete order items for order %s: %w", orderID, err)
	}

	cmdTag, execErr := tx.Exec(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if execErr != nil {
		err = fmt.Errorf("repository: failed to delete order %s: %w", orderID, execErr)
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		err = ErrOrderNotFound
		return err
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, orderID uuid.UUID) (*Order, error) {
	queryOrder := `
		SELECT id, order_number, user_id, customer_email, status,
		       payment_method, payment_status,
		       subtotal, tax, shipping_fee, discount_amount, total_amount, coupon_code,
		       shipping_address_text, billing_address_text, created_at, updated_at
		FROM orders
		WHERE id = $1
	`

	var o Order
	err := r.db.QueryRow(ctx, queryOrder, orderID).Scan(
		&o.ID,
		&o.OrderNumber,
		&o.UserID,
		&o.CustomerEmail,
		&o.Status,
		&o.PaymentMethod,
		&o.PaymentStatus,
		&o.Subtotal,
		&o.Tax,
		&o.ShippingFee,
		&o.DiscountAmount,
		&o.TotalAmount,
		&o.CouponCode,
		&o.ShippingAddressText,
		&o.BillingAddressText,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("repository: failed to select order by id %s: %w", orderID, err)
	}

	items, err := r.itemsForOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	o.Items = items

	return &o, nil
}

func (r *postgresRepository) itemsForOrder(ctx context.Context, orderID uuid.UUID) ([]Item, error) {
	query := `
		SELECT id, order_id, product_id, product_name, quantity, price_at_purchase, created_at
		FROM order_items
		WHERE order_id = $1
	`

	rows, err := r.db.Query(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query order items for order id %s: %w", orderID, err)
	}
	defer rows.Close()

	items := make([]Item, 0)
	for rows.Next() {
		var item Item
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&item.ProductID,
			&item.ProductName,
			&item.Quantity,
			&item.PriceAtPurchase,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order item for order id %s: %w", orderID, err)
		}
		items = append(items, item)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating order items for order id %s: %w", orderID, err)
	}

	return items, nil
}

func (r *postgresRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]Order, error) {
	query := `
		SELECT id, order_number, user_id, customer_email, status,
		       payment_method, payment_status,
		       subtotal, tax, shipping_fee, discount_amount, total_amount, coupon_code,
		       shipping_address_text, billing_address_text, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query orders for user id %s: %w", userID, err)
	}
	defer rows.Close()

	orders := make([]Order, 0)
	for rows.Next() {
		var o Order
		err := rows.Scan(
			&o.ID,
			&o.OrderNumber,
			&o.UserID,
			&o.CustomerEmail,
			&o.Status,
			&o.PaymentMethod,
			&o.PaymentStatus,
			&o.Subtotal,
			&o.Tax,
			&o.ShippingFee,
			&o.DiscountAmount,
			&o.TotalAmount,
			&o.CouponCode,
			&o.ShippingAddressText,
			&o.BillingAddressText,
			&o.CreatedAt,
			&o.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("repository: failed to scan order for user id %s: %w", userID, err)
		}
		orders = append(orders, o)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating orders for user id %s: %w", userID, err)
	}

	for i := range orders {
		items, err := r.itemsForOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}

	return orders, nil
}

func (r *postgresRepository) UpdateStatus(ctx context.Context, orderID uuid.UUID, newStatus Status) error {
	query := `
		UPDATE orders
		SET status = $1, updated_at = $2
		WHERE id = $3
	`

	cmdTag, err := r.db.Exec(ctx, query, string(newStatus), time.Now().UTC(), orderID)
	if err != nil {
		log.Error().Err(err).Stringer("order_id", orderID).Str("new_status", string(newStatus)).Msg("repository: failed to update order status")
		return fmt.Errorf("repository: failed to update order status %s: %w", orderID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}

	return nil
}
