package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence boundary for product stock. DecrementStock is a
// compare-and-decrement: the guard and the subtraction are one store-level
// operation, so stock can never go negative under concurrent checkouts.
type Store interface {
	GetByID(ctx context.Context, productID uuid.UUID) (*Product, error)
	DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (remaining int, err error)
	RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error
}

type postgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) GetByID(ctx context.Context, productID uuid.UUID) (*Product, error) {
	query := `
		SELECT id, name, price, currency, stock_quantity, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var p Product
	err := s.db.QueryRow(ctx, query, productID).Scan(
		&p.ID,
		&p.Name,
		&p.Price,
		&p.Currency,
		&p.Stock,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProductNotFound
		}
		return nil, fmt.Errorf("repository: failed to select product %s: %w", productID, err)
	}

	return &p, nil
}

// DecrementStock списывает qty одним guarded UPDATE: условие stock >= qty
// входит в WHERE, слепого вычитания нет.
func (s *postgresStore) DecrementStock(ctx context.Context, productID uuid.UUID, qty int) (int, error) {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity - $1, updated_at = now()
		WHERE id = $2 AND stock_quantity >= $1
		RETURNING stock_quantity
	`

	var remaining int
	err := s.db.QueryRow(ctx, query, qty, productID).Scan(&remaining)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Либо товара нет, либо guard не прошёл - различаем перечитыванием.
			if _, getErr := s.GetByID(ctx, productID); getErr != nil {
				return 0, getErr
			}
			return 0, ErrInsufficientStock
		}
		return 0, fmt.Errorf("repository: failed to decrement stock for product %s: %w", productID, err)
	}

	return remaining, nil
}

func (s *postgresStore) RestoreStock(ctx context.Context, productID uuid.UUID, qty int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $1, updated_at = now()
		WHERE id = $2
	`

	cmdTag, err := s.db.Exec(ctx, query, qty, productID)
	if err != nil {
		return fmt.Errorf("repository: failed to restore stock for product %s: %w", productID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}
