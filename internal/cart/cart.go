// Package cart reads the caller's cart joined with live product data and
// clears it once an order has been durably committed.
package cart

import (
	"context"
	"fmt"

	"github.com/gofrs/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Line is one (product, quantity) pair pending purchase, carrying the
// product's live price at read time.
type Line struct {
	UserID      uuid.UUID       `json:"user_id" db:"user_id"`
	ProductID   uuid.UUID       `json:"product_id" db:"product_id"`
	ProductName string          `json:"product_name" db:"product_name"`
	Quantity    int             `json:"quantity" db:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price" db:"unit_price"`
}

type Store interface {
	LinesForUser(ctx context.Context, userID uuid.UUID) ([]Line, error)
	ClearForUser(ctx context.Context, userID uuid.UUID) error
}

type postgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) LinesForUser(ctx context.Context, userID uuid.UUID) ([]Line, error) {
	query := `
		SELECT cl.user_id, cl.product_id, p.name, cl.quantity, p.price
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		WHERE cl.user_id = $1
		ORDER BY cl.created_at
	`

	rows, err := s.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("repository: failed to query cart lines for user %s: %w", userID, err)
	}
	defer rows.Close()

	lines := make([]Line, 0)
	for rows.Next() {
		var l Line
		if err := rows.Scan(&l.UserID, &l.ProductID, &l.ProductName, &l.Quantity, &l.UnitPrice); err != nil {
			return nil, fmt.Errorf("repository: failed to scan cart line for user %s: %w", userID, err)
		}
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("repository: error iterating cart lines for user %s: %w", userID, err)
	}

	return lines, nil
}

func (s *postgresStore) ClearForUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.db.Exec(ctx, `DELETE FROM cart_lines WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("repository: failed to clear cart for user %s: %w", userID, err)
	}
	return nil
}
