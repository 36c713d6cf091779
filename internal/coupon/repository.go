package coupon

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the persistence boundary of the coupon ledger. Redeem must be
// atomic: the validity check and the counter increment happen as one
// store-level operation, never as a read followed by a write.
type Store interface {
	GetByCode(ctx context.Context, code string) (*Coupon, error)
	Redeem(ctx context.Context, code string, now time.Time) error
	Release(ctx context.Context, code string) error
}

type postgresStore struct {
	db *pgxpool.Pool
}

func NewPostgresStore(db *pgxpool.Pool) Store {
	return &postgresStore{db: db}
}

func (s *postgresStore) GetByCode(ctx context.Context, code string) (*Coupon, error) {
	query := `
		SELECT id, code, discount_type, amount, expires_at, usage_limit, used_count, created_at
		FROM coupons
		WHERE code = $1
	`

	var c Coupon
	err := s.db.QueryRow(ctx, query, code).Scan(
		&c.ID,
		&c.Code,
		&c.Type,
		&c.Amount,
		&c.ExpiresAt,
		&c.UsageLimit,
		&c.UsedCount,
		&c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCouponInvalid
		}
		return nil, fmt.Errorf("repository: failed to select coupon %q: %w", code, err)
	}

	return &c, nil
}

// Redeem увеличивает used_count одним guarded UPDATE - проверка лимита и
// срока действия входит в условие WHERE, поэтому два конкурентных вызова
// не могут оба пройти при одном оставшемся использовании.
func (s *postgresStore) Redeem(ctx context.Context, code string, now time.Time) error {
	query := `
		UPDATE coupons
		SET used_count = used_count + 1
		WHERE code = $1
		  AND expires_at >= $2
		  AND (usage_limit IS NULL OR used_count < usage_limit)
	`

	cmdTag, err := s.db.Exec(ctx, query, code, now)
	if err != nil {
		return fmt.Errorf("repository: failed to redeem coupon %q: %w", code, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return nil
	}

	// Guard не прошёл: перечитываем, чтобы вернуть конкретную причину.
	c, err := s.GetByCode(ctx, code)
	if err != nil {
		return err
	}
	if err := c.Validate(now); err != nil {
		return err
	}
	return ErrCouponExhausted
}

func (s *postgresStore) Release(ctx context.Context, code string) error {
	query := `
		UPDATE coupons
		SET used_count = GREATEST(used_count - 1, 0)
		WHERE code = $1
	`

	cmdTag, err := s.db.Exec(ctx, query, code)
	if err != nil {
		return fmt.Errorf("repository: failed to release coupon %q: %w", code, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrCouponInvalid
	}
	return nil
}
