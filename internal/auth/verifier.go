package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresVerifier resolves bearer tokens against the api_tokens table.
type PostgresVerifier struct {
	pool *pgxpool.Pool
}

func NewPostgresVerifier(pool *pgxpool.Pool) *PostgresVerifier {
	return &PostgresVerifier{pool: pool}
}

func (v *PostgresVerifier) Verify(ctx context.Context, credential string) (Identity, error) {
	query := `
		SELECT user_id, email, role
		FROM api_tokens
		WHERE token = $1 AND revoked_at IS NULL`

	var id Identity
	err := v.pool.QueryRow(ctx, query, credential).Scan(&id.UserID, &id.Email, &id.Role)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Identity{}, ErrUnauthorized
		}
		return Identity{}, fmt.Errorf("auth: failed to verify token: %w", err)
	}

	return id, nil
}

// StaticVerifier держит токены в памяти. Для тестов и локального запуска.
type StaticVerifier struct {
	tokens map[string]Identity
}

func NewStaticVerifier(tokens map[string]Identity) *StaticVerifier {
	return &StaticVerifier{tokens: tokens}
}

func (v *StaticVerifier) Verify(_ context.Context, credential string) (Identity, error) {
	id, ok := v.tokens[credential]
	if !ok {
		return Identity{}, ErrUnauthorized
	}
	return id, nil
}
