// Package auth defines the boundary to the external identity verifier and
// the HTTP middleware that attaches the verified identity to the request.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

type Identity struct {
	UserID uuid.UUID
	Email  string
	Role   Role
}

// Verifier проверяет учётные данные вызывающего. Реализация внешняя.
type Verifier interface {
	Verify(ctx context.Context, credential string) (Identity, error)
}

type ctxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func FromContext(ctx context.Context) (Identity, bool) {
	id, ok := ctx.Value(ctxKey{}).(Identity)
	return id, ok
}

// Middleware extracts the bearer credential, verifies it and stores the
// resulting identity in the request context.
func Middleware(v Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if credential == "" {
				http.Error(w, "missing credentials", http.StatusUnauthorized)
				return
			}

			id, err := v.Verify(r.Context(), credential)
			if err != nil {
				log.Warn().Err(err).Msg("auth: credential verification failed")
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), id)))
		})
	}
}

// RequireRole rejects requests whose verified identity lacks the role.
func RequireRole(role Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := FromContext(r.Context())
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			if id.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
