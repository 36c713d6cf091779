package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMiddleware(t *testing.T) {
	userID, err := uuid.NewV4()
	require.NoError(t, err)

	verifier := NewStaticVerifier(map[string]Identity{
		"valid-token": {UserID: userID, Email: "buyer@example.com", Role: RoleCustomer},
	})

	var seen Identity
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := FromContext(r.Context())
		require.True(t, ok)
		seen = id
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name           string
		header         string
		expectedStatus int
	}{
		{name: "valid_token", header: "Bearer valid-token", expectedStatus: http.StatusOK},
		{name: "unknown_token", header: "Bearer nope", expectedStatus: http.StatusUnauthorized},
		{name: "missing_header", header: "", expectedStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/orders", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			Middleware(verifier)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				assert.Equal(t, userID, seen.UserID)
				assert.Equal(t, RoleCustomer, seen.Role)
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	adminID, err := uuid.NewV4()
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	guarded := RequireRole(RoleAdmin)(next)

	t.Run("admin_passes", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/orders/x/status", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: adminID, Role: RoleAdmin}))
		w := httptest.NewRecorder()

		guarded.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("customer_forbidden", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/orders/x/status", nil)
		req = req.WithContext(WithIdentity(req.Context(), Identity{UserID: adminID, Role: RoleCustomer}))
		w := httptest.NewRecorder()

		guarded.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("no_identity_unauthorized", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPatch, "/orders/x/status", nil)
		w := httptest.NewRecorder()

		guarded.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
