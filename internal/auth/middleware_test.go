package auth_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/config"
	"github.com/nordcargo/forwarding-api/internal/domain"
)

const testAPIKey = "test-api-key-value"

func newTestMiddleware() *auth.Middleware {
	cfg := &config.Config{
		Auth:   *testAuthConfig(),
		ApiKey: config.ApiKeyConfig{Value: testAPIKey},
	}
	return auth.NewMiddleware(cfg, zap.NewNop())
}

// echoUserHandler writes the authenticated user ID, or 200 with no body
func echoUserHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if userCtx, ok := auth.FromContext(r.Context()); ok {
			_, _ = w.Write([]byte(userCtx.UserID))
			return
		}
		w.WriteHeader(http.StatusOK)
	})
}

func bearerToken(t *testing.T, roles ...domain.UserRoleType) string {
	t.Helper()
	token, err := auth.IssueToken(testAuthConfig(), "user-123", "ops@example.com", "Ola Nord", roles, time.Now())
	require.NoError(t, err)
	return token
}

// =============================================================================
// Authenticate Tests
// =============================================================================

func TestMiddleware_Authenticate(t *testing.T) {
	mw := newTestMiddleware()
	handler := mw.Authenticate(echoUserHandler())

	t.Run("valid bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/quotations", nil)
		req.Header.Set("Authorization", "Bearer "+bearerToken(t, domain.RoleOperator))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-123", rec.Body.String())
	})

	t.Run("valid api key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/quotations", nil)
		req.Header.Set("x-api-key", testAPIKey)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "system", rec.Body.String())
	})

	t.Run("invalid api key", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/quotations", nil)
		req.Header.Set("x-api-key", "wrong-key")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("missing credentials", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/quotations", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed authorization header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/quotations", nil)
		req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("invalid bearer token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/quotations", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestMiddleware_OptionalAuthenticate(t *testing.T) {
	mw := newTestMiddleware()
	handler := mw.OptionalAuthenticate(echoUserHandler())

	t.Run("passes through without credentials", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("attaches identity when token is valid", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		req.Header.Set("Authorization", "Bearer "+bearerToken(t, domain.RoleViewer))
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "user-123", rec.Body.String())
	})

	t.Run("continues unauthenticated on bad token", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/api/v1/health", nil)
		req.Header.Set("Authorization", "Bearer not.a.token")
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Body.String())
	})
}

// =============================================================================
// Role Middleware Tests
// =============================================================================

func roleRequest(roles ...domain.UserRoleType) *http.Request {
	req := httptest.NewRequest("POST", "/api/v1/quotations", nil)
	ctx := auth.WithUserContext(req.Context(), &auth.UserContext{
		UserID: "user-123",
		Roles:  roles,
	})
	return req.WithContext(ctx)
}

func TestMiddleware_RequireWriter(t *testing.T) {
	mw := newTestMiddleware()
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.RequireWriter(okHandler)

	tests := []struct {
		name     string
		roles    []domain.UserRoleType
		expected int
	}{
		{"operator may write", []domain.UserRoleType{domain.RoleOperator}, http.StatusNoContent},
		{"sales may write", []domain.UserRoleType{domain.RoleSales}, http.StatusNoContent},
		{"admin may write", []domain.UserRoleType{domain.RoleAdmin}, http.StatusNoContent},
		{"viewer is read only", []domain.UserRoleType{domain.RoleViewer}, http.StatusForbidden},
		{"no roles", nil, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, roleRequest(tt.roles...))
			assert.Equal(t, tt.expected, rec.Code)
		})
	}

	t.Run("no user context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest("POST", "/api/v1/quotations", nil))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestMiddleware_RequireAdmin(t *testing.T) {
	mw := newTestMiddleware()
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.RequireAdmin(okHandler)

	t.Run("admin allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, roleRequest(domain.RoleAdmin))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("operator forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, roleRequest(domain.RoleOperator))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

func TestMiddleware_RequireRole(t *testing.T) {
	mw := newTestMiddleware()
	okHandler := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := mw.RequireRole(domain.RoleSales, domain.RoleAdmin)(okHandler)

	t.Run("matching role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, roleRequest(domain.RoleSales))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("non matching role", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, roleRequest(domain.RoleViewer))
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
