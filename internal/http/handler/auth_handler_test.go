package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/http/handler"
)

// mockUserRepository records upserted users
type mockUserRepository struct {
	upserted  []*domain.User
	upsertErr error
}

func (m *mockUserRepository) Upsert(_ context.Context, user *domain.User) error {
	m.upserted = append(m.upserted, user)
	return m.upsertErr
}

func TestAuthHandler_Me(t *testing.T) {
	t.Run("returns authenticated user", func(t *testing.T) {
		repo := &mockUserRepository{}
		h := handler.NewAuthHandlerWithMocks(repo, zap.NewNop())

		userCtx := &auth.UserContext{
			UserID:      "user-123",
			DisplayName: "Ola Nord",
			Email:       "ola@nordcargo.io",
			Roles:       []domain.UserRoleType{domain.RoleAdmin, domain.RoleOperator},
		}

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(auth.WithUserContext(req.Context(), userCtx))
		w := httptest.NewRecorder()

		h.Me(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var dto domain.AuthUserDTO
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dto))
		assert.Equal(t, "user-123", dto.ID)
		assert.Equal(t, "Ola Nord", dto.Name)
		assert.Equal(t, "ola@nordcargo.io", dto.Email)
		assert.True(t, dto.IsAdmin)
		assert.ElementsMatch(t, []string{"admin", "operator"}, dto.Roles)

		// The user record is kept in sync on each call
		require.Len(t, repo.upserted, 1)
		assert.Equal(t, "user-123", repo.upserted[0].ID)
	})

	t.Run("unauthorized without user context", func(t *testing.T) {
		h := handler.NewAuthHandlerWithMocks(&mockUserRepository{}, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		w := httptest.NewRecorder()

		h.Me(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("upsert failure does not fail the request", func(t *testing.T) {
		repo := &mockUserRepository{upsertErr: errors.New("db down")}
		h := handler.NewAuthHandlerWithMocks(repo, zap.NewNop())

		req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
		req = req.WithContext(auth.WithUserContext(req.Context(), &auth.UserContext{
			UserID: "user-123",
			Roles:  []domain.UserRoleType{domain.RoleViewer},
		}))
		w := httptest.NewRecorder()

		h.Me(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
