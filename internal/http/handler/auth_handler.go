package handler

import (
	"context"
	"net/http"

	"github.com/nordcargo/forwarding-api/internal/auth"
	"github.com/nordcargo/forwarding-api/internal/domain"
	"github.com/nordcargo/forwarding-api/internal/repository"
	"go.uber.org/zap"
)

// UserRepository interface for dependency injection
type UserRepository interface {
	Upsert(ctx context.Context, user *domain.User) error
}

type AuthHandler struct {
	userRepo UserRepository
	logger   *zap.Logger
}

func NewAuthHandler(userRepo *repository.UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// NewAuthHandlerWithMocks creates an auth handler with mock dependencies for testing
func NewAuthHandlerWithMocks(userRepo UserRepository, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Me godoc
// @Summary Get current authenticated user
// @Description Returns the current authenticated user with roles
// @Tags Auth
// @Produce json
// @Success 200 {object} domain.AuthUserDTO
// @Failure 401 {object} domain.ErrorResponse
// @Security BearerAuth
// @Security ApiKeyAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userCtx, ok := auth.FromContext(r.Context())
	if !ok {
		respondJSON(w, http.StatusUnauthorized, domain.ErrorResponse{
			Error:   "Unauthorized",
			Message: "Authentication required",
		})
		return
	}

	// Upsert user in database
	user := &domain.User{
		ID:          userCtx.UserID,
		DisplayName: userCtx.DisplayName,
		Email:       userCtx.Email,
		Roles:       userCtx.RolesAsStrings(),
	}

	if err := h.userRepo.Upsert(r.Context(), user); err != nil {
		h.logger.Warn("failed to upsert user", zap.Error(err))
	}

	dto := domain.AuthUserDTO{
		ID:      userCtx.UserID,
		Name:    userCtx.DisplayName,
		Email:   userCtx.Email,
		Roles:   userCtx.RolesAsStrings(),
		IsAdmin: userCtx.IsAdmin(),
	}

	respondJSON(w, http.StatusOK, dto)
}
