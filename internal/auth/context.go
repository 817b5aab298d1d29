package auth

import (
	"context"
	"slices"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

// UserContext is the authenticated identity carried through a request.
type UserContext struct {
	UserID      string
	DisplayName string
	Email       string
	Roles       []domain.UserRoleType
}

type contextKey string

const userContextKey contextKey = "userContext"

func WithUserContext(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

func FromContext(ctx context.Context) (*UserContext, bool) {
	user, ok := ctx.Value(userContextKey).(*UserContext)
	return user, ok
}

// MustFromContext is for handlers behind Authenticate, where a missing
// user context is a programming error.
func MustFromContext(ctx context.Context) *UserContext {
	user, ok := FromContext(ctx)
	if !ok {
		panic("user context not found in context")
	}
	return user
}

func (u *UserContext) HasRole(role domain.UserRoleType) bool {
	return slices.Contains(u.Roles, role)
}

func (u *UserContext) HasAnyRole(roles ...domain.UserRoleType) bool {
	for _, role := range roles {
		if u.HasRole(role) {
			return true
		}
	}
	return false
}

func (u *UserContext) IsAdmin() bool {
	return u.HasRole(domain.RoleAdmin)
}

// CanMutate reports whether the user may create or change records.
// Viewers are read-only; everyone else can write.
func (u *UserContext) CanMutate() bool {
	return u.HasAnyRole(domain.RoleAdmin, domain.RoleOperator, domain.RoleSales, domain.RoleAPIService)
}

func (u *UserContext) RolesAsStrings() []string {
	out := make([]string, len(u.Roles))
	for i, role := range u.Roles {
		out[i] = string(role)
	}
	return out
}
