package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/nordcargo/forwarding-api/internal/domain"
)

// UserRepository mirrors authenticated users into the database so
// activities and audit entries can reference them by id.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// Upsert creates the user on first login and refreshes login metadata
// afterwards. Roles are managed out of band, so an existing user's
// roles are left untouched.
func (r *UserRepository) Upsert(ctx context.Context, user *domain.User) error {
	var existing domain.User
	err := r.db.WithContext(ctx).Where("email = ?", user.Email).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.WithContext(ctx).Create(user).Error
	}
	if err != nil {
		return err
	}

	return r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{
			"display_name":  user.DisplayName,
			"last_login_at": user.LastLoginAt,
		}).Error
}
