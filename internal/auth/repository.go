package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"engracedsmile/internal/users"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists accounts. Emails are stored and matched lower-cased.
type Repository interface {
	Create(ctx context.Context, user *users.User) error
	FindByEmail(ctx context.Context, email string) (*users.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*users.User, error)
	SetPassword(ctx context.Context, id uuid.UUID, hash string) error
	UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) (*users.User, error)
}

type repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Create relies on the unique email index; a duplicate surfaces as
// ErrUserAlreadyExists without a separate existence query
func (r *repository) Create(ctx context.Context, user *users.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	err := r.db.WithContext(ctx).Create(user).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrUserAlreadyExists
	}
	return err
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *repository) first(query *gorm.DB) (*users.User, error) {
	var user users.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return &user, nil
}

func (r *repository) SetPassword(ctx context.Context, id uuid.UUID, hash string) error {
	result := r.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Update("password", hash)
	if result.Error != nil {
		return fmt.Errorf("failed to update password: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, phone string) (*users.User, error) {
	updates := map[string]interface{}{}
	if fullName != "" {
		updates["full_name"] = fullName
	}
	if phone != "" {
		updates["phone"] = phone
	}
	if len(updates) > 0 {
		result := r.db.WithContext(ctx).Model(&users.User{}).Where("id = ?", id).Updates(updates)
		if result.Error != nil {
			return nil, fmt.Errorf("failed to update profile: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}
	return r.FindByID(ctx, id)
}
