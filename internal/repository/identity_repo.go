package repository

import (
	"context"
	"strings"

	"pettycash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// IdentityRepository stores accounts for the built-in identity provider.
type IdentityRepository interface {
	Create(ctx context.Context, identity *model.Identity) error
	FindByEmail(ctx context.Context, email string) (*model.Identity, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Identity, error)
}

type identityRepository struct {
	db *gorm.DB
}

func NewIdentityRepository(db *gorm.DB) IdentityRepository {
	return &identityRepository{db: db}
}

func (r *identityRepository) Create(ctx context.Context, identity *model.Identity) error {
	identity.Email = strings.ToLower(strings.TrimSpace(identity.Email))
	return GetDB(ctx, r.db).Create(identity).Error
}

func (r *identityRepository) FindByEmail(ctx context.Context, email string) (*model.Identity, error) {
	var identity model.Identity
	err := GetDB(ctx, r.db).First(&identity, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		return nil, err
	}
	return &identity, nil
}

func (r *identityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Identity, error) {
	var identity model.Identity
	if err := GetDB(ctx, r.db).First(&identity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &identity, nil
}
