package repository

import (
	"context"
	"database/sql"

	"pettycash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ProfileRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	// Upsert inserts the profile or overwrites the provisioning columns of an existing one.
	Upsert(ctx context.Context, profile *model.Profile) error
	MaxEmployeeID(ctx context.Context) (*int, error)
}

type profileRepository struct {
	db *gorm.DB
}

func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	var profile model.Profile
	if err := GetDB(ctx, r.db).First(&profile, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *profileRepository) Upsert(ctx context.Context, profile *model.Profile) error {
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"full_name", "email", "role", "employee_id", "updated_at"}),
	}).Create(profile).Error
}

func (r *profileRepository) MaxEmployeeID(ctx context.Context) (*int, error) {
	var max sql.NullInt64
	err := GetDB(ctx, r.db).
		Model(&model.Profile{}).
		Select("MAX(employee_id)").
		Where("employee_id IS NOT NULL").
		Row().
		Scan(&max)
	if err != nil {
		return nil, err
	}
	if !max.Valid {
		return nil, nil
	}
	v := int(max.Int64)
	return &v, nil
}
