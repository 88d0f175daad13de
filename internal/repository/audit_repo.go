package repository

import (
	"context"

	"pettycash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type AuditRepository interface {
	Log(ctx context.Context, entry *model.AuditTrail) error
	ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.AuditTrail, error)
	List(ctx context.Context, offset, limit int) ([]model.AuditTrail, int64, error)
}

type auditRepository struct {
	db *gorm.DB
}

func NewAuditRepository(db *gorm.DB) AuditRepository {
	return &auditRepository{db: db}
}

func (r *auditRepository) Log(ctx context.Context, entry *model.AuditTrail) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *auditRepository) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.AuditTrail, error) {
	var entries []model.AuditTrail
	err := GetDB(ctx, r.db).
		Preload("Performer").
		Where("request_id = ?", requestID).
		Order("created_at desc").
		Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *auditRepository) List(ctx context.Context, offset, limit int) ([]model.AuditTrail, int64, error) {
	var entries []model.AuditTrail
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.AuditTrail{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Performer").Order("created_at desc").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}
