package repository

import (
	"context"
	"time"

	"pettycash/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TimeRange bounds created_at. From is inclusive. To is inclusive unless ToExclusive is set.
type TimeRange struct {
	From        *time.Time
	To          *time.Time
	ToExclusive bool
}

// RequestFilter narrows a request listing. Zero fields are ignored.
type RequestFilter struct {
	Status      string
	RequesterID *uuid.UUID
	Created     TimeRange
	WithManager bool
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error)
	// UpdateStatus applies updates only while the row holds one of fromStatuses.
	// It returns the number of rows changed.
	UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (int64, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Request, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Preload("Requester").
		Preload("Manager").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) UpdateStatus(ctx context.Context, id uuid.UUID, fromStatuses []string, updates map[string]interface{}) (int64, error) {
	res := GetDB(ctx, r.db).
		Model(&model.Request{}).
		Where("id = ? AND status IN ?", id, fromStatuses).
		Updates(updates)
	return res.RowsAffected, res.Error
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.Request, error) {
	query := GetDB(ctx, r.db).Preload("Requester")
	if filter.WithManager {
		query = query.Preload("Manager")
	}

	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.RequesterID != nil {
		query = query.Where("requester_id = ?", *filter.RequesterID)
	}
	if filter.Created.From != nil {
		query = query.Where("created_at >= ?", *filter.Created.From)
	}
	if filter.Created.To != nil {
		if filter.Created.ToExclusive {
			query = query.Where("created_at < ?", *filter.Created.To)
		} else {
			query = query.Where("created_at <= ?", *filter.Created.To)
		}
	}

	var requests []model.Request
	if err := query.Order("created_at DESC").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}
