package service

import (
	"context"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/model"
	"pettycash/internal/repository"
	"pettycash/pkg/pagination"

	"github.com/google/uuid"
)

type AuditService interface {
	ListForRequest(ctx context.Context, sess *identity.Session, requestID string) ([]AuditEntryResponse, error)
	List(ctx context.Context, sess *identity.Session, page, limit int) ([]AuditEntryResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

// NewAuditService creates a new AuditService instance
func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) ListForRequest(ctx context.Context, sess *identity.Session, requestID string) ([]AuditEntryResponse, error) {
	if err := authorize(sess, model.CapViewAuditTrail); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	entries, err := s.repo.ListByRequest(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load audit trail", err)
	}
	return mapAuditEntries(entries), nil
}

// List returns one page of the audit trail, newest first.
func (s *auditService) List(ctx context.Context, sess *identity.Session, page, limit int) ([]AuditEntryResponse, int64, error) {
	if err := authorize(sess, model.CapViewAuditTrail); err != nil {
		return nil, 0, err
	}
	p := pagination.Normalize(page, limit)

	entries, total, err := s.repo.List(ctx, p.Offset, p.Limit)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindStore, "failed to load audit trail", err)
	}
	return mapAuditEntries(entries), total, nil
}

func mapAuditEntries(entries []model.AuditTrail) []AuditEntryResponse {
	res := make([]AuditEntryResponse, 0, len(entries))
	for i := range entries {
		res = append(res, mapAuditEntry(&entries[i]))
	}
	return res
}
