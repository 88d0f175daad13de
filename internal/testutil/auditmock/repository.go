package auditmock

import (
	"context"
	"errors"

	"pettycash/internal/model"

	"github.com/google/uuid"
)

var errUnimplemented = errors.New("auditmock: not implemented")

// Repo is a function-backed mock that satisfies repository.AuditRepository.
type Repo struct {
	LogFn           func(ctx context.Context, entry *model.AuditTrail) error
	ListByRequestFn func(ctx context.Context, requestID uuid.UUID) ([]model.AuditTrail, error)
	ListFn          func(ctx context.Context, offset, limit int) ([]model.AuditTrail, int64, error)
}

func (m *Repo) Log(ctx context.Context, entry *model.AuditTrail) error {
	if m.LogFn != nil {
		return m.LogFn(ctx, entry)
	}
	return nil
}

func (m *Repo) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]model.AuditTrail, error) {
	if m.ListByRequestFn != nil {
		return m.ListByRequestFn(ctx, requestID)
	}
	return nil, errUnimplemented
}

func (m *Repo) List(ctx context.Context, offset, limit int) ([]model.AuditTrail, int64, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, offset, limit)
	}
	return nil, 0, errUnimplemented
}
