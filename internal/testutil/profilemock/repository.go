package profilemock

import (
	"context"
	"errors"

	"pettycash/internal/model"

	"github.com/google/uuid"
)

var errUnimplemented = errors.New("profilemock: not implemented")

// Repo is a function-backed mock that satisfies repository.ProfileRepository.
type Repo struct {
	FindByIDFn      func(ctx context.Context, id uuid.UUID) (*model.Profile, error)
	UpsertFn        func(ctx context.Context, profile *model.Profile) error
	MaxEmployeeIDFn func(ctx context.Context) (*int, error)
}

func (m *Repo) FindByID(ctx context.Context, id uuid.UUID) (*model.Profile, error) {
	if m.FindByIDFn != nil {
		return m.FindByIDFn(ctx, id)
	}
	return nil, errUnimplemented
}

func (m *Repo) Upsert(ctx context.Context, profile *model.Profile) error {
	if m.UpsertFn != nil {
		return m.UpsertFn(ctx, profile)
	}
	return nil
}

func (m *Repo) MaxEmployeeID(ctx context.Context) (*int, error) {
	if m.MaxEmployeeIDFn != nil {
		return m.MaxEmployeeIDFn(ctx)
	}
	return nil, nil
}
