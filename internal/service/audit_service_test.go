package service

import (
	"context"
	"testing"

	"pettycash/internal/apperr"
	"pettycash/internal/model"
	"pettycash/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditService(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()
	svc := NewAuditService(repository.NewAuditRepository(f.db))

	first := f.create(t, f.employee)
	second := f.create(t, f.colleague)
	_, err := f.svc.UpdateRequestStatus(ctx, f.manager, first.ID, UpdateStatusInput{Status: model.StatusApproved})
	require.NoError(t, err)
	_, err = f.svc.UpdateRequestStatus(ctx, f.manager, second.ID, UpdateStatusInput{Status: model.StatusRejected, RejectionReason: "duplicate"})
	require.NoError(t, err)

	entries, err := svc.ListForRequest(ctx, f.accountant, first.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.ActionApproved, entries[0].Action)
	assert.Equal(t, "Fatou Sarr", entries[0].PerformerName)
	assert.Equal(t, f.manager.UserID.String(), entries[0].PerformedBy)

	page, total, err := svc.List(ctx, f.manager, 1, 1)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, page, 1)

	page, _, err = svc.List(ctx, f.manager, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page, 2)

	_, err = svc.ListForRequest(ctx, f.employee, first.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
	_, _, err = svc.List(ctx, f.employee, 1, 20)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = svc.ListForRequest(ctx, f.manager, "bad-id")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	none, err := svc.ListForRequest(ctx, f.manager, uuid.NewString())
	require.NoError(t, err)
	assert.Empty(t, none)
}
