package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/model"
	"pettycash/internal/repository"
	"pettycash/internal/testutil"
	"pettycash/internal/testutil/identitymock"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserService_ResolveSession(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	employeeID := 10042
	manager := model.Profile{ID: uuid.New(), FullName: "Fatou Sarr", Role: model.RoleManager, EmployeeID: &employeeID}
	require.NoError(t, db.Create(&manager).Error)

	provider := (&identitymock.Provider{}).
		WithToken("mgr", &identity.User{ID: manager.ID, Email: "fatou@example.com"}).
		WithToken("new", &identity.User{ID: uuid.New(), Email: "new@example.com"})
	svc := NewUserService(provider, repository.NewProfileRepository(db))

	sess, err := svc.ResolveSession(ctx, "mgr")
	require.NoError(t, err)
	assert.Equal(t, manager.ID, sess.UserID)
	assert.Equal(t, model.RoleManager, sess.Role)
	assert.Equal(t, "fatou@example.com", sess.Email)
	assert.Equal(t, "mgr", sess.Token)

	sess, err = svc.ResolveSession(ctx, "new")
	require.NoError(t, err)
	assert.Empty(t, sess.Role, "identities without a profile carry no role")

	_, err = svc.ResolveSession(ctx, "nope")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	_, err = svc.ResolveSession(ctx, "  ")
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))

	provider.VerifyTokenFn = func(context.Context, string) (*identity.User, error) {
		return nil, errors.New("gotrue unreachable")
	}
	_, err = svc.ResolveSession(ctx, "mgr")
	assert.Equal(t, apperr.KindProvider, apperr.KindOf(err))
}

func TestUserService_GetProfile(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	employeeID := 10007
	p := model.Profile{ID: uuid.New(), FullName: "Ibrahima Fall", Role: model.RoleAccountant, EmployeeID: &employeeID}
	require.NoError(t, db.Create(&p).Error)

	svc := NewUserService(&identitymock.Provider{}, repository.NewProfileRepository(db))

	res, err := svc.GetProfile(ctx, &identity.Session{UserID: p.ID, Email: "ibrahima@example.com", Role: p.Role})
	require.NoError(t, err)
	assert.Equal(t, "Ibrahima Fall", res.FullName)
	assert.Equal(t, "ibrahima@example.com", res.Email)
	assert.Equal(t, model.RoleAccountant, res.Role)
	require.NotNil(t, res.EmployeeID)
	assert.Equal(t, 10007, *res.EmployeeID)
	assert.Contains(t, res.Capabilities, model.CapDisburseRequests)
	assert.NotContains(t, res.Capabilities, model.CapReviewRequests)

	_, err = svc.GetProfile(ctx, &identity.Session{UserID: uuid.New()})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.GetProfile(ctx, nil)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
}

func TestUserService_Login(t *testing.T) {
	db := testutil.OpenTestDB(t)
	ctx := context.Background()
	local := identity.NewLocal(repository.NewIdentityRepository(db), "test-secret", time.Hour)
	svc := NewUserService(local, repository.NewProfileRepository(db))

	user, err := local.CreateUser(ctx, identity.CreateUserParams{Email: "awa@example.com", Password: "s3cret!", EmailConfirm: true})
	require.NoError(t, err)
	require.NoError(t, db.Create(&model.Profile{ID: user.ID, FullName: "Awa", Role: model.RoleEmployee}).Error)

	token, err := svc.Login(ctx, LoginUserRequest{Email: "awa@example.com", Password: "s3cret!"})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)

	sess, err := svc.ResolveSession(ctx, token.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, sess.UserID)
	assert.Equal(t, model.RoleEmployee, sess.Role)

	_, err = svc.Login(ctx, LoginUserRequest{Email: "awa@example.com", Password: "wrong"})
	require.Error(t, err)
	assert.Equal(t, apperr.KindAuth, apperr.KindOf(err))
	assert.Equal(t, "Invalid login credentials", apperr.PublicMessage(err))

	remote := NewUserService(&identitymock.Provider{}, repository.NewProfileRepository(db))
	_, err = remote.Login(ctx, LoginUserRequest{Email: "awa@example.com", Password: "s3cret!"})
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}
