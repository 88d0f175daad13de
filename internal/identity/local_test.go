package identity

import (
	"context"
	"errors"
	"testing"
	"time"

	"pettycash/internal/repository"
	"pettycash/internal/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocal(t *testing.T) *Local {
	t.Helper()
	db := testutil.OpenTestDB(t)
	return NewLocal(repository.NewIdentityRepository(db), "local-secret", time.Hour)
}

func TestLocal_CreateSignInVerify(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	created, err := l.CreateUser(ctx, CreateUserParams{
		Email:        "  Awa@Example.com ",
		Password:     "secret1",
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"full_name": "Awa Diop"},
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)
	assert.Equal(t, "awa@example.com", created.Email)

	tok, err := l.SignIn(ctx, "awa@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.Equal(t, int64(3600), tok.ExpiresIn)

	user, err := l.VerifyToken(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, created.ID, user.ID)
	assert.Equal(t, "Awa Diop", user.UserMetadata["full_name"])
}

func TestLocal_CreateUserErrors(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	_, err := l.CreateUser(ctx, CreateUserParams{Email: "awa@example.com", Password: "123", EmailConfirm: true})
	var perr *ProviderError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Password should be at least 6 characters", perr.Message)

	_, err = l.CreateUser(ctx, CreateUserParams{Email: "not-an-email", Password: "secret1"})
	require.True(t, errors.As(err, &perr))

	_, err = l.CreateUser(ctx, CreateUserParams{Email: "awa@example.com", Password: "secret1", EmailConfirm: true})
	require.NoError(t, err)
	_, err = l.CreateUser(ctx, CreateUserParams{Email: "AWA@example.com", Password: "secret2", EmailConfirm: true})
	require.True(t, errors.As(err, &perr))
	assert.Contains(t, perr.Message, "already been registered")
}

func TestLocal_SignInAndVerifyFailures(t *testing.T) {
	l := newLocal(t)
	ctx := context.Background()

	_, err := l.CreateUser(ctx, CreateUserParams{Email: "awa@example.com", Password: "secret1", EmailConfirm: true})
	require.NoError(t, err)
	_, err = l.CreateUser(ctx, CreateUserParams{Email: "pending@example.com", Password: "secret1"})
	require.NoError(t, err)

	var perr *ProviderError
	_, err = l.SignIn(ctx, "awa@example.com", "wrong-pass")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Invalid login credentials", perr.Message)

	_, err = l.SignIn(ctx, "nobody@example.com", "secret1")
	require.True(t, errors.As(err, &perr))

	_, err = l.SignIn(ctx, "pending@example.com", "secret1")
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, "Email not confirmed", perr.Message)

	_, err = l.VerifyToken(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	stranger, err := signHS256(&User{ID: uuid.New()}, []byte("local-secret"), time.Hour, time.Now())
	require.NoError(t, err)
	_, err = l.VerifyToken(ctx, stranger)
	assert.ErrorIs(t, err, ErrInvalidToken, "token for an unknown identity")

	expired, err := signHS256(&User{ID: uuid.New()}, []byte("local-secret"), time.Minute, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	_, err = l.VerifyToken(ctx, expired)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
