package identitymock

import (
	"context"
	"sync"

	"pettycash/internal/identity"

	"github.com/google/uuid"
)

// Provider is a function-backed identity.Provider. With no functions set it
// accepts tokens listed in Tokens and creates users with fresh ids.
type Provider struct {
	VerifyTokenFn func(ctx context.Context, token string) (*identity.User, error)
	CreateUserFn  func(ctx context.Context, params identity.CreateUserParams) (*identity.User, error)

	mu      sync.Mutex
	Tokens  map[string]*identity.User
	Created []identity.CreateUserParams
}

// WithToken registers token as valid for user and returns m.
func (m *Provider) WithToken(token string, user *identity.User) *Provider {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Tokens == nil {
		m.Tokens = map[string]*identity.User{}
	}
	m.Tokens[token] = user
	return m
}

func (m *Provider) VerifyToken(ctx context.Context, token string) (*identity.User, error) {
	if m.VerifyTokenFn != nil {
		return m.VerifyTokenFn(ctx, token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.Tokens[token]; ok {
		return u, nil
	}
	return nil, identity.ErrInvalidToken
}

func (m *Provider) CreateUser(ctx context.Context, params identity.CreateUserParams) (*identity.User, error) {
	m.mu.Lock()
	m.Created = append(m.Created, params)
	m.mu.Unlock()
	if m.CreateUserFn != nil {
		return m.CreateUserFn(ctx, params)
	}
	return &identity.User{ID: uuid.New(), Email: params.Email, UserMetadata: params.UserMetadata}, nil
}

// CreatedCount returns how many CreateUser calls were made.
func (m *Provider) CreatedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Created)
}
