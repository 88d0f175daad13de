// Package identity verifies bearer tokens and manages login accounts.
package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a bearer token cannot be verified.
var ErrInvalidToken = errors.New("invalid token")

// Session is the verified caller passed explicitly into every service call.
type Session struct {
	UserID uuid.UUID
	Email  string
	Role   string // profile role, empty when the identity has no profile yet
	Token  string
}

// Valid reports whether s identifies a caller.
func (s *Session) Valid() bool {
	return s != nil && s.UserID != uuid.Nil
}

// User is an account as seen by the identity provider.
type User struct {
	ID           uuid.UUID              `json:"id"`
	Email        string                 `json:"email"`
	UserMetadata map[string]interface{} `json:"user_metadata,omitempty"`
}

// CreateUserParams describes a new, already confirmed, account.
type CreateUserParams struct {
	Email        string
	Password     string
	EmailConfirm bool
	UserMetadata map[string]interface{}
}

// Provider is the identity backend.
type Provider interface {
	VerifyToken(ctx context.Context, token string) (*User, error)
	CreateUser(ctx context.Context, params CreateUserParams) (*User, error)
}

// PasswordAuthenticator is implemented by providers that issue their own tokens.
type PasswordAuthenticator interface {
	SignIn(ctx context.Context, email, password string) (*Token, error)
}

// Token is an issued access token.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
	User        *User  `json:"user"`
}

// ProviderError carries a message reported by the identity backend.
type ProviderError struct {
	StatusCode int
	Message    string
}

func (e *ProviderError) Error() string {
	if e.StatusCode == 0 {
		return e.Message
	}
	return fmt.Sprintf("identity provider (%d): %s", e.StatusCode, e.Message)
}
