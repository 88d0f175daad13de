package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pettycash/internal/model"
	"pettycash/internal/repository"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// MinPasswordLength matches the rule enforced by Supabase auth.
const MinPasswordLength = 6

// Local keeps accounts in the service database and signs its own tokens.
type Local struct {
	identities repository.IdentityRepository
	secret     []byte
	ttl        time.Duration
	now        func() time.Time
}

func NewLocal(identities repository.IdentityRepository, secret string, ttl time.Duration) *Local {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Local{
		identities: identities,
		secret:     []byte(secret),
		ttl:        ttl,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (l *Local) VerifyToken(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}
	claimed, err := parseHS256(token, l.secret)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	stored, err := l.identities.FindByID(ctx, claimed.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	return toUser(stored), nil
}

func (l *Local) CreateUser(ctx context.Context, params CreateUserParams) (*User, error) {
	email := strings.ToLower(strings.TrimSpace(params.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, &ProviderError{Message: "Unable to validate email address: invalid format"}
	}
	if len(params.Password) < MinPasswordLength {
		return nil, &ProviderError{Message: fmt.Sprintf("Password should be at least %d characters", MinPasswordLength)}
	}

	if _, err := l.identities.FindByEmail(ctx, email); err == nil {
		return nil, &ProviderError{Message: "A user with this email address has already been registered"}
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(params.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	metadata := params.UserMetadata
	if metadata == nil {
		metadata = map[string]interface{}{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to encode user metadata: %w", err)
	}

	record := &model.Identity{
		Email:        email,
		PasswordHash: string(hashed),
		UserMetadata: string(metaJSON),
	}
	if params.EmailConfirm {
		now := l.now()
		record.EmailConfirmedAt = &now
	}

	if err := l.identities.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create identity: %w", err)
	}
	return toUser(record), nil
}

// SignIn checks the password and issues an access token.
func (l *Local) SignIn(ctx context.Context, email, password string) (*Token, error) {
	stored, err := l.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &ProviderError{Message: "Invalid login credentials"}
		}
		return nil, fmt.Errorf("failed to load identity: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte(password)); err != nil {
		return nil, &ProviderError{Message: "Invalid login credentials"}
	}
	if stored.EmailConfirmedAt == nil {
		return nil, &ProviderError{Message: "Email not confirmed"}
	}

	user := toUser(stored)
	access, err := signHS256(user, l.secret, l.ttl, l.now())
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}
	return &Token{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresIn:   int64(l.ttl.Seconds()),
		User:        user,
	}, nil
}

func toUser(i *model.Identity) *User {
	u := &User{ID: i.ID, Email: i.Email}
	if i.UserMetadata != "" {
		_ = json.Unmarshal([]byte(i.UserMetadata), &u.UserMetadata)
	}
	return u
}
