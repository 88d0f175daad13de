package service

import (
	"context"
	"errors"
	"strings"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/model"
	"pettycash/internal/repository"

	"gorm.io/gorm"
)

type LoginUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// UserService resolves callers and serves their own profile.
type UserService interface {
	ResolveSession(ctx context.Context, token string) (*identity.Session, error)
	Login(ctx context.Context, req LoginUserRequest) (*identity.Token, error)
	GetProfile(ctx context.Context, sess *identity.Session) (*ProfileResponse, error)
}

type userService struct {
	provider identity.Provider
	profiles repository.ProfileRepository
}

// NewUserService returns a new instance of UserService
func NewUserService(provider identity.Provider, profiles repository.ProfileRepository) UserService {
	return &userService{provider: provider, profiles: profiles}
}

// ResolveSession verifies token and attaches the caller's profile role. An identity
// without a profile gets a session with an empty role.
func (s *userService) ResolveSession(ctx context.Context, token string) (*identity.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Auth("missing token")
	}

	user, err := s.provider.VerifyToken(ctx, token)
	if err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			return nil, apperr.Wrap(apperr.KindAuth, "invalid token", err)
		}
		return nil, apperr.Wrap(apperr.KindProvider, "failed to verify token", err)
	}

	sess := &identity.Session{UserID: user.ID, Email: user.Email, Token: token}
	profile, err := s.profiles.FindByID(ctx, user.ID)
	switch {
	case err == nil:
		sess.Role = profile.Role
	case errors.Is(err, gorm.ErrRecordNotFound):
	default:
		return nil, apperr.Wrap(apperr.KindStore, "failed to load profile", err)
	}
	return sess, nil
}

func (s *userService) Login(ctx context.Context, req LoginUserRequest) (*identity.Token, error) {
	auth, ok := s.provider.(identity.PasswordAuthenticator)
	if !ok {
		return nil, apperr.NotFound("password login is not enabled")
	}

	token, err := auth.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) {
			return nil, apperr.Auth(perr.Message)
		}
		return nil, err
	}
	return token, nil
}

func (s *userService) GetProfile(ctx context.Context, sess *identity.Session) (*ProfileResponse, error) {
	if !sess.Valid() {
		return nil, apperr.Auth("not authenticated")
	}

	profile, err := s.profiles.FindByID(ctx, sess.UserID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("profile not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load profile", err)
	}

	email := profile.Email
	if email == "" {
		email = sess.Email
	}
	return &ProfileResponse{
		ID:           profile.ID.String(),
		FullName:     profile.FullName,
		Email:        email,
		Role:         profile.Role,
		EmployeeID:   profile.EmployeeID,
		Capabilities: model.CapabilitiesOf(profile.Role),
	}, nil
}
