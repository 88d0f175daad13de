package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/metrics"
	"pettycash/internal/model"
	"pettycash/internal/repository"

	"go.uber.org/zap"
)

// Messages returned by the provisioning endpoint.
const (
	msgMissingAuthHeader = "Missing authorization header"
	msgUnauthorized      = "Unauthorized"
	msgAdminRequired     = "Forbidden: admin role required"
	msgFieldsRequired    = "email, password, full_name, and role are required"
	msgInvalidRole       = "role must be employee, manager, accountant, or admin"
)

type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

type CreateUserResponse struct {
	UserID     string `json:"user_id"`
	EmployeeID int    `json:"employee_id"`
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Role       string `json:"role"`
}

// SessionResolver turns a bearer token into a verified session.
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*identity.Session, error)
}

// ProvisioningService creates accounts on behalf of administrators.
type ProvisioningService interface {
	// Authorize verifies the Authorization header and requires an admin caller.
	Authorize(ctx context.Context, authHeader string) (*identity.Session, error)
	CreateUser(ctx context.Context, caller *identity.Session, req CreateUserRequest) (*CreateUserResponse, error)
	// GetNextEmployeeID previews the next employee id without reserving it.
	GetNextEmployeeID(ctx context.Context) int
}

type provisioningService struct {
	sessions  SessionResolver
	provider  identity.Provider
	allocator repository.EmployeeIDAllocator
	profiles  repository.ProfileRepository
	log       *zap.Logger
	now       func() time.Time
}

func NewProvisioningService(
	sessions SessionResolver,
	provider identity.Provider,
	allocator repository.EmployeeIDAllocator,
	profiles repository.ProfileRepository,
	log *zap.Logger,
) ProvisioningService {
	if log == nil {
		log = zap.NewNop()
	}
	return &provisioningService{
		sessions:  sessions,
		provider:  provider,
		allocator: allocator,
		profiles:  profiles,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *provisioningService) Authorize(ctx context.Context, authHeader string) (*identity.Session, error) {
	authHeader = strings.TrimSpace(authHeader)
	if authHeader == "" {
		return nil, apperr.Auth(msgMissingAuthHeader)
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	if token == "" {
		return nil, apperr.Auth(msgUnauthorized)
	}

	sess, err := s.sessions.ResolveSession(ctx, token)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindAuth, apperr.KindProvider:
			return nil, apperr.Auth(msgUnauthorized)
		default:
			s.log.Error("failed to resolve provisioning caller", zap.Error(err))
			return nil, err
		}
	}
	if !sess.Valid() {
		return nil, apperr.Auth(msgUnauthorized)
	}
	if !model.HasCapability(sess.Role, model.CapProvisionUsers) {
		return nil, apperr.Forbidden(msgAdminRequired)
	}
	return sess, nil
}

func (s *provisioningService) CreateUser(ctx context.Context, caller *identity.Session, req CreateUserRequest) (*CreateUserResponse, error) {
	if !caller.Valid() {
		return nil, apperr.Auth(msgUnauthorized)
	}
	if !model.HasCapability(caller.Role, model.CapProvisionUsers) {
		return nil, apperr.Forbidden(msgAdminRequired)
	}

	email := strings.TrimSpace(req.Email)
	fullName := strings.TrimSpace(req.FullName)
	role := strings.TrimSpace(req.Role)
	if email == "" || req.Password == "" || fullName == "" || role == "" {
		return nil, apperr.Validation(msgFieldsRequired)
	}
	if !model.IsValidRole(role) {
		return nil, apperr.Validation(msgInvalidRole)
	}

	employeeID, err := s.allocator.Allocate(ctx)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeIDsExhausted) {
			return nil, apperr.Conflict("no employee ids left to assign")
		}
		return nil, apperr.Wrap(apperr.KindStore, "failed to allocate employee id", err)
	}

	user, err := s.provider.CreateUser(ctx, identity.CreateUserParams{
		Email:        email,
		Password:     req.Password,
		EmailConfirm: true,
		UserMetadata: map[string]interface{}{"full_name": fullName},
	})
	if err != nil {
		var perr *identity.ProviderError
		if errors.As(err, &perr) {
			return nil, apperr.New(apperr.KindProvider, perr.Message)
		}
		return nil, err
	}

	profile := &model.Profile{
		ID:         user.ID,
		FullName:   fullName,
		Email:      user.Email,
		Role:       role,
		EmployeeID: &employeeID,
		UpdatedAt:  s.now(),
	}
	// The identity already exists at this point, so a profile failure is reported
	// to the operator and not to the caller.
	if err := s.profiles.Upsert(ctx, profile); err != nil {
		s.log.Error("profile update failed after identity creation",
			zap.String("user_id", user.ID.String()),
			zap.Int("employee_id", employeeID),
			zap.Error(err),
		)
	}

	metrics.UserProvisioned()
	s.log.Info("user provisioned",
		zap.String("user_id", user.ID.String()),
		zap.String("role", role),
		zap.String("by", caller.UserID.String()),
	)

	return &CreateUserResponse{
		UserID:     user.ID.String(),
		EmployeeID: employeeID,
		Email:      user.Email,
		FullName:   fullName,
		Role:       role,
	}, nil
}

func (s *provisioningService) GetNextEmployeeID(ctx context.Context) int {
	next, err := s.allocator.Peek(ctx)
	if err != nil || next == 0 {
		if err != nil {
			s.log.Warn("failed to preview next employee id", zap.Error(err))
		}
		return model.FirstEmployeeID
	}
	return next
}
