package handler

import (
	"context"

	"pettycash/internal/apperr"
	"pettycash/internal/identity"
	"pettycash/internal/service"
)

type fakeRequestService struct {
	createFn  func(ctx context.Context, sess *identity.Session, in service.CreateRequestInput) (*service.RequestResponse, error)
	updateFn  func(ctx context.Context, sess *identity.Session, id string, in service.UpdateStatusInput) (*service.RequestResponse, error)
	getFn     func(ctx context.Context, sess *identity.Session, id string) (*service.RequestResponse, error)
	analytics func(ctx context.Context, sess *identity.Session, rng service.DateRangeInput) (service.AnalyticsResponse, error)
	pendingFn func(ctx context.Context, sess *identity.Session) ([]service.RequestResponse, error)
	mineFn    func(ctx context.Context, sess *identity.Session) ([]service.RequestResponse, error)
	exportFn  func(ctx context.Context, sess *identity.Session, rng service.DateRangeInput) ([]service.RequestResponse, error)
}

var errNotStubbed = apperr.New(apperr.KindInternal, "not stubbed")

func (f *fakeRequestService) CreateRequest(ctx context.Context, sess *identity.Session, in service.CreateRequestInput) (*service.RequestResponse, error) {
	if f.createFn == nil {
		return nil, errNotStubbed
	}
	return f.createFn(ctx, sess, in)
}

func (f *fakeRequestService) UpdateRequestStatus(ctx context.Context, sess *identity.Session, id string, in service.UpdateStatusInput) (*service.RequestResponse, error) {
	if f.updateFn == nil {
		return nil, errNotStubbed
	}
	return f.updateFn(ctx, sess, id, in)
}

func (f *fakeRequestService) GetRequest(ctx context.Context, sess *identity.Session, id string) (*service.RequestResponse, error) {
	if f.getFn == nil {
		return nil, errNotStubbed
	}
	return f.getFn(ctx, sess, id)
}

func (f *fakeRequestService) GetAnalyticsData(ctx context.Context, sess *identity.Session, rng service.DateRangeInput) (service.AnalyticsResponse, error) {
	if f.analytics == nil {
		return service.AnalyticsResponse{}, errNotStubbed
	}
	return f.analytics(ctx, sess, rng)
}

func (f *fakeRequestService) GetPendingRequests(ctx context.Context, sess *identity.Session) ([]service.RequestResponse, error) {
	if f.pendingFn == nil {
		return nil, errNotStubbed
	}
	return f.pendingFn(ctx, sess)
}

func (f *fakeRequestService) GetMyRequests(ctx context.Context, sess *identity.Session) ([]service.RequestResponse, error) {
	if f.mineFn == nil {
		return nil, errNotStubbed
	}
	return f.mineFn(ctx, sess)
}

func (f *fakeRequestService) GetDisbursedRequestsForExport(ctx context.Context, sess *identity.Session, rng service.DateRangeInput) ([]service.RequestResponse, error) {
	if f.exportFn == nil {
		return nil, errNotStubbed
	}
	return f.exportFn(ctx, sess, rng)
}

type fakeAuditService struct {
	forRequestFn func(ctx context.Context, sess *identity.Session, id string) ([]service.AuditEntryResponse, error)
	listFn       func(ctx context.Context, sess *identity.Session, page, limit int) ([]service.AuditEntryResponse, int64, error)
}

func (f *fakeAuditService) ListForRequest(ctx context.Context, sess *identity.Session, id string) ([]service.AuditEntryResponse, error) {
	if f.forRequestFn == nil {
		return nil, errNotStubbed
	}
	return f.forRequestFn(ctx, sess, id)
}

func (f *fakeAuditService) List(ctx context.Context, sess *identity.Session, page, limit int) ([]service.AuditEntryResponse, int64, error) {
	if f.listFn == nil {
		return nil, 0, errNotStubbed
	}
	return f.listFn(ctx, sess, page, limit)
}

// fakeUserService resolves sessions from a fixed token table.
type fakeUserService struct {
	sessions  map[string]*identity.Session
	loginFn   func(ctx context.Context, req service.LoginUserRequest) (*identity.Token, error)
	profileFn func(ctx context.Context, sess *identity.Session) (*service.ProfileResponse, error)
}

func (f *fakeUserService) ResolveSession(_ context.Context, token string) (*identity.Session, error) {
	if sess, ok := f.sessions[token]; ok {
		return sess, nil
	}
	return nil, apperr.Auth("invalid token")
}

func (f *fakeUserService) Login(ctx context.Context, req service.LoginUserRequest) (*identity.Token, error) {
	if f.loginFn == nil {
		return nil, errNotStubbed
	}
	return f.loginFn(ctx, req)
}

func (f *fakeUserService) GetProfile(ctx context.Context, sess *identity.Session) (*service.ProfileResponse, error) {
	if f.profileFn == nil {
		return nil, errNotStubbed
	}
	return f.profileFn(ctx, sess)
}

type fakeProvisioningService struct {
	authorizeFn func(ctx context.Context, header string) (*identity.Session, error)
	createFn    func(ctx context.Context, caller *identity.Session, req service.CreateUserRequest) (*service.CreateUserResponse, error)
	next        int
}

func (f *fakeProvisioningService) Authorize(ctx context.Context, header string) (*identity.Session, error) {
	if f.authorizeFn == nil {
		return nil, errNotStubbed
	}
	return f.authorizeFn(ctx, header)
}

func (f *fakeProvisioningService) CreateUser(ctx context.Context, caller *identity.Session, req service.CreateUserRequest) (*service.CreateUserResponse, error) {
	if f.createFn == nil {
		return nil, errNotStubbed
	}
	return f.createFn(ctx, caller, req)
}

func (f *fakeProvisioningService) GetNextEmployeeID(context.Context) int { return f.next }
