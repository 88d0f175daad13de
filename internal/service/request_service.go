package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"pettycash/internal/apperr"
	"pettycash/internal/blob"
	"pettycash/internal/identity"
	"pettycash/internal/metrics"
	"pettycash/internal/model"
	"pettycash/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Live update event types.
const (
	EventRequestCreated       = "request.created"
	EventRequestStatusChanged = "request.status_changed"
)

// EventPublisher fans change notifications out to connected clients.
type EventPublisher interface {
	Publish(eventType, requesterID string, data interface{})
}

// ReceiptUpload is a receipt file attached to a new request.
type ReceiptUpload struct {
	Prefix      string
	Filename    string
	ContentType string
	Body        io.Reader
}

type CreateRequestInput struct {
	Amount   string
	Purpose  string
	Category string
	Receipt  *ReceiptUpload
}

type UpdateStatusInput struct {
	Status          string `json:"status" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
	ManagerComment  string `json:"manager_comment"`
}

// RequestService drives the petty-cash request lifecycle.
type RequestService interface {
	CreateRequest(ctx context.Context, sess *identity.Session, in CreateRequestInput) (*RequestResponse, error)
	UpdateRequestStatus(ctx context.Context, sess *identity.Session, requestID string, in UpdateStatusInput) (*RequestResponse, error)
	GetRequest(ctx context.Context, sess *identity.Session, requestID string) (*RequestResponse, error)
	GetAnalyticsData(ctx context.Context, sess *identity.Session, rng DateRangeInput) (AnalyticsResponse, error)
	GetPendingRequests(ctx context.Context, sess *identity.Session) ([]RequestResponse, error)
	GetMyRequests(ctx context.Context, sess *identity.Session) ([]RequestResponse, error)
	GetDisbursedRequestsForExport(ctx context.Context, sess *identity.Session, rng DateRangeInput) ([]RequestResponse, error)
}

type requestService struct {
	requests repository.RequestRepository
	audit    repository.AuditRepository
	receipts blob.Store
	events   EventPublisher
	log      *zap.Logger
	now      func() time.Time
}

func NewRequestService(
	requests repository.RequestRepository,
	audit repository.AuditRepository,
	receipts blob.Store,
	events EventPublisher,
	log *zap.Logger,
) RequestService {
	if log == nil {
		log = zap.NewNop()
	}
	return &requestService{
		requests: requests,
		audit:    audit,
		receipts: receipts,
		events:   events,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// authorize checks the session and, when action is set, that the caller's role grants it.
func authorize(sess *identity.Session, action model.Capability) error {
	if !sess.Valid() {
		return apperr.Auth("not authenticated")
	}
	if action != "" && !model.HasCapability(sess.Role, action) {
		return apperr.Forbidden("access denied: missing capability '" + string(action) + "'")
	}
	return nil
}

func (s *requestService) publish(eventType string, req *RequestResponse) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventType, req.RequesterID, req)
}

func (s *requestService) CreateRequest(ctx context.Context, sess *identity.Session, in CreateRequestInput) (*RequestResponse, error) {
	if !sess.Valid() {
		return nil, apperr.Auth("not authenticated")
	}

	rawAmount := strings.TrimSpace(in.Amount)
	purpose := strings.TrimSpace(in.Purpose)
	category := strings.TrimSpace(in.Category)
	if rawAmount == "" || purpose == "" || category == "" {
		return nil, apperr.Validation("amount, purpose, and category are required")
	}
	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		return nil, apperr.Validation("amount must be a positive number")
	}
	if !amount.Equal(amount.Truncate(2)) {
		return nil, apperr.Validation("amount must have at most 2 decimal places")
	}
	if !model.IsValidCategory(category) {
		return nil, apperr.Validation("category must be one of " + strings.Join(model.Categories, ", "))
	}
	if err := authorize(sess, model.CapSubmitRequest); err != nil {
		return nil, err
	}

	req := &model.Request{
		RequesterID: sess.UserID,
		Amount:      amount,
		Purpose:     purpose,
		Category:    category,
		Status:      model.StatusPending,
	}

	if in.Receipt != nil && in.Receipt.Body != nil {
		if s.receipts == nil {
			return nil, apperr.New(apperr.KindStorage, "receipt storage is not configured")
		}
		name := blob.ObjectName(in.Receipt.Prefix, in.Receipt.Filename, s.now())
		url, err := s.receipts.Put(ctx, name, in.Receipt.ContentType, in.Receipt.Body)
		if err != nil {
			return nil, apperr.Wrap(apperr.KindStorage, "failed to upload receipt", err)
		}
		req.ReceiptURL = &url
	}

	if err := s.requests.Create(ctx, req); err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to create request", err)
	}

	res := mapRequest(req)
	metrics.RequestCreated(req.Category)
	s.publish(EventRequestCreated, &res)
	return &res, nil
}

func (s *requestService) UpdateRequestStatus(ctx context.Context, sess *identity.Session, requestID string, in UpdateStatusInput) (*RequestResponse, error) {
	if !sess.Valid() {
		return nil, apperr.Auth("not authenticated")
	}

	status := strings.TrimSpace(in.Status)
	prior, ok := model.PriorStatus(status)
	if !ok {
		return nil, apperr.Validation("status must be approved, rejected, or disbursed")
	}
	reason := strings.TrimSpace(in.RejectionReason)
	comment := strings.TrimSpace(in.ManagerComment)
	if status == model.StatusRejected && reason == "" {
		return nil, apperr.Validation("rejection_reason is required when rejecting a request")
	}
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	required := model.CapReviewRequests
	if status == model.StatusDisbursed {
		required = model.CapDisburseRequests
	}
	if err := authorize(sess, required); err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"status":     status,
		"updated_at": s.now(),
	}
	switch status {
	case model.StatusApproved, model.StatusRejected:
		updates["manager_id"] = sess.UserID
		if reason != "" {
			updates["rejection_reason"] = reason
		}
		if comment != "" {
			updates["manager_comment"] = comment
		}
	case model.StatusDisbursed:
		updates["disbursed_by"] = sess.UserID
	}

	affected, err := s.requests.UpdateStatus(ctx, id, []string{prior}, updates)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to update request", err)
	}
	if affected == 0 {
		existing, findErr := s.requests.FindByID(ctx, id)
		if errors.Is(findErr, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("request not found")
		}
		if findErr != nil {
			return nil, apperr.Wrap(apperr.KindStore, "failed to update request", findErr)
		}
		return nil, apperr.Conflict(fmt.Sprintf("request is already %s", existing.Status))
	}

	if status == model.StatusApproved || status == model.StatusRejected {
		s.recordDecision(ctx, id, status, sess.UserID, reason, comment)
	}

	updated, err := s.requests.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load updated request", err)
	}
	res := mapRequest(updated)
	metrics.RequestTransition(status)
	s.publish(EventRequestStatusChanged, &res)
	return &res, nil
}

// recordDecision appends the audit entry for a review decision. Failures are
// logged only; the status change stands.
func (s *requestService) recordDecision(ctx context.Context, requestID uuid.UUID, action string, actor uuid.UUID, reason, comment string) {
	details := map[string]interface{}{"manager_comment": nullable(comment)}
	if action == model.ActionRejected {
		details["rejection_reason"] = reason
	}
	payload, _ := json.Marshal(details)

	entry := &model.AuditTrail{
		RequestID:   requestID,
		Action:      action,
		PerformedBy: actor,
		Details:     string(payload),
	}
	if err := s.audit.Log(ctx, entry); err != nil {
		metrics.AuditWriteFailed()
		s.log.Warn("failed to write audit trail entry",
			zap.String("request_id", requestID.String()),
			zap.String("action", action),
			zap.Error(err),
		)
	}
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func (s *requestService) GetRequest(ctx context.Context, sess *identity.Session, requestID string) (*RequestResponse, error) {
	if err := authorize(sess, model.CapViewOwnRequests); err != nil {
		return nil, err
	}
	id, err := uuid.Parse(requestID)
	if err != nil {
		return nil, apperr.Validation("invalid request id")
	}

	req, err := s.requests.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("request not found")
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load request", err)
	}

	if req.RequesterID != sess.UserID &&
		!model.HasCapability(sess.Role, model.CapReviewRequests) &&
		!model.HasCapability(sess.Role, model.CapDisburseRequests) {
		return nil, apperr.Forbidden("access denied")
	}
	res := mapRequest(req)
	return &res, nil
}

func (s *requestService) GetAnalyticsData(ctx context.Context, sess *identity.Session, in DateRangeInput) (AnalyticsResponse, error) {
	empty := AnalyticsResponse{ByCategory: []CategoryTotal{}, ByDate: []DateTotal{}}
	if err := authorize(sess, model.CapViewAnalytics); err != nil {
		return empty, err
	}
	rng, err := parseDateRange(in)
	if err != nil {
		return empty, err
	}

	rows, err := s.requests.List(ctx, repository.RequestFilter{Status: model.StatusDisbursed, Created: rng})
	if err != nil {
		return empty, apperr.Wrap(apperr.KindStore, "failed to load analytics", err)
	}
	return aggregate(rows), nil
}

// aggregate sums amounts per category and per UTC day. byDate is sorted ascending.
func aggregate(rows []model.Request) AnalyticsResponse {
	byCategory := map[string]decimal.Decimal{}
	byDate := map[string]decimal.Decimal{}

	for _, r := range rows {
		category := r.Category
		if category == "" {
			category = model.CategoryUncategorized
		}
		byCategory[category] = byCategory[category].Add(r.Amount)

		date := "unknown"
		if !r.CreatedAt.IsZero() {
			date = r.CreatedAt.UTC().Format(dateLayout)
		}
		byDate[date] = byDate[date].Add(r.Amount)
	}

	res := AnalyticsResponse{
		ByCategory: make([]CategoryTotal, 0, len(byCategory)),
		ByDate:     make([]DateTotal, 0, len(byDate)),
	}
	for name, sum := range byCategory {
		res.ByCategory = append(res.ByCategory, CategoryTotal{Name: name, Value: sum.InexactFloat64()})
	}
	for date, sum := range byDate {
		res.ByDate = append(res.ByDate, DateTotal{Date: date, Amount: sum.InexactFloat64()})
	}
	sort.Slice(res.ByCategory, func(i, j int) bool { return res.ByCategory[i].Name < res.ByCategory[j].Name })
	sort.Slice(res.ByDate, func(i, j int) bool { return res.ByDate[i].Date < res.ByDate[j].Date })
	return res
}

func (s *requestService) GetPendingRequests(ctx context.Context, sess *identity.Session) ([]RequestResponse, error) {
	if err := authorize(sess, model.CapReviewRequests); err != nil {
		return nil, err
	}
	rows, err := s.requests.List(ctx, repository.RequestFilter{Status: model.StatusPending})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load pending requests", err)
	}
	return mapRequests(rows), nil
}

func (s *requestService) GetMyRequests(ctx context.Context, sess *identity.Session) ([]RequestResponse, error) {
	if err := authorize(sess, model.CapViewOwnRequests); err != nil {
		return nil, err
	}
	rows, err := s.requests.List(ctx, repository.RequestFilter{RequesterID: &sess.UserID, WithManager: true})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load requests", err)
	}
	return mapRequests(rows), nil
}

func (s *requestService) GetDisbursedRequestsForExport(ctx context.Context, sess *identity.Session, in DateRangeInput) ([]RequestResponse, error) {
	if err := authorize(sess, model.CapExportRequests); err != nil {
		return nil, err
	}
	rng, err := parseDateRange(in)
	if err != nil {
		return nil, err
	}
	rows, err := s.requests.List(ctx, repository.RequestFilter{
		Status:      model.StatusDisbursed,
		Created:     rng,
		WithManager: true,
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.KindStore, "failed to load disbursed requests", err)
	}
	return mapRequests(rows), nil
}
