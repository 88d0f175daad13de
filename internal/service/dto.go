package service

import (
	"time"

	"pettycash/internal/model"
)

const timeLayout = time.RFC3339

// ProfileSummary is the part of a profile joined onto a request.
type ProfileSummary struct {
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// RequestResponse is a petty-cash request as returned to callers.
type RequestResponse struct {
	ID              string          `json:"id"`
	RequesterID     string          `json:"requester_id"`
	Amount          float64         `json:"amount"`
	Purpose         string          `json:"purpose"`
	Category        string          `json:"category"`
	ReceiptURL      *string         `json:"receipt_url"`
	Status          string          `json:"status"`
	ManagerID       *string         `json:"manager_id"`
	DisbursedBy     *string         `json:"disbursed_by"`
	RejectionReason *string         `json:"rejection_reason"`
	ManagerComment  *string         `json:"manager_comment"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
	Requester       *ProfileSummary `json:"requester,omitempty"`
	Manager         *ProfileSummary `json:"manager,omitempty"`
}

func mapRequest(r *model.Request) RequestResponse {
	res := RequestResponse{
		ID:              r.ID.String(),
		RequesterID:     r.RequesterID.String(),
		Amount:          r.Amount.InexactFloat64(),
		Purpose:         r.Purpose,
		Category:        r.Category,
		ReceiptURL:      r.ReceiptURL,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		ManagerComment:  r.ManagerComment,
		CreatedAt:       r.CreatedAt.UTC().Format(timeLayout),
		UpdatedAt:       r.UpdatedAt.UTC().Format(timeLayout),
	}
	if r.ManagerID != nil {
		id := r.ManagerID.String()
		res.ManagerID = &id
	}
	if r.DisbursedBy != nil {
		id := r.DisbursedBy.String()
		res.DisbursedBy = &id
	}
	if r.Requester != nil {
		res.Requester = &ProfileSummary{FullName: r.Requester.FullName, Role: r.Requester.Role}
	}
	if r.Manager != nil {
		res.Manager = &ProfileSummary{FullName: r.Manager.FullName, Role: r.Manager.Role}
	}
	return res
}

func mapRequests(rows []model.Request) []RequestResponse {
	res := make([]RequestResponse, 0, len(rows))
	for i := range rows {
		res = append(res, mapRequest(&rows[i]))
	}
	return res
}

// CategoryTotal is one byCategory analytics bucket.
type CategoryTotal struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// DateTotal is one byDate analytics bucket.
type DateTotal struct {
	Date   string  `json:"date"`
	Amount float64 `json:"amount"`
}

type AnalyticsResponse struct {
	ByCategory []CategoryTotal `json:"byCategory"`
	ByDate     []DateTotal     `json:"byDate"`
}

// ProfileResponse describes the calling user.
type ProfileResponse struct {
	ID           string             `json:"id"`
	FullName     string             `json:"full_name"`
	Email        string             `json:"email"`
	Role         string             `json:"role"`
	EmployeeID   *int               `json:"employee_id"`
	Capabilities []model.Capability `json:"capabilities"`
}

// AuditEntryResponse is one audit trail row.
type AuditEntryResponse struct {
	ID            string `json:"id"`
	RequestID     string `json:"request_id"`
	Action        string `json:"action"`
	PerformedBy   string `json:"performed_by"`
	PerformerName string `json:"performer_name"`
	Details       string `json:"details"`
	CreatedAt     string `json:"created_at"`
}

func mapAuditEntry(a *model.AuditTrail) AuditEntryResponse {
	name := ""
	if a.Performer != nil {
		name = a.Performer.FullName
	}
	return AuditEntryResponse{
		ID:            a.ID.String(),
		RequestID:     a.RequestID.String(),
		Action:        a.Action,
		PerformedBy:   a.PerformedBy.String(),
		PerformerName: name,
		Details:       a.Details,
		CreatedAt:     a.CreatedAt.UTC().Format(timeLayout),
	}
}
