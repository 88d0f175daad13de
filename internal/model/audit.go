package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Audit actions. Only review decisions are recorded.
const (
	ActionApproved = StatusApproved
	ActionRejected = StatusRejected
)

// AuditTrail is an append-only record of a review decision on a request.
type AuditTrail struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID   uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	Action      string    `gorm:"type:varchar(20);not null;index" json:"action"`
	PerformedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"performed_by"`
	Performer   *Profile  `gorm:"foreignKey:PerformedBy" json:"performer,omitempty"`
	Details     string    `gorm:"type:jsonb" json:"details"` // serialized JSON payload of the decision
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

func (AuditTrail) TableName() string { return "audit_trail" }

func (a *AuditTrail) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
