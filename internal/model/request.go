package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Request statuses.
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusDisbursed = "disbursed"
)

// Expense categories.
const (
	CategoryOffice        = "Office"
	CategoryTravel        = "Travel"
	CategoryFood          = "Food"
	CategorySupplies      = "Supplies"
	CategoryUtilities     = "Utilities"
	CategoryMiscellaneous = "Miscellaneous"

	// CategoryUncategorized labels analytics rows that carry no category.
	CategoryUncategorized = "Uncategorized"
)

var Categories = []string{
	CategoryOffice,
	CategoryTravel,
	CategoryFood,
	CategorySupplies,
	CategoryUtilities,
	CategoryMiscellaneous,
}

func IsValidCategory(category string) bool {
	for _, c := range Categories {
		if c == category {
			return true
		}
	}
	return false
}

// PriorStatus returns the status a request must currently hold to move to next.
func PriorStatus(next string) (string, bool) {
	switch next {
	case StatusApproved, StatusRejected:
		return StatusPending, true
	case StatusDisbursed:
		return StatusApproved, true
	default:
		return "", false
	}
}

// Request is a petty-cash claim. Amounts are in FCFA.
type Request struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RequesterID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"requester_id"`
	Requester       *Profile        `gorm:"foreignKey:RequesterID" json:"requester,omitempty"`
	Amount          decimal.Decimal `gorm:"type:decimal(15,2);not null" json:"amount"`
	Purpose         string          `gorm:"type:text;not null" json:"purpose"`
	Category        string          `gorm:"type:varchar(30);index" json:"category"`
	ReceiptURL      *string         `gorm:"type:text" json:"receipt_url"`
	Status          string          `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	ManagerID       *uuid.UUID      `gorm:"type:uuid;index" json:"manager_id"`
	Manager         *Profile        `gorm:"foreignKey:ManagerID" json:"manager,omitempty"`
	DisbursedBy     *uuid.UUID      `gorm:"type:uuid" json:"disbursed_by"`
	RejectionReason *string         `gorm:"type:text" json:"rejection_reason"`
	ManagerComment  *string         `gorm:"type:text" json:"manager_comment"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
