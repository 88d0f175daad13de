package model

import (
	"time"

	"github.com/google/uuid"
)

// Role values stored on a profile.
const (
	RoleEmployee   = "employee"
	RoleManager    = "manager"
	RoleAccountant = "accountant"
	RoleAdmin      = "admin"
)

// Roles lists every assignable role in display order.
var Roles = []string{RoleEmployee, RoleManager, RoleAccountant, RoleAdmin}

func IsValidRole(role string) bool {
	for _, r := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Employee ID range handed out by provisioning.
const (
	FirstEmployeeID = 10000
	LastEmployeeID  = 99999
)

// NextEmployeeID returns the id that follows max, capped at LastEmployeeID.
// A nil max means no id has been assigned yet.
func NextEmployeeID(max *int) int {
	if max == nil {
		return FirstEmployeeID
	}
	if *max+1 > LastEmployeeID {
		return LastEmployeeID
	}
	return *max + 1
}

// Profile is the application record attached 1:1 to an identity.
type Profile struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"` // identity id, owned by the identity provider
	FullName   string    `gorm:"type:varchar(255);not null;default:''" json:"full_name"`
	Email      string    `gorm:"type:varchar(255);index" json:"email"`
	Role       string    `gorm:"type:varchar(20);not null;default:'employee';index" json:"role"`
	EmployeeID *int      `gorm:"uniqueIndex" json:"employee_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
