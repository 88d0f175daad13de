package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Identity is a login account managed by the built-in identity provider.
// It is unused when identities live in an external provider.
type Identity struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email            string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	PasswordHash     string     `gorm:"type:varchar(255);not null" json:"-"`
	EmailConfirmedAt *time.Time `json:"email_confirmed_at"`
	UserMetadata     string     `gorm:"type:jsonb" json:"user_metadata"`
	CreatedAt        time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (i *Identity) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// EmployeeIDSequence holds the last employee id handed out. Allocation locks its row.
type EmployeeIDSequence struct {
	Name      string    `gorm:"type:varchar(50);primaryKey" json:"name"`
	LastValue int       `gorm:"not null;default:0" json:"last_value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EmployeeIDSequenceName keys the single sequence row.
const EmployeeIDSequenceName = "employee_id"
