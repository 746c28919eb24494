package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role is the access level of a user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User represents an authenticated admin or hotel customer.
type User struct {
	ID            uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string         `json:"name" gorm:"size:255;not null"`
	Email         string         `json:"email" gorm:"uniqueIndex;size:255;not null"`
	Phone         string         `json:"phone,omitempty" gorm:"size:32"`
	PasswordHash  string         `json:"-" gorm:"size:255;not null"` // Never expose in JSON
	Role          Role           `json:"role" gorm:"type:varchar(20);not null;default:'customer';index"`
	EmailVerified bool           `json:"email_verified" gorm:"default:false"`
	Active        bool           `json:"active" gorm:"default:true"`
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// IsAdmin reports whether the user has the admin role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
