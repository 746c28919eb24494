package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OTPPurpose distinguishes what a one-time code unlocks.
type OTPPurpose string

const (
	OTPPurposeEmailVerification OTPPurpose = "email_verification"
	OTPPurposePasswordReset     OTPPurpose = "password_reset"
)

// Valid reports whether p is a known purpose.
func (p OTPPurpose) Valid() bool {
	return p == OTPPurposeEmailVerification || p == OTPPurposePasswordReset
}

// OTP is a hashed one-time code sent to an email address.
type OTP struct {
	ID         uuid.UUID  `json:"id" gorm:"type:char(36);primaryKey"`
	Email      string     `json:"email" gorm:"size:255;not null;index:idx_otp_lookup,priority:1"`
	Purpose    OTPPurpose `json:"purpose" gorm:"type:varchar(32);not null;index:idx_otp_lookup,priority:2"`
	CodeHash   string     `json:"-" gorm:"size:255;not null"`
	Attempts   int        `json:"attempts" gorm:"not null;default:0"`
	ExpiresAt  time.Time  `json:"expires_at" gorm:"not null"`
	ConsumedAt *time.Time `json:"consumed_at,omitempty"`
	CreatedAt  time.Time  `json:"created_at"`
}

// BeforeCreate sets UUID before creating the record.
func (o *OTP) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// Expired reports whether the code is past its expiry at now.
func (o *OTP) Expired(now time.Time) bool {
	return !now.Before(o.ExpiresAt)
}
