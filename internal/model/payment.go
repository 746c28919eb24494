package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PaymentStatus represents the status of a payment intent.
type PaymentStatus string

const (
	PaymentStatusRequiresPayment PaymentStatus = "requires_payment"
	PaymentStatusSucceeded       PaymentStatus = "succeeded"
	PaymentStatusFailed          PaymentStatus = "failed"
	PaymentStatusCanceled        PaymentStatus = "canceled"
)

// IsOpen reports whether the intent can still be paid.
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentStatusRequiresPayment || s == PaymentStatusFailed
}

// Payment tracks the provider payment intent created for a booking.
type Payment struct {
	ID               uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	BookingID        uuid.UUID       `json:"booking_id" gorm:"type:char(36);not null;index"`
	Provider         string          `json:"provider" gorm:"size:20;not null"`
	ProviderIntentID string          `json:"provider_intent_id" gorm:"uniqueIndex;size:255;not null"`
	ClientSecret     string          `json:"-" gorm:"size:255"`
	Amount           decimal.Decimal `json:"amount" gorm:"type:decimal(12,2);not null"`
	Currency         string          `json:"currency" gorm:"size:3;not null"`
	Status           PaymentStatus   `json:"status" gorm:"type:varchar(20);not null;default:'requires_payment';index"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
	DeletedAt        gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Booking Booking `json:"-" gorm:"foreignKey:BookingID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Payment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
