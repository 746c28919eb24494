package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// BookingStatus represents the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "pending"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusCheckedIn BookingStatus = "checked_in"
	BookingStatusCompleted BookingStatus = "completed"
	BookingStatusCancelled BookingStatus = "cancelled"
	BookingStatusExpired   BookingStatus = "expired"
)

var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled, BookingStatusExpired},
	BookingStatusConfirmed: {BookingStatusCheckedIn, BookingStatusCancelled},
	BookingStatusCheckedIn: {BookingStatusCompleted},
}

// ActiveBookingStatuses are the states in which a booking holds its room.
var ActiveBookingStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusConfirmed,
	BookingStatusCheckedIn,
}

// CanTransitionTo reports whether a booking in status s may move to next.
func (s BookingStatus) CanTransitionTo(next BookingStatus) bool {
	for _, allowed := range bookingTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	switch s {
	case BookingStatusPending, BookingStatusConfirmed, BookingStatusCheckedIn,
		BookingStatusCompleted, BookingStatusCancelled, BookingStatusExpired:
		return true
	}
	return false
}

// Booking reserves one room for a customer over a date range.
type Booking struct {
	ID          uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	CustomerID  uuid.UUID       `json:"customer_id" gorm:"type:char(36);not null;index"`
	RoomID      uuid.UUID       `json:"room_id" gorm:"type:char(36);not null;index"`
	CheckIn     time.Time       `json:"check_in" gorm:"type:date;not null"`
	CheckOut    time.Time       `json:"check_out" gorm:"type:date;not null"`
	Guests      int             `json:"guests" gorm:"not null;default:1"`
	Nights      int             `json:"nights" gorm:"not null"`
	TotalAmount decimal.Decimal `json:"total_amount" gorm:"type:decimal(12,2);not null"`
	Currency    string          `json:"currency" gorm:"size:3;not null"`
	Status      BookingStatus   `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	ExpiresAt   *time.Time      `json:"expires_at,omitempty" gorm:"index"`
	CancelledAt *time.Time      `json:"cancelled_at,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	DeletedAt   gorm.DeletedAt  `json:"-" gorm:"index"`

	// Relations
	Customer *User `json:"customer,omitempty" gorm:"foreignKey:CustomerID"`
	Room     *Room `json:"room,omitempty" gorm:"foreignKey:RoomID"`
}

// BeforeCreate sets UUID before creating the record.
func (b *Booking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// IsActive reports whether the booking still holds its room.
func (b *Booking) IsActive() bool {
	for _, s := range ActiveBookingStatuses {
		if b.Status == s {
			return true
		}
	}
	return false
}
