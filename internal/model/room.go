package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RoomStatus represents the availability of a room.
type RoomStatus string

const (
	RoomStatusAvailable   RoomStatus = "available"
	RoomStatusReserved    RoomStatus = "reserved"
	RoomStatusOccupied    RoomStatus = "occupied"
	RoomStatusMaintenance RoomStatus = "maintenance"
)

// Valid reports whether s is a known status.
func (s RoomStatus) Valid() bool {
	switch s {
	case RoomStatusAvailable, RoomStatusReserved, RoomStatusOccupied, RoomStatusMaintenance:
		return true
	}
	return false
}

// Room is a single bookable room.
type Room struct {
	ID         uuid.UUID      `json:"id" gorm:"type:char(36);primaryKey"`
	Number     string         `json:"number" gorm:"uniqueIndex;size:20;not null"`
	Floor      int            `json:"floor" gorm:"not null;default:0"`
	RoomTypeID uuid.UUID      `json:"room_type_id" gorm:"type:char(36);not null;index"`
	Status     RoomStatus     `json:"status" gorm:"type:varchar(20);not null;default:'available';index"`
	Notes      string         `json:"notes,omitempty" gorm:"size:500"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	RoomType *RoomType `json:"room_type,omitempty" gorm:"foreignKey:RoomTypeID"`
}

// BeforeCreate sets UUID before creating the record.
func (r *Room) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
