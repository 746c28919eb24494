package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RoomType describes a category of rooms sharing price and capacity.
type RoomType struct {
	ID            uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Name          string          `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Description   string          `json:"description" gorm:"type:text"`
	PricePerNight decimal.Decimal `json:"price_per_night" gorm:"type:decimal(10,2);not null"`
	Capacity      int             `json:"capacity" gorm:"not null;default:1"`
	Amenities     string          `json:"amenities,omitempty" gorm:"size:1000"`
	ImageURL      string          `json:"image_url,omitempty" gorm:"size:1024"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	DeletedAt     gorm.DeletedAt  `json:"-" gorm:"index"`
}

// BeforeCreate sets UUID before creating the record.
func (rt *RoomType) BeforeCreate(tx *gorm.DB) error {
	if rt.ID == uuid.Nil {
		rt.ID = uuid.New()
	}
	return nil
}
