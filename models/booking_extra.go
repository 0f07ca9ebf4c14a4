package models

import (
	"time"

	"gorm.io/gorm"
)

// BookingExtra reserves Quantity units of an extra for the full span
// of its parent booking. ExtraName is a snapshot so later renames of
// the extra don't rewrite history.
type BookingExtra struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	BookingID uint `gorm:"index;column:booking_id" json:"booking_id"`
	ExtraID   uint `gorm:"index;column:extra_id" json:"extra_id"`

	ExtraName string `gorm:"column:extra_name;size:150" json:"extra_name"`
	Quantity  int    `gorm:"column:quantity" json:"quantity"`

	Extra Extra `gorm:"foreignKey:ExtraID;references:ID" json:"extra,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
