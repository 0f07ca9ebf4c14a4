package models

import (
	"time"

	"gorm.io/gorm"
)

// Price types for extras. DAILY multiplies by the rental-day count,
// TRIP is a flat one-time charge.
const (
	PriceTypeDaily = "DAILY"
	PriceTypeTrip  = "TRIP"
)

type Extra struct {
	ID          uint    `gorm:"primaryKey" json:"id"`
	Name        string  `gorm:"size:150" json:"name"`
	Description string  `gorm:"type:text" json:"description"`
	PriceType   string  `gorm:"column:price_type;size:16;default:DAILY" json:"price_type"`
	PriceAmount float64 `gorm:"column:price_amount" json:"price_amount"`

	// Maximum units that may be allocated simultaneously across all
	// bookings overlapping any given day. nil means non-depletable
	// (a service rather than a physical item).
	TotalQuantity *int `gorm:"column:total_quantity" json:"total_quantity"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Depletable reports whether the extra has finite stock to track.
func (e *Extra) Depletable() bool {
	return e.PriceType != PriceTypeTrip && e.TotalQuantity != nil
}
