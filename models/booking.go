package models

import (
	"time"

	"gorm.io/gorm"
)

// Booking statuses. A booking only ever moves forward:
// active -> completed, active -> cancelled.
const (
	BookingStatusActive    = "active"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
)

type Booking struct {
	ID uint `gorm:"primaryKey" json:"id"`

	VehicleID uint `gorm:"index;column:vehicle_id" json:"vehicle_id"`
	UserID    uint `gorm:"index;column:user_id" json:"user_id"`

	ReferenceCode string `gorm:"column:reference_code;size:64;uniqueIndex" json:"reference_code"`
	Status        string `gorm:"column:status;size:32;index;default:active" json:"status"`

	// Inclusive on both ends: a booking ending Jan 3 still holds the
	// vehicle and its extras on Jan 3.
	StartDate time.Time `gorm:"column:start_date;index" json:"start_date"`
	EndDate   time.Time `gorm:"column:end_date;index" json:"end_date"`

	// DailyPrice is the vehicle's rate captured at creation; date
	// changes recompute the total from this, never from the vehicle.
	DailyPrice float64 `gorm:"column:daily_price" json:"daily_price"`
	TotalPrice float64 `gorm:"column:total_price" json:"total_price"`

	PayPalOrderID       string `gorm:"column:paypal_order_id;size:64" json:"paypal_order_id,omitempty"`
	PayPalTransactionID string `gorm:"column:paypal_transaction_id;size:64" json:"paypal_transaction_id,omitempty"`
	IsPaid              bool   `gorm:"column:is_paid;default:false" json:"is_paid"`

	Vehicle Vehicle        `gorm:"foreignKey:VehicleID;references:ID" json:"vehicle,omitempty"`
	User    User           `gorm:"foreignKey:UserID;references:ID" json:"user,omitempty"`
	Extras  []BookingExtra `gorm:"foreignKey:BookingID" json:"extras"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Terminal reports whether the booking has reached a final status.
func (b *Booking) Terminal() bool {
	return b.Status == BookingStatusCompleted || b.Status == BookingStatusCancelled
}

// RentalDays counts the calendar days covered by the booking,
// inclusive of both ends.
func (b *Booking) RentalDays() int {
	days := int(b.EndDate.Sub(b.StartDate).Hours()/24) + 1
	if days < 1 {
		days = 1
	}
	return days
}
