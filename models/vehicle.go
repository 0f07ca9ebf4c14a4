package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Vehicle struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Make        string `gorm:"size:100" json:"make"`
	Model       string `gorm:"size:100" json:"model"`
	Year        int    `json:"year"`
	VehicleType string `gorm:"column:vehicle_type;size:50" json:"vehicle_type"`
	Seats       int    `json:"seats"`
	Doors       int    `json:"doors"`
	MPG         int    `gorm:"column:mpg" json:"mpg"`
	GasType     string `gorm:"column:gas_type;size:50" json:"gas_type"`

	// Daily rate. Captured into the booking at creation time; bookings
	// never re-read it afterwards.
	PricePerDay float64 `gorm:"column:price_per_day" json:"price_per_day"`

	Description string         `gorm:"type:text" json:"description"`
	Features    datatypes.JSON `gorm:"column:features" json:"features,omitempty"`

	Extras []Extra        `gorm:"many2many:vehicle_extras" json:"extras,omitempty"`
	Images []VehicleImage `gorm:"foreignKey:VehicleID" json:"images"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

type VehicleImage struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	VehicleID uint      `gorm:"index;column:vehicle_id" json:"vehicle_id"`
	Path      string    `gorm:"size:255" json:"path"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
}
