package services

import (
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"carrental-backend/models"
	"carrental-backend/utils"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Extra{},
		&models.Vehicle{},
		&models.VehicleImage{},
		&models.Booking{},
		&models.BookingExtra{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func day(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := ParseDate(value)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func seedUser(t *testing.T, db *gorm.DB, email string) models.User {
	t.Helper()
	u := models.User{FullName: "Test Renter", Email: email, Password: "x", Role: "user"}
	if err := db.Create(&u).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return u
}

func seedVehicle(t *testing.T, db *gorm.DB, pricePerDay float64) models.Vehicle {
	t.Helper()
	v := models.Vehicle{
		Make:        "Toyota",
		Model:       "Corolla",
		Year:        2022,
		VehicleType: "Sedan",
		Seats:       5,
		Doors:       4,
		GasType:     "Gasoline",
		PricePerDay: pricePerDay,
	}
	if err := db.Create(&v).Error; err != nil {
		t.Fatalf("seed vehicle: %v", err)
	}
	return v
}

func seedExtra(t *testing.T, db *gorm.DB, name, priceType string, amount float64, quantity *int) models.Extra {
	t.Helper()
	e := models.Extra{Name: name, PriceType: priceType, PriceAmount: amount, TotalQuantity: quantity}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("seed extra %s: %v", name, err)
	}
	return e
}

// seedBooking inserts a booking row directly, bypassing the service,
// so tests can set up occupancy without triggering the checks under
// test.
func seedBooking(t *testing.T, db *gorm.DB, vehicleID, userID uint, status, start, end string, extras ...models.BookingExtra) models.Booking {
	t.Helper()
	b := models.Booking{
		VehicleID:     vehicleID,
		UserID:        userID,
		ReferenceCode: utils.NewReferenceCode(),
		Status:        status,
		StartDate:     day(t, start),
		EndDate:       day(t, end),
		DailyPrice:    50,
		TotalPrice:    100,
	}
	if err := db.Create(&b).Error; err != nil {
		t.Fatalf("seed booking: %v", err)
	}
	for _, be := range extras {
		be.BookingID = b.ID
		if err := db.Create(&be).Error; err != nil {
			t.Fatalf("seed booking extra: %v", err)
		}
	}
	return b
}

func intPtr(v int) *int { return &v }

// stubVerifier fakes the payment collaborator.
type stubVerifier struct {
	txID string
	err  error
}

func (s stubVerifier) OrderCaptured(orderID string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.txID != "" {
		return s.txID, nil
	}
	return "TX-" + orderID, nil
}

func newBookingService(db *gorm.DB) *BookingService {
	return NewBookingService(db, NewInventoryService(db), stubVerifier{})
}
