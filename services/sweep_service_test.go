package services

import (
	"testing"
	"time"

	"carrental-backend/models"
)

func TestCompleteExpired(t *testing.T) {
	db := newTestDB(t)
	bookings := newBookingService(db)
	sweep := NewSweepService(db, bookings)

	user := seedUser(t, db, "sweep@test.local")
	v1 := seedVehicle(t, db, 50)
	v2 := seedVehicle(t, db, 50)
	v3 := seedVehicle(t, db, 50)
	v4 := seedVehicle(t, db, 50)

	expired := seedBooking(t, db, v1.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-05")
	endsToday := seedBooking(t, db, v2.ID, user.ID, models.BookingStatusActive, "2026-06-08", "2026-06-10")
	future := seedBooking(t, db, v3.ID, user.ID, models.BookingStatusActive, "2026-06-12", "2026-06-15")
	cancelled := seedBooking(t, db, v4.ID, user.ID, models.BookingStatusCancelled, "2026-06-01", "2026-06-05")

	now := time.Date(2026, 6, 10, 9, 30, 0, 0, time.UTC)
	processed, err := sweep.CompleteExpired(now)
	if err != nil {
		t.Fatalf("CompleteExpired: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}

	wantStatus := map[uint]string{
		expired.ID:   models.BookingStatusCompleted,
		endsToday.ID: models.BookingStatusActive, // last day still holds the car
		future.ID:    models.BookingStatusActive,
		cancelled.ID: models.BookingStatusCancelled,
	}
	for id, want := range wantStatus {
		var b models.Booking
		if err := db.First(&b, id).Error; err != nil {
			t.Fatalf("load booking %d: %v", id, err)
		}
		if b.Status != want {
			t.Errorf("booking %d status = %q, want %q", id, b.Status, want)
		}
	}

	// A second pass finds nothing left to do.
	processed, err = sweep.CompleteExpired(now)
	if err != nil {
		t.Fatalf("second CompleteExpired: %v", err)
	}
	if processed != 0 {
		t.Errorf("second pass processed = %d, want 0", processed)
	}
}

func TestCompleteExpired_ReleasesExtras(t *testing.T) {
	db := newTestDB(t)
	bookings := newBookingService(db)
	sweep := NewSweepService(db, bookings)
	inv := NewInventoryService(db)

	user := seedUser(t, db, "sweeprelease@test.local")
	v := seedVehicle(t, db, 50)
	seat := seedExtra(t, db, "Child Seat", models.PriceTypeDaily, 8, intPtr(1))

	// Stale booking from the past that was never closed out. Until the
	// sweep runs, a lagging clock could still count it on its own days;
	// after the sweep its stock is free.
	seedBooking(t, db, v.ID, user.ID, models.BookingStatusActive, "2026-06-01", "2026-06-03",
		models.BookingExtra{ExtraID: seat.ID, ExtraName: seat.Name, Quantity: 1})

	if _, err := sweep.CompleteExpired(time.Date(2026, 6, 10, 0, 0, 0, 0, time.UTC)); err != nil {
		t.Fatalf("CompleteExpired: %v", err)
	}

	got, err := inv.AvailableQuantity(seat.ID, day(t, "2026-06-01"), day(t, "2026-06-03"))
	if err != nil {
		t.Fatalf("AvailableQuantity: %v", err)
	}
	if got != 1 {
		t.Errorf("availability after sweep = %d, want 1", got)
	}
}

func TestCompleteExpired_EmptyLedger(t *testing.T) {
	db := newTestDB(t)
	sweep := NewSweepService(db, newBookingService(db))

	processed, err := sweep.CompleteExpired(time.Now().UTC())
	if err != nil {
		t.Fatalf("CompleteExpired: %v", err)
	}
	if processed != 0 {
		t.Errorf("processed = %d, want 0", processed)
	}
}
